package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"vetclinic-backend/utils"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Email    string    `gorm:"uniqueIndex;not null" json:"email"`
	Password string    `gorm:"not null" json:"-"`

	FirstName string `gorm:"not null" json:"first_name"`
	LastName  string `gorm:"not null" json:"last_name"`
	Phone     string `json:"phone"`
	Avatar    string `json:"avatar"`

	Role     string `gorm:"type:varchar(20);not null;default:'user'" json:"role"` // 'admin' or 'user'
	GoogleID string `gorm:"index" json:"-"`

	LastLogin *time.Time `json:"last_login"`
	IsActive  bool       `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// Initialize UUID and hash the password before creating
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	hashed, err := utils.HashPassword(u.Password)
	if err != nil {
		return err
	}
	u.Password = hashed
	return
}
