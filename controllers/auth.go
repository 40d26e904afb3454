package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"vetclinic-backend/services"
	"vetclinic-backend/utils"
)

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthController struct {
	auth   *services.AuthService
	tokens *services.TokenService
}

func NewAuthController(auth *services.AuthService, tokens *services.TokenService) *AuthController {
	return &AuthController{auth: auth, tokens: tokens}
}

func (ac *AuthController) Register(c *gin.Context) {
	var input services.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	user, token, err := ac.auth.Register(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": token, "user": user})
}

func (ac *AuthController) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	user, token, err := ac.auth.Login(c.Request.Context(), strings.TrimSpace(input.Email), input.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

func (ac *AuthController) GoogleLogin(c *gin.Context) {
	var input services.GoogleLoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	user, token, err := ac.auth.GoogleLogin(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// VerifyToken echoes the identity behind a valid token; the middleware has
// already done the work.
func (ac *AuthController) VerifyToken(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": currentUser(c)})
}

func (ac *AuthController) RefreshToken(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token := header
	if len(header) > 7 && strings.EqualFold(header[0:6], "bearer") {
		token = header[7:]
	}

	fresh, err := ac.tokens.Refresh(token)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": fresh})
}
