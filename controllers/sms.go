package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"vetclinic-backend/models"
	"vetclinic-backend/repository"
	"vetclinic-backend/services"
	"vetclinic-backend/utils"
)

type SendSMSInput struct {
	Phone         string     `json:"phone" binding:"required"`
	Message       string     `json:"message" binding:"required"`
	ReservationID *uuid.UUID `json:"reservation_id"`
	MessageType   string     `json:"message_type"`
}

type SendBulkSMSInput struct {
	Phones      []string `json:"phones" binding:"required,min=1"`
	Message     string   `json:"message" binding:"required"`
	MessageType string   `json:"message_type"`
}

type SMSController struct {
	sms     *services.SMSService
	archive *services.ArchiveService
}

func NewSMSController(sms *services.SMSService, archive *services.ArchiveService) *SMSController {
	return &SMSController{sms: sms, archive: archive}
}

func (sc *SMSController) Send(c *gin.Context) {
	var input SendSMSInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	messageType := models.MessageType(input.MessageType)
	if messageType == "" {
		messageType = models.MessageCustom
	}

	user := currentUser(c)
	userID := user.ID
	result, err := sc.sms.Send(c.Request.Context(), input.Phone, input.Message, &userID, input.ReservationID, messageType)
	if err != nil && result.Status != models.SMSStatusFailed {
		respondError(c, err)
		return
	}

	// A channel failure is an outcome, not an API error: the attempt is
	// archived and the caller reads success from the result.
	c.JSON(http.StatusOK, gin.H{"result": result})
}

func (sc *SMSController) SendBulk(c *gin.Context) {
	var input SendBulkSMSInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	messageType := models.MessageType(input.MessageType)
	if messageType == "" {
		messageType = models.MessageBulk
	}

	user := currentUser(c)
	userID := user.ID
	results, err := sc.sms.SendBulk(c.Request.Context(), input.Phones, input.Message, &userID, messageType)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (sc *SMSController) Archive(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	filter := repository.SMSFilter{
		Phone:       c.Query("phone"),
		Status:      c.Query("status"),
		MessageType: models.MessageType(c.Query("message_type")),
		DateFrom:    c.Query("date_from"),
		DateTo:      c.Query("date_to"),
	}

	items, total, err := sc.archive.Archive(c.Request.Context(), currentUser(c), filter, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

func (sc *SMSController) Statistics(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))

	stats, err := sc.archive.SMSStatistics(c.Request.Context(), days)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
