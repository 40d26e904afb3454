package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"vetclinic-backend/models"
	"vetclinic-backend/services"
	"vetclinic-backend/utils"
)

type ReservationController struct {
	bookings *services.BookingService
	archive  *services.ArchiveService
}

func NewReservationController(bookings *services.BookingService, archive *services.ArchiveService) *ReservationController {
	return &ReservationController{bookings: bookings, archive: archive}
}

func (rc *ReservationController) Create(c *gin.Context) {
	var input services.CreateReservationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	reservation, err := rc.bookings.Create(c.Request.Context(), currentUser(c), input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, reservation)
}

func (rc *ReservationController) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid reservation ID format")
		return
	}

	reservation, err := rc.bookings.Get(c.Request.Context(), currentUser(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, reservation)
}

func (rc *ReservationController) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	opts := services.ListOptions{
		Status:   models.ReservationStatus(c.Query("status")),
		DateFrom: c.Query("date_from"),
		DateTo:   c.Query("date_to"),
		Search:   c.Query("search"),
		Page:     page,
		Limit:    limit,
	}

	items, total, err := rc.bookings.List(c.Request.Context(), currentUser(c), opts)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reservations": items,
		"total":        total,
		"page":         opts.Page,
		"limit":        opts.Limit,
	})
}

func (rc *ReservationController) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid reservation ID format")
		return
	}

	var patch services.ReservationPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	reservation, err := rc.bookings.Update(c.Request.Context(), currentUser(c), id, patch)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, reservation)
}

func (rc *ReservationController) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid reservation ID format")
		return
	}

	if err := rc.bookings.Delete(c.Request.Context(), currentUser(c), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reservation deleted successfully"})
}

func (rc *ReservationController) SendReminder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid reservation ID format")
		return
	}

	result, err := rc.bookings.SendReminder(c.Request.Context(), currentUser(c), id)
	if err != nil {
		// The failed attempt is already archived; surface the result along
		// with the error status.
		if result.Status == models.SMSStatusFailed {
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to send reminder", "sms_result": result})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reminder sent successfully", "sms_result": result})
}

func (rc *ReservationController) Statistics(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))

	stats, err := rc.archive.ReservationStatistics(c.Request.Context(), days)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
