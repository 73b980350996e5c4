package controllers

import (
	"errors"
	"net/http"

	"hotel-reservation/services"
	"hotel-reservation/utils"

	"github.com/gin-gonic/gin"
)

type GuestController struct {
	Guests *services.GuestService
}

func NewGuestController(guests *services.GuestService) *GuestController {
	return &GuestController{Guests: guests}
}

func (ctrl *GuestController) GetGuests(c *gin.Context) {
	guests, err := ctrl.Guests.GetAll()
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to retrieve guests")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, guests)
}

func (ctrl *GuestController) GetGuestByReference(c *gin.Context) {
	guest, err := ctrl.Guests.GetByReference(c.Param("ref"))
	if err != nil {
		if errors.Is(err, services.ErrGuestNotFound) {
			utils.JSONError(c, http.StatusNotFound, "guest not found")
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "failed to retrieve guest")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, guest)
}
