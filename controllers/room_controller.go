package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"hotel-reservation/models"
	"hotel-reservation/services"
	"hotel-reservation/utils"

	"github.com/gin-gonic/gin"
)

type RoomController struct {
	Rooms *services.RoomService
}

func NewRoomController(rooms *services.RoomService) *RoomController {
	return &RoomController{Rooms: rooms}
}

type roomStatusPayload struct {
	Status string `json:"status" binding:"required"`
}

func roomIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		utils.JSONError(c, http.StatusBadRequest, "room id must be a positive number")
		return 0, false
	}
	return uint(id), true
}

func (ctrl *RoomController) GetRooms(c *gin.Context) {
	rooms, err := ctrl.Rooms.GetAll()
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to retrieve rooms")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, rooms)
}

func (ctrl *RoomController) GetRoom(c *gin.Context) {
	id, ok := roomIDParam(c)
	if !ok {
		return
	}
	room, err := ctrl.Rooms.GetByID(id)
	if err != nil {
		if errors.Is(err, services.ErrRoomNotFound) {
			utils.JSONError(c, http.StatusNotFound, "room not found")
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "failed to retrieve room")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, room)
}

func (ctrl *RoomController) CreateRoom(c *gin.Context) {
	var room models.Room
	if err := c.ShouldBindJSON(&room); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid room payload: "+err.Error())
		return
	}
	if room.RoomNumber == "" {
		utils.JSONError(c, http.StatusBadRequest, "roomNumber is required")
		return
	}
	if err := ctrl.Rooms.Create(&room); err != nil {
		if errors.Is(err, services.ErrRoomNumberTaken) {
			utils.JSONError(c, http.StatusConflict, "room number already exists")
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "failed to create room")
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, room)
}

func (ctrl *RoomController) UpdateRoom(c *gin.Context) {
	id, ok := roomIDParam(c)
	if !ok {
		return
	}
	var room models.Room
	if err := c.ShouldBindJSON(&room); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid room payload: "+err.Error())
		return
	}
	room.ID = id
	if err := ctrl.Rooms.Update(&room); err != nil {
		if errors.Is(err, services.ErrRoomNumberTaken) {
			utils.JSONError(c, http.StatusConflict, "room number already exists")
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "failed to update room")
		return
	}
	updated, err := ctrl.Rooms.GetByID(id)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to reload room")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, updated)
}

func (ctrl *RoomController) UpdateRoomStatus(c *gin.Context) {
	id, ok := roomIDParam(c)
	if !ok {
		return
	}
	var payload roomStatusPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "status is required")
		return
	}
	if err := ctrl.Rooms.UpdateStatus(id, payload.Status); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidRoomStatus):
			utils.JSONError(c, http.StatusBadRequest, "invalid room status")
		case errors.Is(err, services.ErrRoomNotFound):
			utils.JSONError(c, http.StatusNotFound, "room not found")
		default:
			utils.JSONError(c, http.StatusInternalServerError, "failed to update room status")
		}
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"id": id, "status": payload.Status})
}

func (ctrl *RoomController) DeleteRoom(c *gin.Context) {
	id, ok := roomIDParam(c)
	if !ok {
		return
	}
	if err := ctrl.Rooms.Delete(id); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to delete room")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"deleted": id})
}
