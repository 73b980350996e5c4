package services

import (
	"errors"
	"fmt"

	"hotel-reservation/models"

	"gorm.io/gorm"
)

var (
	ErrRoomNumberTaken   = errors.New("room_number_taken")
	ErrInvalidRoomStatus = errors.New("invalid_room_status")
)

type RoomService struct {
	DB *gorm.DB
}

func NewRoomService(db *gorm.DB) *RoomService {
	return &RoomService{DB: db}
}

func (s *RoomService) Create(room *models.Room) error {
	if room.Status == "" {
		room.Status = models.RoomStatusAvailable
	}
	if err := s.DB.Create(room).Error; err != nil {
		if isDuplicateEntry(err) {
			return ErrRoomNumberTaken
		}
		return fmt.Errorf("failed to create room: %w", err)
	}
	return nil
}

func (s *RoomService) GetAll() ([]models.Room, error) {
	var rooms []models.Room
	err := s.DB.
		Preload("RoomType").
		Preload("RoomCategory").
		Order("room_number ASC").
		Find(&rooms).Error
	return rooms, err
}

func (s *RoomService) GetByID(id uint) (*models.Room, error) {
	var room models.Room
	if err := s.DB.Preload("RoomType").Preload("RoomCategory").First(&room, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return &room, nil
}

func (s *RoomService) Update(room *models.Room) error {
	if err := s.DB.Model(&models.Room{}).Where("id = ?", room.ID).Updates(room).Error; err != nil {
		if isDuplicateEntry(err) {
			return ErrRoomNumberTaken
		}
		return err
	}
	return nil
}

// UpdateStatus sets the operational status directly (housekeeping,
// maintenance). Booking-driven status changes go through BookingService.
func (s *RoomService) UpdateStatus(id uint, status string) error {
	switch status {
	case models.RoomStatusAvailable, models.RoomStatusOccupied,
		models.RoomStatusDirty, models.RoomStatusMaintenance:
	default:
		return ErrInvalidRoomStatus
	}

	res := s.DB.Model(&models.Room{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRoomNotFound
	}
	return nil
}

func (s *RoomService) Delete(id uint) error {
	return s.DB.Delete(&models.Room{}, id).Error
}
