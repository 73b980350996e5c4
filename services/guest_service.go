package services

import (
	"errors"
	"fmt"

	"hotel-reservation/models"

	"gorm.io/gorm"
)

var ErrGuestNotFound = errors.New("guest_not_found")

// GuestService exposes the walk-in guest profiles to the admin dashboard.
// Profiles themselves are created by BookingService at booking time.
type GuestService struct {
	DB *gorm.DB
}

func NewGuestService(db *gorm.DB) *GuestService {
	return &GuestService{DB: db}
}

func (s *GuestService) GetAll() ([]models.GuestProfile, error) {
	var guests []models.GuestProfile
	if err := s.DB.Order("id DESC").Find(&guests).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve guest profiles: %w", err)
	}
	return guests, nil
}

func (s *GuestService) GetByReference(ref string) (*models.GuestProfile, error) {
	var guest models.GuestProfile
	if err := s.DB.Where("reference = ?", ref).First(&guest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGuestNotFound
		}
		return nil, fmt.Errorf("failed to retrieve guest profile: %w", err)
	}
	return &guest, nil
}
