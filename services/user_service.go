package services

import (
	"errors"
	"fmt"
	"strings"

	"hotel-reservation/models"

	mysqldrv "github.com/go-sql-driver/mysql"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUsernameTaken      = errors.New("username_taken")
	ErrInvalidCredentials = errors.New("invalid_credentials")
)

type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

type RegisterInput struct {
	FullName string
	Username string
	Email    string
	Password string
	Phone    string
}

func (s *UserService) Register(in RegisterInput) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		FullName: strings.TrimSpace(in.FullName),
		Username: strings.TrimSpace(in.Username),
		Email:    strings.TrimSpace(in.Email),
		Password: string(hash),
		Phone:    strings.TrimSpace(in.Phone),
		IsAdmin:  false,
	}
	if err := s.DB.Create(&user).Error; err != nil {
		if isDuplicateEntry(err) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &user, nil
}

func (s *UserService) Authenticate(username, password string) (*models.User, error) {
	var user models.User
	if err := s.DB.Where("username = ? OR email = ?", username, username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("db error loading user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

func (s *UserService) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("db error loading user: %w", err)
	}
	return &user, nil
}

// isDuplicateEntry detects a unique constraint violation. MySQL reports
// error 1062; other dialects (sqlite in tests) fall back to string matching.
func isDuplicateEntry(err error) bool {
	if err == nil {
		return false
	}
	var merr *mysqldrv.MySQLError
	if errors.As(err, &merr) {
		return merr.Number == 1062
	}
	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "duplicate") || strings.Contains(lower, "unique")
}
