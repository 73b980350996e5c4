package controllers

import (
	"errors"
	"net/http"
	"strings"

	"hotel-reservation/services"
	"hotel-reservation/utils"

	"github.com/gin-gonic/gin"
)

type registerPayload struct {
	FullName string `json:"full_name" binding:"required"`
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Phone    string `json:"phone"`
}

type loginPayload struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthController struct {
	Users *services.UserService
}

func NewAuthController(users *services.UserService) *AuthController {
	return &AuthController{Users: users}
}

func (ctrl *AuthController) Register(c *gin.Context) {
	var payload registerPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid payload: "+err.Error())
		return
	}

	user, err := ctrl.Users.Register(services.RegisterInput{
		FullName: payload.FullName,
		Username: payload.Username,
		Email:    payload.Email,
		Password: payload.Password,
		Phone:    payload.Phone,
	})
	if err != nil {
		if errors.Is(err, services.ErrUsernameTaken) {
			utils.JSONError(c, http.StatusConflict, "username or email already in use")
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "failed to register")
		return
	}

	token, err := utils.SignAccessToken(user.ID, user.IsAdmin)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to issue token")
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, gin.H{"user": user, "token": token})
}

func (ctrl *AuthController) Login(c *gin.Context) {
	var payload loginPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "username and password required")
		return
	}

	user, err := ctrl.Users.Authenticate(strings.TrimSpace(payload.Username), payload.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			utils.JSONError(c, http.StatusUnauthorized, "invalid credentials")
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "login failed")
		return
	}

	token, err := utils.SignAccessToken(user.ID, user.IsAdmin)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to issue token")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"user": user, "token": token})
}
