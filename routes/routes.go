package routes

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"hotel-reservation/controllers"
	"hotel-reservation/middleware"
)

func parseCorsOrigins() []string {
	raw := strings.TrimSpace(os.Getenv("CORS_ORIGINS"))
	if raw == "" {
		return []string{"*"}
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// SetupRouter wires controller instances onto the route tree.
func SetupRouter(
	ac *controllers.AuthController,
	bc *controllers.BookingController,
	rc *controllers.RoomController,
	gc *controllers.GuestController,
	rtc *controllers.RealtimeController,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())

	origins := parseCorsOrigins()
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Notification socket; authenticated via ?token=, see RealtimeController.
	r.GET("/ws", rtc.Connect)

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", ac.Register)
			auth.POST("/login", ac.Login)
		}

		rooms := api.Group("/rooms")
		{
			rooms.GET("", rc.GetRooms)
			rooms.GET("/:id", rc.GetRoom)

			// Public room availability for the booking calendar.
			rooms.GET("/:id/schedule", bc.RoomSchedule)

			admin := rooms.Group("", middleware.RequireAuth(), middleware.RequireAdmin())
			{
				admin.POST("", rc.CreateRoom)
				admin.PUT("/:id", rc.UpdateRoom)
				admin.PATCH("/:id", rc.UpdateRoom)
				admin.PATCH("/:id/status", rc.UpdateRoomStatus)
				admin.DELETE("/:id", rc.DeleteRoom)
			}
		}

		bookings := api.Group("/bookings")
		{
			// Public walk-in surface.
			bookings.POST("/guest", bc.CreateGuestBooking)
			bookings.GET("/code/:code", bc.GetBookingByCode)

			authed := bookings.Group("", middleware.RequireAuth())
			{
				authed.GET("", bc.GetBookings)
				authed.POST("", bc.CreateBooking)
				authed.GET("/:id", bc.GetBooking)
				authed.POST("/:id/cancel", bc.CancelBooking)
			}

			admin := bookings.Group("", middleware.RequireAuth(), middleware.RequireAdmin())
			{
				admin.POST("/:id/confirm-payment", bc.ConfirmPayment)
				admin.POST("/:id/payments", bc.RecordPayment)
				admin.PATCH("/:id/status", bc.UpdateStatus)
			}
		}

		guests := api.Group("/guests", middleware.RequireAuth(), middleware.RequireAdmin())
		{
			guests.GET("", gc.GetGuests)
			guests.GET("/:ref", gc.GetGuestByReference)
		}
	}

	return r
}
