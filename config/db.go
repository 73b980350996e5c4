package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"hotel-reservation/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func envOrDefault(key, def string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	return value
}

func mysqlDSNFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	user := u.User.Username()
	pass, _ := u.User.Password()
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "3306"
	}

	dbName := strings.TrimPrefix(u.Path, "/")
	if dbName == "" {
		return "", fmt.Errorf("mysql url missing database name")
	}

	q := u.Query()
	if q.Get("charset") == "" {
		q.Set("charset", "utf8mb4")
	}
	if q.Get("parseTime") == "" {
		q.Set("parseTime", "True")
	}
	if q.Get("loc") == "" {
		q.Set("loc", "Local")
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s", user, pass, host, port, dbName, q.Encode()), nil
}

func resolveMySQLDSN() (string, error) {
	raw := strings.TrimSpace(os.Getenv("MYSQL_URL"))
	if raw == "" {
		raw = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}

	if raw != "" {
		if strings.HasPrefix(raw, "mysql://") {
			return mysqlDSNFromURL(raw)
		}
		return raw, nil
	}

	user := envOrDefault("DB_USER", "root")
	pass := envOrDefault("DB_PASS", "")
	host := envOrDefault("DB_HOST", "127.0.0.1")
	port := envOrDefault("DB_PORT", "3306")
	dbName := envOrDefault("DB_NAME", "hotel_reservation")

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, pass, host, port, dbName,
	), nil
}

// SeedDatabase fills in the reference data the booking flow depends on.
func SeedDatabase(db *gorm.DB) {
	// ---------------- Default admin ----------------
	var adminCount int64
	db.Model(&models.User{}).Where("is_admin = ?", true).Count(&adminCount)
	if adminCount == 0 {
		hash, err := bcrypt.GenerateFromPassword([]byte(envOrDefault("ADMIN_PASSWORD", "admin123")), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("warning: failed to hash default admin password: %v", err)
		} else {
			admin := models.User{
				FullName: "Admin User",
				Username: "admin@hotel.local",
				Email:    "admin@hotel.local",
				Password: string(hash),
				IsAdmin:  true,
			}
			if err := db.Create(&admin).Error; err != nil {
				log.Printf("warning: failed to create default admin: %v", err)
			} else {
				log.Println("Default admin seeded")
			}
		}
	}

	// ---------------- Room categories ----------------
	var rcCount int64
	db.Model(&models.RoomCategory{}).Count(&rcCount)
	if rcCount == 0 {
		categories := []models.RoomCategory{
			{Name: "Standard", Description: "Standard wing"},
			{Name: "Business", Description: "Business wing"},
			{Name: "Luxury", Description: "Top floors"},
		}
		db.Create(&categories)
		log.Println("Room categories seeded")
	}

	// ---------------- Room types ----------------
	var rtCount int64
	db.Model(&models.RoomType{}).Count(&rtCount)
	if rtCount == 0 {
		roomTypes := []models.RoomType{
			{TypeName: "Single", Description: "Single Room", MaxGuests: 1},
			{TypeName: "Double", Description: "Double Room", MaxGuests: 2},
			{TypeName: "Deluxe", Description: "Deluxe Room", MaxGuests: 4},
			{TypeName: "Suite", Description: "Suite", MaxGuests: 5},
		}
		db.Create(&roomTypes)
		log.Println("Room types seeded")
	}

	// ---------------- Amenities / services ----------------
	var amCount int64
	db.Model(&models.Amenity{}).Count(&amCount)
	if amCount == 0 {
		amenities := []models.Amenity{
			{Name: "Extra bed", Price: 150000},
			{Name: "Airport pickup", Price: 300000},
			{Name: "Late checkout", Price: 200000},
		}
		db.Create(&amenities)
		log.Println("Amenities seeded")
	}

	var svCount int64
	db.Model(&models.Service{}).Count(&svCount)
	if svCount == 0 {
		svcs := []models.Service{
			{Name: "Breakfast", Price: 100000},
			{Name: "Laundry", Price: 80000},
			{Name: "Spa", Price: 500000},
		}
		db.Create(&svcs)
		log.Println("Services seeded")
	}
}

func ConnectDatabase() error {
	dsn, err := resolveMySQLDSN()
	if err != nil {
		return err
	}

	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Warn,
			Colorful:      true,
		},
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: newLogger})
	if err != nil {
		return err
	}

	DB = db

	if err := MigrateAndSeed(db); err != nil {
		return err
	}
	return nil
}

// MigrateAndSeed runs migrations in parent->child order and seeds reference
// data. It is separated from ConnectDatabase so tests can run it against an
// in-memory database.
func MigrateAndSeed(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.GuestProfile{},
		&models.RoomCategory{},
		&models.RoomType{},
		&models.Room{},
		&models.Amenity{},
		&models.Service{},
		&models.Booking{},
	); err != nil {
		return err
	}

	SeedDatabase(db)
	return nil
}
