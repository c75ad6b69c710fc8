package Models

import (
	"log"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Connect opens the database and migrates the schema. SQLite is the default;
// set DB_DSN to a MySQL DSN to run against MySQL instead.
func Connect() {
	var connection *gorm.DB
	var err error

	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		connection, err = gorm.Open(mysql.Open(dsn), &gorm.Config{})
	} else {
		path := os.Getenv("DB_PATH")
		if path == "" {
			path = "database.db"
		}
		connection, err = gorm.Open(sqlite.Open(path), &gorm.Config{})
	}
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	DB = connection

	if err := Migrate(DB); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	seedManager(DB)
}

// Migrate runs AutoMigrate in dependency order.
func Migrate(db *gorm.DB) error {
	// 1. Base tables with no references
	if err := db.AutoMigrate(
		&User{},
		&Task{},
	); err != nil {
		return err
	}

	// 2. Tables referencing users and tasks
	if err := db.AutoMigrate(
		&AssignedTask{},
		&PersonalTask{},
		&SessionSnapshot{},
	); err != nil {
		return err
	}

	// 3. Tables referencing assignments
	return db.AutoMigrate(
		&DailyTaskStatus{},
		&ResetRun{},
	)
}

// seedManager provisions the manager account out-of-band of registration.
// Registration always yields an employee; this is the only in-process path
// that creates a manager.
func seedManager(db *gorm.DB) {
	email := os.Getenv("MANAGER_EMAIL")
	password := os.Getenv("MANAGER_PASSWORD")
	if email == "" || password == "" {
		return
	}

	var existing User
	if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
		if existing.Role != RoleManager {
			db.Model(&existing).Update("role", RoleManager)
			ForgetUser(db, existing.ID)
			log.Printf("Promoted %s to manager", email)
		}
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Error hashing manager password: %v", err)
		return
	}
	manager := User{
		Email:       email,
		Password:    hash,
		DisplayName: DeriveDisplayName(email),
		Role:        RoleManager,
		CreatedAt:   time.Now(),
	}
	if err := db.Create(&manager).Error; err != nil {
		log.Printf("Error creating manager account: %v", err)
		return
	}
	log.Printf("Created manager account %s", email)
}
