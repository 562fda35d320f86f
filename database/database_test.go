package database

import (
	"os"
	"testing"

	"loyaltybot-backend/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	// The model tags carry PostgreSQL defaults, so create the table by hand.
	err = db.Exec(`CREATE TABLE "users" (
		"id" TEXT PRIMARY KEY,
		"telegram_id" TEXT NOT NULL UNIQUE,
		"username" TEXT,
		"name" TEXT NOT NULL,
		"phone" TEXT,
		"email" TEXT,
		"password" TEXT,
		"points" INTEGER DEFAULT 0,
		"is_admin" INTEGER DEFAULT 0,
		"is_blocked" INTEGER DEFAULT 0,
		"created_at" DATETIME,
		"updated_at" DATETIME
	)`).Error
	if err != nil {
		t.Fatalf("failed to create users table: %v", err)
	}
	return db
}

func TestCreateDefaultAdmin(t *testing.T) {
	os.Setenv("ADMIN_EMAIL", "boss@test.local")
	os.Setenv("ADMIN_PASSWORD", "sekret")
	os.Setenv("ADMIN_TELEGRAM_ID", "999")
	defer func() {
		os.Unsetenv("ADMIN_EMAIL")
		os.Unsetenv("ADMIN_PASSWORD")
		os.Unsetenv("ADMIN_TELEGRAM_ID")
	}()

	db := openTestDB(t)
	if err := CreateDefaultAdmin(db); err != nil {
		t.Fatalf("CreateDefaultAdmin failed: %v", err)
	}

	var admin models.User
	if err := db.Where("email = ?", "boss@test.local").First(&admin).Error; err != nil {
		t.Fatalf("admin not created: %v", err)
	}
	if !admin.IsAdmin {
		t.Error("expected seeded account to be an admin")
	}
	if admin.TelegramID != "999" {
		t.Errorf("expected telegram_id 999, got %q", admin.TelegramID)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte("sekret")); err != nil {
		t.Error("expected password to be bcrypt-hashed")
	}
}

func TestCreateDefaultAdminIdempotent(t *testing.T) {
	os.Setenv("ADMIN_EMAIL", "boss@test.local")
	defer os.Unsetenv("ADMIN_EMAIL")

	db := openTestDB(t)
	if err := CreateDefaultAdmin(db); err != nil {
		t.Fatalf("first CreateDefaultAdmin failed: %v", err)
	}
	if err := CreateDefaultAdmin(db); err != nil {
		t.Fatalf("second CreateDefaultAdmin failed: %v", err)
	}

	var count int64
	db.Model(&models.User{}).Count(&count)
	if count != 1 {
		t.Errorf("expected 1 admin, got %d", count)
	}
}
