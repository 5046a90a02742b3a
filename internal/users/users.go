package users

import (
	"errors"
	"time"

	"log/slog"

	"github.com/karloscodes/cartridge/crypto"
	"github.com/karloscodes/cartridge/sqlite"
	"gorm.io/gorm"
)

type User struct {
	ID                uint   `gorm:"primaryKey" json:"id"`
	Name              string `gorm:"not null" json:"name"`
	Email             string `gorm:"uniqueIndex" json:"email"`
	EncryptedPassword string `json:"-"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// ErrUserExists is returned when attempting to create a user that already exists.
var ErrUserExists = errors.New("user already exists")

// ErrUserNotFound is returned when a user lookup fails.
var ErrUserNotFound = gorm.ErrRecordNotFound

// ErrInvalidCredentials is returned when a password check fails.
var ErrInvalidCredentials = errors.New("invalid credentials")

// FindByEmail retrieves a user by email.
func FindByEmail(db *gorm.DB, email string) (*User, error) {
	var user User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID retrieves a user by ID.
func FindByID(db *gorm.DB, id uint) (*User, error) {
	var user User
	if err := db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser registers a new user with the supplied credentials. It
// returns ErrUserExists if the email is already taken.
func CreateUser(db *gorm.DB, logger *slog.Logger, name, email, password string) (*User, error) {
	if name == "" {
		return nil, errors.New("name cannot be empty")
	}
	if email == "" {
		return nil, errors.New("email cannot be empty")
	}
	if password == "" {
		return nil, errors.New("password cannot be empty")
	}

	if _, err := FindByEmail(db, email); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashedPassword, err := crypto.GeneratePasswordHash(password)
	if err != nil {
		return nil, err
	}

	user := User{
		Name:              name,
		Email:             email,
		EncryptedPassword: string(hashedPassword),
	}

	err = sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		return tx.Create(&user).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Authenticate verifies an email/password pair and returns the user.
// A dummy hash comparison runs when the user does not exist so the
// response time does not leak account existence.
func Authenticate(db *gorm.DB, email, password string) (*User, error) {
	user, err := FindByEmail(db, email)
	if err != nil {
		dummyHash := "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
		crypto.VerifyPassword(dummyHash, password)
		return nil, ErrInvalidCredentials
	}

	if !crypto.VerifyPassword(user.EncryptedPassword, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// ChangePassword updates a user's password given their email.
func ChangePassword(db *gorm.DB, email, password string) error {
	if password == "" {
		return errors.New("password cannot be empty")
	}

	user, err := FindByEmail(db, email)
	if err != nil {
		return err
	}

	hashedPassword, err := crypto.GeneratePasswordHash(password)
	if err != nil {
		return err
	}

	logger := slog.Default()
	return sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		return tx.Model(user).Update("encrypted_password", string(hashedPassword)).Error
	})
}
