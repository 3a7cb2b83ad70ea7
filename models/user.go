package models

import (
	"errors"

	"github.com/ioann7/api-yatube/db"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// User belongs to the identity side of the service. Other tables only keep its ID,
// deleting it removes everything the user authored or followed.
type User struct {
	ID        uint64 `gorm:"primaryKey"`
	CreatedAt int64
	Username  string `gorm:"type:varchar(150);index:uniq_username,unique;not null"`
	Password  string `gorm:"type:varchar(128);not null"`
	IsStaff   bool   `gorm:"not null;default:false"`
}

// Permission is a right a route can require from the authenticated user
type Permission uint8

const (
	PermissionNone  Permission = 0
	PermissionStaff Permission = 1 // manage groups
)

var ErrInvalidCredentials = errors.New("invalid credentials")

func UserCreate(username, plainTextPassword string) (u User, err error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), bcrypt.DefaultCost)
	if err != nil {
		return u, err
	}
	u.Username = username
	u.Password = string(hash)
	return u, db.Classify(db.Instance.Create(&u).Error)
}

func UserLogin(username, plainTextPassword string) (u User, err error) {
	if err = db.Instance.First(&u, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plainTextPassword)) != nil {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

func UserByID(id uint64) (u User, err error) {
	err = db.Instance.First(&u, id).Error
	return
}

func UserByUsername(username string) (u User, err error) {
	err = db.Instance.First(&u, "username = ?", username).Error
	return
}

// UserDelete relies on ON DELETE CASCADE to drop posts, comments and follows
func UserDelete(id uint64) error {
	result := db.Instance.Delete(&User{}, id)
	if result.Error != nil {
		return db.Classify(result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// HasPermission reports whether u holds required. Unknown permissions are never granted
func (u *User) HasPermission(required Permission) bool {
	switch required {
	case PermissionNone:
		return true
	case PermissionStaff:
		return u.IsStaff
	}
	return false
}

func (u *User) HasPermissions(required []Permission) bool {
	for _, permission := range required {
		if !u.HasPermission(permission) {
			return false
		}
	}
	return true
}

func (u User) String() string {
	return u.Username
}
