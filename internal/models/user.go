package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRole string

const (
	RoleCustomer   UserRole = "customer"
	RoleAstrologer UserRole = "astrologer"
	RoleAdmin      UserRole = "admin"
)

type User struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Email       string             `json:"email" bson:"email"`
	Phone       string             `json:"phone" bson:"phone" validate:"required"`
	CountryCode string             `json:"country_code" bson:"country_code"`
	Name        string             `json:"name" bson:"name" validate:"required"`
	Gender      string             `json:"gender" bson:"gender"`
	Role        UserRole           `json:"role" bson:"role" validate:"required"`
	FCMToken    string             `json:"fcm_token,omitempty" bson:"fcm_token"`
	IsOnline    bool               `json:"is_online" bson:"is_online" default:"false"`
	LastSeen    time.Time          `json:"last_seen" bson:"last_seen"`
	IsActive    bool               `json:"is_active" bson:"is_active" default:"true"`
	IsDeleted   bool               `json:"is_deleted" bson:"is_deleted" default:"false"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}
