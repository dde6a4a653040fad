package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Customer struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID       primitive.ObjectID `json:"user_id" bson:"user_id" validate:"required"`
	Name         string             `json:"name" bson:"name" validate:"required"`
	Phone        string             `json:"phone" bson:"phone" validate:"required"`
	CountryCode  string             `json:"country_code" bson:"country_code"`
	ProfileImage string             `json:"profile_image" bson:"profile_image"`
	BirthDate    *time.Time         `json:"birth_date" bson:"birth_date" validate:"omitempty,past_date"`
	BirthTime    string             `json:"birth_time" bson:"birth_time" validate:"birth_time"`
	BirthPlace   string             `json:"birth_place" bson:"birth_place"`
	Gender       string             `json:"gender" bson:"gender"`
	AddressLine1 string             `json:"address_line1" bson:"address_line1"`
	AddressLine2 string             `json:"address_line2" bson:"address_line2"`
	City         string             `json:"city" bson:"city"`
	Pincode      string             `json:"pincode" bson:"pincode"`
	IsActive     bool               `json:"is_active" bson:"is_active" default:"true"`
	IsDeleted    bool               `json:"is_deleted" bson:"is_deleted" default:"false"`
	FCMToken     string             `json:"fcm_token,omitempty" bson:"fcm_token"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" bson:"updated_at"`
}
