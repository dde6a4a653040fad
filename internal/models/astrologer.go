package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Astrologer struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID          primitive.ObjectID `json:"user_id" bson:"user_id" validate:"required"`
	Name            string             `json:"name" bson:"name" validate:"required"`
	Phone           string             `json:"phone" bson:"phone" validate:"required"`
	CountryCode     string             `json:"country_code" bson:"country_code"`
	ProfileImage    string             `json:"profile_image" bson:"profile_image"`
	Bio             string             `json:"bio" bson:"bio"`
	Category        string             `json:"category" bson:"category"`
	PrimarySkill    string             `json:"primary_skill" bson:"primary_skill"`
	Languages       []string           `json:"languages" bson:"languages"`
	ExperienceYears int                `json:"experience_years" bson:"experience_years"`
	ChatCharge      float64            `json:"chat_charge" bson:"chat_charge" default:"0" validate:"charge_amount"`
	AudioCallCharge float64            `json:"audio_call_charge" bson:"audio_call_charge" default:"0" validate:"charge_amount"`
	VideoCallCharge float64            `json:"video_call_charge" bson:"video_call_charge" default:"0" validate:"charge_amount"`
	ChatWaitTime    string             `json:"chat_wait_time" bson:"chat_wait_time"`
	Availability    []AvailabilitySlot `json:"availability" bson:"availability" validate:"dive"`
	TotalOrders     int                `json:"total_orders" bson:"total_orders" default:"0"`
	IsVerified      bool               `json:"is_verified" bson:"is_verified" default:"false"`
	IsOnline        bool               `json:"is_online" bson:"is_online" default:"false"`
	IsBusy          bool               `json:"is_busy" bson:"is_busy" default:"false"`
	IsActive        bool               `json:"is_active" bson:"is_active" default:"true"`
	IsDeleted       bool               `json:"is_deleted" bson:"is_deleted" default:"false"`
	FCMToken        string             `json:"fcm_token,omitempty" bson:"fcm_token"`
	CreatedAt       time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at" bson:"updated_at"`
}

// AvailabilitySlot is one weekly consulting window.
type AvailabilitySlot struct {
	Day      string `json:"day" bson:"day" validate:"weekday"`
	FromTime string `json:"from_time" bson:"from_time" validate:"clock_time"` // "HH:MM"
	ToTime   string `json:"to_time" bson:"to_time" validate:"clock_time"`
}

// ChargeFor returns the astrologer's flat per-session rate for a session type.
func (a *Astrologer) ChargeFor(sessionType SessionType) float64 {
	switch sessionType {
	case SessionTypeChat:
		return a.ChatCharge
	case SessionTypeAudioCall:
		return a.AudioCallCharge
	case SessionTypeVideoCall:
		return a.VideoCallCharge
	default:
		return 0
	}
}
