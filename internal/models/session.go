package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SessionType string
type SessionStatus string

const (
	SessionTypeChat      SessionType = "chat"
	SessionTypeAudioCall SessionType = "audio_call"
	SessionTypeVideoCall SessionType = "video_call"

	SessionStatusPending   SessionStatus = "pending"   // request created, waiting for astrologer
	SessionStatusAccepted  SessionStatus = "accepted"  // astrologer accepted, not started yet
	SessionStatusDeclined  SessionStatus = "declined"  // astrologer declined
	SessionStatusOngoing   SessionStatus = "ongoing"   // consultation in progress
	SessionStatusEnded     SessionStatus = "ended"     // finished and settled
	SessionStatusCancelled SessionStatus = "cancelled" // cancelled before starting
)

func (t SessionType) Valid() bool {
	switch t {
	case SessionTypeChat, SessionTypeAudioCall, SessionTypeVideoCall:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are allowed from s.
func (s SessionStatus) Terminal() bool {
	switch s {
	case SessionStatusDeclined, SessionStatusEnded, SessionStatusCancelled:
		return true
	}
	return false
}

type Session struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	CustomerID   primitive.ObjectID `json:"customer_id" bson:"customer_id" validate:"required"`
	AstrologerID primitive.ObjectID `json:"astrologer_id" bson:"astrologer_id" validate:"required"`
	SessionType  SessionType        `json:"session_type" bson:"session_type" validate:"required"`
	Status       SessionStatus      `json:"status" bson:"status" default:"pending"`
	StartedAt    *time.Time         `json:"started_at" bson:"started_at"`
	EndedAt      *time.Time         `json:"ended_at" bson:"ended_at"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" bson:"updated_at"`
}

// Duration returns elapsed consultation time, zero for sessions that never started.
func (s *Session) Duration() time.Duration {
	if s.StartedAt == nil {
		return 0
	}
	end := time.Now()
	if s.EndedAt != nil {
		end = *s.EndedAt
	}
	return end.Sub(*s.StartedAt)
}
