package validators

import (
	"testing"
	"time"

	"astro-online/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func validAstrologer() *models.Astrologer {
	return &models.Astrologer{
		UserID:     primitive.NewObjectID(),
		Name:       "Pandit Sharma",
		Phone:      "+919876543210",
		ChatCharge: 50,
		Availability: []models.AvailabilitySlot{
			{Day: "monday", FromTime: "09:00", ToTime: "18:00"},
		},
	}
}

func TestValidAstrologerPasses(t *testing.T) {
	errs := ValidateStruct(validAstrologer())
	assert.Empty(t, errs)
}

func TestNegativeChargeRejected(t *testing.T) {
	astrologer := validAstrologer()
	astrologer.ChatCharge = -10

	errs := ValidateStruct(astrologer)
	require.NotEmpty(t, errs)
	assert.Equal(t, "ChatCharge", errs[0].Field)
	assert.Equal(t, "charge_amount", errs[0].Tag)
}

func TestBadAvailabilitySlotRejected(t *testing.T) {
	astrologer := validAstrologer()
	astrologer.Availability = []models.AvailabilitySlot{
		{Day: "someday", FromTime: "09:00", ToTime: "18:00"},
	}
	errs := ValidateStruct(astrologer)
	require.NotEmpty(t, errs)
	assert.Equal(t, "weekday", errs[0].Tag)

	astrologer.Availability = []models.AvailabilitySlot{
		{Day: "friday", FromTime: "9am", ToTime: "18:00"},
	}
	errs = ValidateStruct(astrologer)
	require.NotEmpty(t, errs)
	assert.Equal(t, "clock_time", errs[0].Tag)
}

func TestMissingRequiredFields(t *testing.T) {
	errs := ValidateStruct(&models.Astrologer{})
	assert.NotEmpty(t, errs)
}

type birthDetails struct {
	BirthDate *time.Time `validate:"omitempty,past_date"`
	BirthTime string     `validate:"birth_time"`
}

func TestBirthDetails(t *testing.T) {
	past := time.Now().AddDate(-30, 0, 0)
	errs := ValidateStruct(&birthDetails{BirthDate: &past, BirthTime: "04:35"})
	assert.Empty(t, errs)

	future := time.Now().AddDate(1, 0, 0)
	errs = ValidateStruct(&birthDetails{BirthDate: &future, BirthTime: "04:35"})
	require.NotEmpty(t, errs)
	assert.Equal(t, "past_date", errs[0].Tag)

	errs = ValidateStruct(&birthDetails{BirthTime: "25:99"})
	require.NotEmpty(t, errs)
	assert.Equal(t, "birth_time", errs[0].Tag)
}
