package interfaces

import (
	"context"
	"time"

	"astro-online/internal/models"
	"astro-online/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SessionRepository interface {
	// Create inserts the session document. Inserting a second ongoing
	// session for the same astrologer trips the partial unique index and
	// returns models.ErrAstrologerBusy.
	Create(ctx context.Context, session *models.Session) error

	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Session, error)
	GetOngoingByAstrologer(ctx context.Context, astrologerID primitive.ObjectID) (*models.Session, error)
	GetOngoingByCustomer(ctx context.Context, customerID primitive.ObjectID) (*models.Session, error)

	// TransitionStatus flips status from one value to another in a single
	// conditional update. Returns models.ErrInvalidState when the session
	// is not in the expected state, which makes every transition
	// exactly-once under concurrent callers.
	TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to models.SessionStatus, set map[string]interface{}) (*models.Session, error)

	ListByCustomer(ctx context.Context, customerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Session, int64, error)
	ListByAstrologer(ctx context.Context, astrologerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Session, int64, error)
	ListPendingForAstrologer(ctx context.Context, astrologerID primitive.ObjectID) ([]*models.Session, error)

	// FindStaleOngoing returns ongoing sessions started before the cutoff,
	// used by the watchdog to force-end abandoned consultations.
	FindStaleOngoing(ctx context.Context, cutoff time.Time) ([]*models.Session, error)
}
