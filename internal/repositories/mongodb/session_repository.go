package mongodb

import (
	"context"
	"fmt"
	"time"

	"astro-online/internal/models"
	"astro-online/internal/repositories/interfaces"
	"astro-online/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type sessionRepository struct {
	collection *mongo.Collection
}

func NewSessionRepository(db *mongo.Database) interfaces.SessionRepository {
	return &sessionRepository{
		collection: db.Collection("sessions"),
	}
}

// Create inserts the session. The partial unique index on astrologer_id over
// ongoing documents guarantees at most one live consultation per astrologer;
// a duplicate key here means someone else won the race.
func (r *sessionRepository) Create(ctx context.Context, session *models.Session) error {
	session.ID = primitive.NewObjectID()
	session.CreatedAt = time.Now()
	session.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, session)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.ErrAstrologerBusy
		}
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

func (r *sessionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Session, error) {
	var session models.Session
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return &session, nil
}

func (r *sessionRepository) GetOngoingByAstrologer(ctx context.Context, astrologerID primitive.ObjectID) (*models.Session, error) {
	return r.findOne(ctx, bson.M{
		"astrologer_id": astrologerID,
		"status":        models.SessionStatusOngoing,
	})
}

func (r *sessionRepository) GetOngoingByCustomer(ctx context.Context, customerID primitive.ObjectID) (*models.Session, error) {
	return r.findOne(ctx, bson.M{
		"customer_id": customerID,
		"status":      models.SessionStatusOngoing,
	})
}

// TransitionStatus performs a compare-and-set on the status field. The
// returned document reflects the new state; ErrInvalidState means the session
// was not in the expected state, so of N concurrent identical transitions
// exactly one succeeds.
func (r *sessionRepository) TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to models.SessionStatus, set map[string]interface{}) (*models.Session, error) {
	update := bson.M{
		"status":     to,
		"updated_at": time.Now(),
	}
	for k, v := range set {
		update[k] = v
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var session models.Session
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": update},
		opts,
	).Decode(&session)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			// Distinguish a missing session from a state mismatch.
			if _, getErr := r.GetByID(ctx, id); getErr != nil {
				return nil, getErr
			}
			return nil, models.ErrInvalidState
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, models.ErrAstrologerBusy
		}
		return nil, fmt.Errorf("failed to transition session: %w", err)
	}

	return &session, nil
}

func (r *sessionRepository) ListByCustomer(ctx context.Context, customerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Session, int64, error) {
	return r.findSessions(ctx, bson.M{"customer_id": customerID}, params)
}

func (r *sessionRepository) ListByAstrologer(ctx context.Context, astrologerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Session, int64, error) {
	return r.findSessions(ctx, bson.M{"astrologer_id": astrologerID}, params)
}

func (r *sessionRepository) ListPendingForAstrologer(ctx context.Context, astrologerID primitive.ObjectID) ([]*models.Session, error) {
	filter := bson.M{
		"astrologer_id": astrologerID,
		"status":        models.SessionStatusPending,
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending sessions: %w", err)
	}
	defer cursor.Close(ctx)

	var sessions []*models.Session
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, fmt.Errorf("failed to decode sessions: %w", err)
	}

	return sessions, nil
}

func (r *sessionRepository) FindStaleOngoing(ctx context.Context, cutoff time.Time) ([]*models.Session, error) {
	filter := bson.M{
		"status":     models.SessionStatusOngoing,
		"started_at": bson.M{"$lt": cutoff},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find stale sessions: %w", err)
	}
	defer cursor.Close(ctx)

	var sessions []*models.Session
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, fmt.Errorf("failed to decode sessions: %w", err)
	}

	return sessions, nil
}

func (r *sessionRepository) findOne(ctx context.Context, filter bson.M) (*models.Session, error) {
	var session models.Session
	err := r.collection.FindOne(ctx, filter).Decode(&session)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &session, nil
}

func (r *sessionRepository) findSessions(ctx context.Context, filter bson.M, params *utils.PaginationParams) ([]*models.Session, int64, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count sessions: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetSortOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer cursor.Close(ctx)

	var sessions []*models.Session
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, 0, fmt.Errorf("failed to decode sessions: %w", err)
	}

	return sessions, total, nil
}
