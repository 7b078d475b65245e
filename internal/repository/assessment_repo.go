package repository

import (
	"context"
	"errors"
	"maturitymap/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultHistoryLimit caps history listings when the caller passes no limit
const DefaultHistoryLimit = 20

// ErrInvalidRecord is returned when a record cannot be stored
var ErrInvalidRecord = errors.New("assessment record requires an id")

// AssessmentRepo stores completed assessments
type AssessmentRepo interface {
	Save(ctx context.Context, record *model.AssessmentRecord) error
	ListByEmail(ctx context.Context, email string, limit int) ([]model.AssessmentRecord, error)
}

type assessmentRepo struct {
	collection *mongo.Collection
}

// NewAssessmentRepo creates a MongoDB backed assessment history
func NewAssessmentRepo(db *mongo.Database) AssessmentRepo {
	return &assessmentRepo{collection: db.Collection("assessments")}
}

func (r *assessmentRepo) Save(ctx context.Context, record *model.AssessmentRecord) error {
	if record == nil || record.ID == "" {
		return ErrInvalidRecord
	}
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": record.ID}, record, opts)
	return err
}

func (r *assessmentRepo) ListByEmail(ctx context.Context, email string, limit int) ([]model.AssessmentRecord, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(historyLimit(limit)))

	cursor, err := r.collection.Find(ctx, bson.M{"organization.email": email}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	records := []model.AssessmentRecord{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func historyLimit(limit int) int {
	if limit <= 0 {
		return DefaultHistoryLimit
	}
	return limit
}
