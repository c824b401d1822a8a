package repository

import (
	"context"
	"fmt"
	"time"

	"progress-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// LearnerRepository owns the learners collection. The coursesProgress array
// is mutated read-modify-write, so writes are guarded by an optimistic
// version check instead of a blind $set.
type LearnerRepository struct {
	Col *mongo.Collection
}

func NewLearnerRepository(db *mongo.Database) *LearnerRepository {
	return &LearnerRepository{Col: db.Collection("learners")}
}

// EnsureLearner returns the learner document for the user id, creating an
// empty one on first contact. The upsert makes concurrent first contacts
// converge on a single document (userId carries a unique index).
func (r *LearnerRepository) EnsureLearner(ctx context.Context, userID string) (*models.Learner, error) {
	now := time.Now().UTC()
	filter := bson.M{"userId": userID}
	update := bson.M{
		"$setOnInsert": bson.M{
			"userId":          userID,
			"coursesProgress": []models.CourseProgress{},
			"version":         int64(0),
			"createdAt":       now,
		},
		"$set": bson.M{"updatedAt": now},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var learner models.Learner
	if err := r.Col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&learner); err != nil {
		return nil, fmt.Errorf("failed to ensure learner %s: %w", userID, err)
	}
	return &learner, nil
}

// FindByUserID returns the learner or mongo.ErrNoDocuments.
func (r *LearnerRepository) FindByUserID(ctx context.Context, userID string) (*models.Learner, error) {
	var learner models.Learner
	if err := r.Col.FindOne(ctx, bson.M{"userId": userID}).Decode(&learner); err != nil {
		return nil, err
	}
	return &learner, nil
}

// UpdateCoursesProgress writes the progress collection back, but only if the
// document still carries the version it was read at. A lost race surfaces as
// ErrVersionConflict and the caller re-reads and retries.
func (r *LearnerRepository) UpdateCoursesProgress(ctx context.Context, userID string, progress []models.CourseProgress, version int64) error {
	filter := bson.M{"userId": userID, "version": version}
	update := bson.M{
		"$set": bson.M{
			"coursesProgress": progress,
			"updatedAt":       time.Now().UTC(),
		},
		"$inc": bson.M{"version": 1},
	}
	result, err := r.Col.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update progress for %s: %w", userID, err)
	}
	if result.MatchedCount == 0 {
		return models.ErrVersionConflict
	}
	return nil
}

func (r *LearnerRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "coursesProgress.courseId", Value: 1}},
		},
	}
	if _, err := r.Col.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create learner indexes: %w", err)
	}
	return nil
}
