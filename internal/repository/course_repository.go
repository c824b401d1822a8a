package repository

import (
	"context"
	"fmt"
	"time"

	"progress-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CourseRepository owns the courses collection. Membership mutations are
// expressed as $addToSet / $pull so repeats and retries are no-ops; each
// UpdateOne is atomic on the document, which is all the exclusivity the
// enrolled/completed sets need.
type CourseRepository struct {
	Col *mongo.Collection
}

func NewCourseRepository(db *mongo.Database) *CourseRepository {
	return &CourseRepository{Col: db.Collection("courses")}
}

func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}
	var course models.Course
	if err := r.Col.FindOne(ctx, bson.M{"_id": objID}).Decode(&course); err != nil {
		return nil, err
	}
	return &course, nil
}

// FindByStudent returns every course the user is enrolled in or has
// completed, in creation order.
func (r *CourseRepository) FindByStudent(ctx context.Context, userID string) ([]models.Course, error) {
	filter := bson.M{"$or": []bson.M{
		{"enrolledStudents": userID},
		{"courseCompletedStudents": userID},
	}}
	cur, err := r.Col.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find courses for %s: %w", userID, err)
	}
	defer cur.Close(ctx)

	var courses []models.Course
	if err := cur.All(ctx, &courses); err != nil {
		return nil, fmt.Errorf("failed to decode courses: %w", err)
	}
	return courses, nil
}

// AddEnrolledStudent adds the user to enrolledStudents unless already
// present in either membership set.
func (r *CourseRepository) AddEnrolledStudent(ctx context.Context, courseID, userID string) error {
	objID, err := primitive.ObjectIDFromHex(courseID)
	if err != nil {
		return mongo.ErrNoDocuments
	}
	// Guard: never re-enroll a learner who already completed the course.
	filter := bson.M{"_id": objID, "courseCompletedStudents": bson.M{"$ne": userID}}
	update := bson.M{
		"$addToSet": bson.M{"enrolledStudents": userID},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
		"$inc":      bson.M{"version": 1},
	}
	if _, err := r.Col.UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("failed to enroll %s in course %s: %w", userID, courseID, err)
	}
	return nil
}

func (r *CourseRepository) AddEnrolledGroup(ctx context.Context, courseID, groupID string) error {
	objID, err := primitive.ObjectIDFromHex(courseID)
	if err != nil {
		return mongo.ErrNoDocuments
	}
	update := bson.M{
		"$addToSet": bson.M{"enrolledGroups": groupID},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
		"$inc":      bson.M{"version": 1},
	}
	if _, err := r.Col.UpdateOne(ctx, bson.M{"_id": objID}, update); err != nil {
		return fmt.Errorf("failed to add group %s to course %s: %w", groupID, courseID, err)
	}
	return nil
}

// MoveToCompleted migrates the user from enrolledStudents to
// courseCompletedStudents in one atomic update, so the user can never be
// observed in both sets.
func (r *CourseRepository) MoveToCompleted(ctx context.Context, courseID, userID string) error {
	objID, err := primitive.ObjectIDFromHex(courseID)
	if err != nil {
		return mongo.ErrNoDocuments
	}
	update := bson.M{
		"$pull":     bson.M{"enrolledStudents": userID},
		"$addToSet": bson.M{"courseCompletedStudents": userID},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
		"$inc":      bson.M{"version": 1},
	}
	if _, err := r.Col.UpdateOne(ctx, bson.M{"_id": objID}, update); err != nil {
		return fmt.Errorf("failed to complete course %s for %s: %w", courseID, userID, err)
	}
	return nil
}

func (r *CourseRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "enrolledStudents", Value: 1}}},
		{Keys: bson.D{{Key: "courseCompletedStudents", Value: 1}}},
	}
	if _, err := r.Col.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create course indexes: %w", err)
	}
	return nil
}
