package repository

import (
	"context"
	"fmt"
	"time"

	"progress-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GroupRepository owns the groups collection. Group enrollment looks groups
// up by exact name; the unique name index keeps the lazy create-on-first-use
// path from racing into duplicates.
type GroupRepository struct {
	Col *mongo.Collection
}

func NewGroupRepository(db *mongo.Database) *GroupRepository {
	return &GroupRepository{Col: db.Collection("groups")}
}

func (r *GroupRepository) FindByID(ctx context.Context, id string) (*models.Group, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}
	var group models.Group
	if err := r.Col.FindOne(ctx, bson.M{"_id": objID}).Decode(&group); err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *GroupRepository) FindByName(ctx context.Context, name string) (*models.Group, error) {
	var group models.Group
	if err := r.Col.FindOne(ctx, bson.M{"name": name}).Decode(&group); err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *GroupRepository) FindByLeader(ctx context.Context, userID string) ([]models.Group, error) {
	cur, err := r.Col.Find(ctx, bson.M{"leaders": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to find groups led by %s: %w", userID, err)
	}
	defer cur.Close(ctx)

	var groups []models.Group
	if err := cur.All(ctx, &groups); err != nil {
		return nil, fmt.Errorf("failed to decode groups: %w", err)
	}
	return groups, nil
}

func (r *GroupRepository) Create(ctx context.Context, group *models.Group) error {
	if group.ID.IsZero() {
		group.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	group.CreatedAt = now
	group.UpdatedAt = now

	if _, err := r.Col.InsertOne(ctx, group); err != nil {
		return fmt.Errorf("failed to create group %s: %w", group.Name, err)
	}
	return nil
}

// AddMember adds the user to the leaders or students set. Idempotent.
func (r *GroupRepository) AddMember(ctx context.Context, groupID, userID, role string) error {
	objID, err := primitive.ObjectIDFromHex(groupID)
	if err != nil {
		return mongo.ErrNoDocuments
	}
	field := "students"
	if role == models.GroupRoleLeader {
		field = "leaders"
	}
	update := bson.M{
		"$addToSet": bson.M{field: userID},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
		"$inc":      bson.M{"version": 1},
	}
	if _, err := r.Col.UpdateOne(ctx, bson.M{"_id": objID}, update); err != nil {
		return fmt.Errorf("failed to add %s to group %s: %w", userID, groupID, err)
	}
	return nil
}

func (r *GroupRepository) AddCourse(ctx context.Context, groupID, courseID string) error {
	objID, err := primitive.ObjectIDFromHex(groupID)
	if err != nil {
		return mongo.ErrNoDocuments
	}
	update := bson.M{
		"$addToSet": bson.M{"courses": courseID},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
		"$inc":      bson.M{"version": 1},
	}
	if _, err := r.Col.UpdateOne(ctx, bson.M{"_id": objID}, update); err != nil {
		return fmt.Errorf("failed to add course %s to group %s: %w", courseID, groupID, err)
	}
	return nil
}

func (r *GroupRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "leaders", Value: 1}}},
	}
	if _, err := r.Col.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create group indexes: %w", err)
	}
	return nil
}
