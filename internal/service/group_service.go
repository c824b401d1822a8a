package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"progress-service/internal/event"
	"progress-service/internal/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// GroupService manages learning-group membership. Group enrollment into
// courses lives in EnrollmentService; this service only grows the groups
// themselves.
type GroupService struct {
	groups    GroupStore
	publisher event.Publisher
}

func NewGroupService(groups GroupStore, publisher event.Publisher) *GroupService {
	return &GroupService{groups: groups, publisher: publisher}
}

// AddMember adds a user to a group under the given role. Only a group
// leader or an admin may do this. Adding an existing member is a conflict
// so that callers notice stale rosters.
func (s *GroupService) AddMember(ctx context.Context, callerID, groupID, userID, role string, isAdmin bool) (*models.Group, error) {
	if callerID == "" {
		return nil, models.ErrUnauthenticated
	}
	if groupID == "" || userID == "" {
		return nil, fmt.Errorf("%w: groupId and userId are required", models.ErrInvalidArgument)
	}
	if role == "" {
		role = models.GroupRoleStudent
	}
	if role != models.GroupRoleLeader && role != models.GroupRoleStudent {
		return nil, fmt.Errorf("%w: unknown role %q", models.ErrInvalidArgument, role)
	}

	group, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: group %s", models.ErrNotFound, groupID)
		}
		return nil, err
	}
	if !isAdmin && !group.IsLeader(callerID) {
		return nil, fmt.Errorf("%w: only group leaders can add members", models.ErrForbidden)
	}
	if group.IsMember(userID) {
		return nil, fmt.Errorf("%w: user %s is already a member", models.ErrConflict, userID)
	}

	if err := s.groups.AddMember(ctx, groupID, userID, role); err != nil {
		return nil, err
	}
	if err := s.publisher.PublishProgressEvent(event.NewGroupMemberAddedEvent(userID, groupID, role)); err != nil {
		log.Printf("Failed to publish group member event: %v", err)
	}

	return s.groups.FindByID(ctx, groupID)
}

// ListLedGroups returns the groups the user leads, for the management
// screens that pick a group to enroll.
func (s *GroupService) ListLedGroups(ctx context.Context, userID string) ([]models.Group, error) {
	if userID == "" {
		return nil, models.ErrUnauthenticated
	}
	groups, err := s.groups.FindByLeader(ctx, userID)
	if err != nil {
		return nil, err
	}
	if groups == nil {
		groups = []models.Group{}
	}
	return groups, nil
}
