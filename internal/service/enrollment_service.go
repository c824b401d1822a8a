package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"progress-service/internal/event"
	"progress-service/internal/models"
	"progress-service/internal/progress"

	"go.mongodb.org/mongo-driver/mongo"
)

// EnrollmentService coordinates individual and group enrollment across the
// Group, Course and Learner aggregates. The writes are not transactional;
// they run group -> course -> learner so that a crash mid-way leaves the
// learner not yet enrolled, which a retry of the same request repairs.
type EnrollmentService struct {
	learners  LearnerStore
	courses   CourseStore
	groups    GroupStore
	publisher event.Publisher
}

func NewEnrollmentService(learners LearnerStore, courses CourseStore, groups GroupStore, publisher event.Publisher) *EnrollmentService {
	return &EnrollmentService{
		learners:  learners,
		courses:   courses,
		groups:    groups,
		publisher: publisher,
	}
}

type EnrollOptions struct {
	IsGroup    bool
	GroupName  string
	IsLeader   bool
	OnBehalfOf string
}

type EnrollOutcome struct {
	UserID           string
	CourseID         string
	GroupID          string
	AlreadyEnrolled  bool
	AlreadyCompleted bool
}

// Enroll is idempotent: re-enrolling an enrolled or completed learner is a
// success that still backfills a missing progress entry, guarding against a
// learner added to enrolledStudents by another path without a ledger row.
func (s *EnrollmentService) Enroll(ctx context.Context, callerID, courseID string, opts EnrollOptions) (*EnrollOutcome, error) {
	if callerID == "" {
		return nil, models.ErrUnauthenticated
	}
	if courseID == "" {
		return nil, fmt.Errorf("%w: courseId is required", models.ErrInvalidArgument)
	}
	if opts.IsGroup && strings.TrimSpace(opts.GroupName) == "" {
		return nil, fmt.Errorf("%w: companyName is required for group enrollment", models.ErrInvalidArgument)
	}

	target := callerID
	if opts.OnBehalfOf != "" {
		target = opts.OnBehalfOf
	}

	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: course %s", models.ErrNotFound, courseID)
		}
		return nil, err
	}

	outcome := &EnrollOutcome{
		UserID:           target,
		CourseID:         courseID,
		AlreadyEnrolled:  course.IsEnrolled(target),
		AlreadyCompleted: course.HasCompleted(target),
	}

	if opts.IsGroup {
		groupID, err := s.ensureGroupEnrollment(ctx, target, courseID, opts)
		if err != nil {
			return nil, err
		}
		outcome.GroupID = groupID
		if err := s.courses.AddEnrolledGroup(ctx, courseID, groupID); err != nil {
			return nil, err
		}
	}

	// Course membership before the learner aggregate; completed learners
	// are never pushed back into the enrolled set.
	if !outcome.AlreadyCompleted {
		if err := s.courses.AddEnrolledStudent(ctx, courseID, target); err != nil {
			return nil, err
		}
	}

	// Ledger entry last, so a partial failure fails toward "not yet
	// enrolled". GetOrCreate also backfills for already-enrolled learners.
	_, err = mutateLearnerProgress(ctx, s.learners, target, func(learner *models.Learner) error {
		learner.CoursesProgress, _ = progress.GetOrCreate(learner.CoursesProgress, courseID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !outcome.AlreadyEnrolled && !outcome.AlreadyCompleted {
		if err := s.publisher.PublishProgressEvent(event.NewEnrolledEvent(target, courseID, outcome.GroupID)); err != nil {
			log.Printf("Failed to publish enrollment event: %v", err)
		}
	}
	return outcome, nil
}

// ensureGroupEnrollment resolves the group by exact name, creating it on
// first use, and makes the three idempotent set additions: member, course
// on the group, each a no-op when already present.
func (s *EnrollmentService) ensureGroupEnrollment(ctx context.Context, userID, courseID string, opts EnrollOptions) (string, error) {
	role := models.GroupRoleStudent
	if opts.IsLeader {
		role = models.GroupRoleLeader
	}

	group, err := s.groups.FindByName(ctx, opts.GroupName)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return "", err
		}
		seeded := &models.Group{
			Name:     opts.GroupName,
			Leaders:  []string{},
			Students: []string{},
			Courses:  []string{courseID},
		}
		if opts.IsLeader {
			seeded.Leaders = append(seeded.Leaders, userID)
		} else {
			seeded.Students = append(seeded.Students, userID)
		}
		if createErr := s.groups.Create(ctx, seeded); createErr != nil {
			// Lost the create race against a concurrent first enrollment
			// under the same name: fall back to the existing group.
			group, err = s.groups.FindByName(ctx, opts.GroupName)
			if err != nil {
				return "", createErr
			}
		} else {
			return seeded.ID.Hex(), nil
		}
	}

	groupID := group.ID.Hex()
	if !group.IsMember(userID) {
		if err := s.groups.AddMember(ctx, groupID, userID, role); err != nil {
			return "", err
		}
	}
	if err := s.groups.AddCourse(ctx, groupID, courseID); err != nil {
		return "", err
	}
	return groupID, nil
}
