package service

import (
	"context"
	"errors"
	"fmt"

	"progress-service/internal/models"
)

// Store interfaces are declared here, where they are consumed; the mongo
// implementations live in internal/repository and test fakes in the _test
// files.

type LearnerStore interface {
	EnsureLearner(ctx context.Context, userID string) (*models.Learner, error)
	FindByUserID(ctx context.Context, userID string) (*models.Learner, error)
	UpdateCoursesProgress(ctx context.Context, userID string, progress []models.CourseProgress, version int64) error
}

type CourseStore interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
	FindByStudent(ctx context.Context, userID string) ([]models.Course, error)
	AddEnrolledStudent(ctx context.Context, courseID, userID string) error
	AddEnrolledGroup(ctx context.Context, courseID, groupID string) error
	MoveToCompleted(ctx context.Context, courseID, userID string) error
}

type GroupStore interface {
	FindByID(ctx context.Context, id string) (*models.Group, error)
	FindByName(ctx context.Context, name string) (*models.Group, error)
	FindByLeader(ctx context.Context, userID string) ([]models.Group, error)
	Create(ctx context.Context, group *models.Group) error
	AddMember(ctx context.Context, groupID, userID, role string) error
	AddCourse(ctx context.Context, groupID, courseID string) error
}

type QuizStore interface {
	FindByID(ctx context.Context, id string) (*models.Quiz, error)
	FindByCourse(ctx context.Context, courseID string) ([]models.Quiz, error)
}

type IssuanceStore interface {
	CreateIfAbsent(ctx context.Context, issuance *models.CertificateIssuance) (bool, error)
}

// maxWriteRetries bounds the optimistic-concurrency retry loop on learner
// progress writes.
const maxWriteRetries = 3

// mutateLearnerProgress runs a read-modify-write cycle over the learner's
// coursesProgress under the version check, retrying when a concurrent
// writer got there first. The mutate callback must be safe to re-run on a
// fresh read.
func mutateLearnerProgress(ctx context.Context, learners LearnerStore, userID string, mutate func(learner *models.Learner) error) (*models.Learner, error) {
	var lastErr error
	for attempt := 0; attempt < maxWriteRetries; attempt++ {
		learner, err := learners.EnsureLearner(ctx, userID)
		if err != nil {
			return nil, err
		}
		if err := mutate(learner); err != nil {
			return nil, err
		}
		err = learners.UpdateCoursesProgress(ctx, userID, learner.CoursesProgress, learner.Version)
		if err == nil {
			return learner, nil
		}
		if !errors.Is(err, models.ErrVersionConflict) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("progress write for %s kept losing races: %w", userID, lastErr)
}
