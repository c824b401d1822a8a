package service

import (
	"context"
	"errors"
	"time"

	"progress-service/internal/models"
	"progress-service/internal/progress"

	"go.mongodb.org/mongo-driver/mongo"
)

// CourseProgressView is a ledger entry joined with the derived
// completion percentage for its course.
type CourseProgressView struct {
	CourseID             string                   `json:"courseId"`
	Completed            bool                     `json:"completed"`
	CompletedAt          *time.Time               `json:"completedAt,omitempty"`
	CompletionPercentage int                      `json:"completionPercentage"`
	CompletedLessons     []models.CompletedLesson `json:"completedLessons"`
	CompletedQuizzes     []models.CompletedQuiz   `json:"completedQuizzes"`
}

// ProgressSummary aggregates everything the profile screens need about a
// learner in a single response.
type ProgressSummary struct {
	UserID           string               `json:"userId"`
	CoursesProgress  []CourseProgressView `json:"coursesProgress"`
	EnrolledCourses  []string             `json:"enrolledCourses"`
	CompletedCourses []string             `json:"completedCourses"`
}

type ProgressService struct {
	learners LearnerStore
	courses  CourseStore
	quizzes  QuizStore
}

func NewProgressService(learners LearnerStore, courses CourseStore, quizzes QuizStore) *ProgressService {
	return &ProgressService{learners: learners, courses: courses, quizzes: quizzes}
}

// FetchProgress returns the learner's full progress picture. A user with
// no ledger yet gets an empty summary, not a 404: enrollment-free reads
// happen before the first completion event.
func (s *ProgressService) FetchProgress(ctx context.Context, userID string) (*ProgressSummary, error) {
	if userID == "" {
		return nil, models.ErrUnauthenticated
	}

	summary := &ProgressSummary{
		UserID:           userID,
		CoursesProgress:  []CourseProgressView{},
		EnrolledCourses:  []string{},
		CompletedCourses: []string{},
	}

	learner, err := s.learners.FindByUserID(ctx, userID)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	memberships, err := s.courses.FindByStudent(ctx, userID)
	if err != nil {
		return nil, err
	}
	coursesByID := make(map[string]*models.Course, len(memberships))
	for i := range memberships {
		course := &memberships[i]
		id := course.ID.Hex()
		coursesByID[id] = course
		if course.HasCompleted(userID) {
			summary.CompletedCourses = append(summary.CompletedCourses, id)
		} else {
			summary.EnrolledCourses = append(summary.EnrolledCourses, id)
		}
	}

	if learner == nil {
		return summary, nil
	}

	for i := range learner.CoursesProgress {
		entry := &learner.CoursesProgress[i]
		view := CourseProgressView{
			CourseID:         entry.CourseID,
			Completed:        entry.Completed,
			CompletedAt:      entry.CompletedAt,
			CompletedLessons: entry.CompletedLessons,
			CompletedQuizzes: entry.CompletedQuizzes,
		}
		if view.CompletedLessons == nil {
			view.CompletedLessons = []models.CompletedLesson{}
		}
		if view.CompletedQuizzes == nil {
			view.CompletedQuizzes = []models.CompletedQuiz{}
		}

		if course, ok := coursesByID[entry.CourseID]; ok {
			view.CompletionPercentage = progress.CompletionPercentage(entry, course)
		} else if entry.Completed {
			// Membership already migrated away or the course was removed;
			// the ledger still proves the completion.
			view.CompletionPercentage = 100
		}
		summary.CoursesProgress = append(summary.CoursesProgress, view)
	}
	return summary, nil
}
