package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"progress-service/internal/event"
	"progress-service/internal/models"
	"progress-service/internal/progress"

	"go.mongodb.org/mongo-driver/mongo"
)

// CompletionService orchestrates lesson completion, quiz submission and
// explicit course completion. Every entry point follows the same shape:
// load aggregates, mutate through the ledger, re-evaluate through the
// cascade engine, persist, then fire downstream effects.
type CompletionService struct {
	learners     LearnerStore
	courses      CourseStore
	quizzes      QuizStore
	certificates *CertificateService
	publisher    event.Publisher
}

func NewCompletionService(learners LearnerStore, courses CourseStore, quizzes QuizStore, certificates *CertificateService, publisher event.Publisher) *CompletionService {
	return &CompletionService{
		learners:     learners,
		courses:      courses,
		quizzes:      quizzes,
		certificates: certificates,
		publisher:    publisher,
	}
}

// CompleteLesson records the lesson in the learner's ledger. It never
// cascades into course completion; that is reserved for quiz passes and
// the explicit course-completion call.
func (s *CompletionService) CompleteLesson(ctx context.Context, userID, courseID, lessonID string) error {
	if userID == "" {
		return models.ErrUnauthenticated
	}
	if courseID == "" || lessonID == "" {
		return fmt.Errorf("%w: courseId and lessonId are required", models.ErrInvalidArgument)
	}

	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("%w: course %s", models.ErrNotFound, courseID)
		}
		return err
	}
	if !course.HasLesson(lessonID) {
		return fmt.Errorf("%w: lesson %s in course %s", models.ErrNotFound, lessonID, courseID)
	}

	courseQuizzes, err := s.quizzes.FindByCourse(ctx, courseID)
	if err != nil {
		return err
	}
	byLesson := progress.QuizzesByLesson(courseQuizzes)

	newlyMarked := false
	_, err = mutateLearnerProgress(ctx, s.learners, userID, func(learner *models.Learner) error {
		var idx int
		learner.CoursesProgress, idx = progress.GetOrCreate(learner.CoursesProgress, courseID)
		entry := &learner.CoursesProgress[idx]

		// Linear courses gate each lesson on its predecessor.
		if course.NavigationMode == models.NavigationLinear &&
			!progress.IsPreviousLessonComplete(entry, course, lessonID, byLesson) {
			return fmt.Errorf("%w: previous lesson is not complete", models.ErrConflict)
		}

		newlyMarked = progress.MarkLessonComplete(entry, lessonID, time.Now().UTC())
		return nil
	})
	if err != nil {
		return err
	}

	if newlyMarked {
		if err := s.publisher.PublishProgressEvent(event.NewLessonCompletedEvent(userID, courseID, lessonID)); err != nil {
			log.Printf("Failed to publish lesson completion event: %v", err)
		}
	}
	return nil
}

// QuizSubmission is the caller-facing outcome of a graded submission.
// Failing the quiz is a normal result, not an error: the learner retries.
type QuizSubmission struct {
	Score           float64
	Correct         int
	Total           int
	Passed          bool
	CourseCompleted bool
}

// SubmitQuiz grades the submission, stores the result (latest-wins), marks
// the quiz's lesson complete on a pass, and cascades into course
// completion when the pass closed the last required lesson.
func (s *CompletionService) SubmitQuiz(ctx context.Context, userID, courseID, quizID string, answers map[string]string) (*QuizSubmission, error) {
	if userID == "" {
		return nil, models.ErrUnauthenticated
	}
	if courseID == "" || quizID == "" {
		return nil, fmt.Errorf("%w: courseId and quizId are required", models.ErrInvalidArgument)
	}
	if answers == nil {
		return nil, fmt.Errorf("%w: answers are required", models.ErrInvalidArgument)
	}

	quiz, err := s.quizzes.FindByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: quiz %s", models.ErrNotFound, quizID)
		}
		return nil, err
	}
	if quiz.CourseID != courseID {
		return nil, fmt.Errorf("%w: quiz %s in course %s", models.ErrNotFound, quizID, courseID)
	}

	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: course %s", models.ErrNotFound, courseID)
		}
		return nil, err
	}
	courseQuizzes, err := s.quizzes.FindByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	result := progress.Grade(quiz, answers)
	passed := result.Passed(quiz.MinimumScore)
	submission := &QuizSubmission{
		Score:   result.Score,
		Correct: result.Correct,
		Total:   result.Total,
		Passed:  passed,
	}

	wasComplete := false
	nowComplete := false
	_, err = mutateLearnerProgress(ctx, s.learners, userID, func(learner *models.Learner) error {
		var idx int
		learner.CoursesProgress, idx = progress.GetOrCreate(learner.CoursesProgress, courseID)
		entry := &learner.CoursesProgress[idx]

		now := time.Now().UTC()
		progress.UpsertQuizResult(entry, quizID, result.Score, now)
		if passed && quiz.LessonID != "" {
			progress.MarkLessonComplete(entry, quiz.LessonID, now)
		}

		wasComplete = entry.Completed
		nowComplete = wasComplete
		if passed && !wasComplete {
			nowComplete = progress.IsCourseComplete(entry, course, courseQuizzes)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.publisher.PublishProgressEvent(event.NewQuizSubmittedEvent(userID, courseID, quizID, result.Score, passed)); err != nil {
		log.Printf("Failed to publish quiz submission event: %v", err)
	}

	if nowComplete && !wasComplete {
		if err := s.finalizeCompletion(ctx, userID, course); err != nil {
			return nil, err
		}
		submission.CourseCompleted = true
	}
	return submission, nil
}

// CompleteCourse is the explicit, non-quiz-gated completion path for
// courses without quiz gating. Unlike enroll, re-completing is surfaced as
// a conflict rather than silently accepted.
func (s *CompletionService) CompleteCourse(ctx context.Context, callerID, courseID, onBehalfOf string) error {
	if callerID == "" {
		return models.ErrUnauthenticated
	}
	if courseID == "" {
		return fmt.Errorf("%w: courseId is required", models.ErrInvalidArgument)
	}
	target := callerID
	if onBehalfOf != "" {
		target = onBehalfOf
	}

	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("%w: course %s", models.ErrNotFound, courseID)
		}
		return err
	}

	// The course's enrolledStudents set is the source of truth for the
	// enrollment check; the ledger's bookkeeping is a derived cache.
	if course.HasCompleted(target) {
		return fmt.Errorf("%w: course already completed", models.ErrConflict)
	}
	if !course.IsEnrolled(target) {
		return fmt.Errorf("%w: not enrolled in course", models.ErrConflict)
	}

	return s.finalizeCompletion(ctx, target, course)
}

// finalizeCompletion runs the completion edge: migrate the course
// membership sets first (fail toward not-yet-done), then flip the ledger
// entry, then fire the best-effort downstream effects. Every step is
// idempotent, so a partial failure is repaired by retrying the request.
func (s *CompletionService) finalizeCompletion(ctx context.Context, userID string, course *models.Course) error {
	courseID := course.ID.Hex()
	if err := s.courses.MoveToCompleted(ctx, courseID, userID); err != nil {
		return err
	}

	newlyCompleted := false
	_, err := mutateLearnerProgress(ctx, s.learners, userID, func(learner *models.Learner) error {
		var idx int
		learner.CoursesProgress, idx = progress.GetOrCreate(learner.CoursesProgress, courseID)
		newlyCompleted = progress.MarkCourseComplete(&learner.CoursesProgress[idx], time.Now().UTC())
		return nil
	})
	if err != nil {
		return err
	}

	// Certificate issuance is best-effort: its failure never rolls back or
	// fails the completion.
	if err := s.certificates.MaybeIssueCertificate(ctx, userID, course); err != nil {
		log.Printf("Certificate issuance for user %s course %s failed, completion stands: %v", userID, courseID, err)
	}

	if newlyCompleted {
		if err := s.publisher.PublishProgressEvent(event.NewCourseCompletedEvent(userID, courseID)); err != nil {
			log.Printf("Failed to publish course completion event: %v", err)
		}
	}
	return nil
}
