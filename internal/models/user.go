package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CompletedLesson records one finished lesson inside a course progress entry.
// A lesson appears at most once per entry.
type CompletedLesson struct {
	LessonID    string    `bson:"lessonId" json:"lessonId"`
	CompletedAt time.Time `bson:"completedAt" json:"completedAt"`
}

// CompletedQuiz records the latest submission for a quiz. Re-submission
// replaces the stored score (latest-wins).
type CompletedQuiz struct {
	QuizID      string    `bson:"quizId" json:"quizId"`
	Score       float64   `bson:"score" json:"score"`
	CompletedAt time.Time `bson:"completedAt" json:"completedAt"`
}

// CourseProgress is the per-learner-per-course ledger entry. Completed is
// monotonic: once true it never reverts, and CompletedAt is stamped exactly
// once on the false->true edge.
type CourseProgress struct {
	CourseID         string            `bson:"courseId" json:"courseId"`
	Completed        bool              `bson:"completed" json:"completed"`
	CompletedAt      *time.Time        `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CompletedLessons []CompletedLesson `bson:"completedLessons" json:"completedLessons"`
	CompletedQuizzes []CompletedQuiz   `bson:"completedQuizzes" json:"completedQuizzes"`
}

// Learner is the per-user aggregate owning the coursesProgress collection.
// Identity itself (credentials, profile) lives in other services; this
// service keys learners by the gateway-issued user id.
type Learner struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID          string             `bson:"userId" json:"userId"`
	CoursesProgress []CourseProgress   `bson:"coursesProgress" json:"coursesProgress"`
	Version         int64              `bson:"version" json:"-"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}
