package progress

import (
	"time"

	"progress-service/internal/models"
)

// Ledger operations are pure merges over a learner's coursesProgress
// collection. Callers persist the mutated slice; nothing here touches
// storage.

// GetOrCreate returns the index of the entry for courseID, appending a
// freshly initialized entry when none exists. The (possibly grown) slice is
// returned so callers can write it back.
func GetOrCreate(entries []models.CourseProgress, courseID string) ([]models.CourseProgress, int) {
	for i := range entries {
		if entries[i].CourseID == courseID {
			return entries, i
		}
	}
	entries = append(entries, models.CourseProgress{
		CourseID:         courseID,
		Completed:        false,
		CompletedLessons: []models.CompletedLesson{},
		CompletedQuizzes: []models.CompletedQuiz{},
	})
	return entries, len(entries) - 1
}

// MarkLessonComplete records the lesson in the entry. Idempotent: repeat
// calls for the same lesson are no-ops and report false.
func MarkLessonComplete(entry *models.CourseProgress, lessonID string, at time.Time) bool {
	for _, l := range entry.CompletedLessons {
		if l.LessonID == lessonID {
			return false
		}
	}
	entry.CompletedLessons = append(entry.CompletedLessons, models.CompletedLesson{
		LessonID:    lessonID,
		CompletedAt: at,
	})
	return true
}

// UpsertQuizResult stores the latest submission for the quiz. An existing
// record is replaced unconditionally (latest-wins), never duplicated.
func UpsertQuizResult(entry *models.CourseProgress, quizID string, score float64, at time.Time) {
	for i := range entry.CompletedQuizzes {
		if entry.CompletedQuizzes[i].QuizID == quizID {
			entry.CompletedQuizzes[i].Score = score
			entry.CompletedQuizzes[i].CompletedAt = at
			return
		}
	}
	entry.CompletedQuizzes = append(entry.CompletedQuizzes, models.CompletedQuiz{
		QuizID:      quizID,
		Score:       score,
		CompletedAt: at,
	})
}

// MarkCourseComplete flips the entry to completed and stamps CompletedAt
// once. Completion is monotonic: an already completed entry is untouched
// and the call reports false.
func MarkCourseComplete(entry *models.CourseProgress, at time.Time) bool {
	if entry.Completed {
		return false
	}
	entry.Completed = true
	entry.CompletedAt = &at
	return true
}

// QuizScore returns the recorded score for a quiz, if any.
func QuizScore(entry *models.CourseProgress, quizID string) (float64, bool) {
	for _, q := range entry.CompletedQuizzes {
		if q.QuizID == quizID {
			return q.Score, true
		}
	}
	return 0, false
}

// HasLesson reports whether the lesson is recorded in the entry.
func HasLesson(entry *models.CourseProgress, lessonID string) bool {
	for _, l := range entry.CompletedLessons {
		if l.LessonID == lessonID {
			return true
		}
	}
	return false
}
