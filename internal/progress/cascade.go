package progress

import (
	"math"

	"progress-service/internal/models"
)

// The cascade engine decides how child completion (lessons, quizzes) rolls
// up into course completion. All functions are pure; orchestrators load the
// aggregates and persist the outcome.

// QuizzesByLesson groups a course's quizzes by the lesson they gate.
// Quizzes without a lesson link are left out: they gate nothing.
func QuizzesByLesson(quizzes []models.Quiz) map[string][]models.Quiz {
	byLesson := make(map[string][]models.Quiz)
	for _, q := range quizzes {
		if q.LessonID == "" {
			continue
		}
		byLesson[q.LessonID] = append(byLesson[q.LessonID], q)
	}
	return byLesson
}

// IsLessonComplete reports whether the lesson is recorded in the entry and
// every quiz gating it meets its pass threshold. A lesson with no quizzes
// is quiz-complete vacuously.
func IsLessonComplete(entry *models.CourseProgress, lessonID string, lessonQuizzes []models.Quiz) bool {
	if !HasLesson(entry, lessonID) {
		return false
	}
	for _, quiz := range lessonQuizzes {
		score, ok := QuizScore(entry, quiz.ID.Hex())
		if !ok || score < quiz.MinimumScore {
			return false
		}
	}
	return true
}

// IsPreviousLessonComplete enforces linear navigation: the lesson directly
// preceding lessonID in the syllabus must be complete. The first lesson
// (or a lesson not present in the syllabus) has no predecessor and passes.
// Callers skip this check entirely for free-navigation courses.
func IsPreviousLessonComplete(entry *models.CourseProgress, course *models.Course, lessonID string, byLesson map[string][]models.Quiz) bool {
	prev := ""
	found := false
	for _, se := range course.Syllabus {
		if se.LessonID == lessonID {
			found = true
			break
		}
		prev = se.LessonID
	}
	if !found || prev == "" {
		return true
	}
	return IsLessonComplete(entry, prev, byLesson[prev])
}

// IsCourseComplete reports whether every required (non-optional) lesson of
// the course is complete, quiz gates included.
func IsCourseComplete(entry *models.CourseProgress, course *models.Course, quizzes []models.Quiz) bool {
	byLesson := QuizzesByLesson(quizzes)
	for _, se := range course.Syllabus {
		if se.Optional {
			continue
		}
		if !IsLessonComplete(entry, se.LessonID, byLesson[se.LessonID]) {
			return false
		}
	}
	return true
}

// CompletionPercentage derives the rounded percentage of required lessons
// recorded in the entry. A course with no required lessons reads as 0, not
// 100: there is nothing to measure.
func CompletionPercentage(entry *models.CourseProgress, course *models.Course) int {
	required := course.RequiredLessons()
	if len(required) == 0 {
		return 0
	}
	done := 0
	for _, lessonID := range required {
		if HasLesson(entry, lessonID) {
			done++
		}
	}
	return int(math.Round(float64(done) / float64(len(required)) * 100))
}
