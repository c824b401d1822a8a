package service

import (
	"context"
	"errors"
	"testing"

	"progress-service/internal/models"
)

func choiceQuestion(id, correctChoice string) models.Question {
	return models.Question{
		ID:   id,
		Type: models.QuestionSingleChoice,
		Choices: []models.Choice{
			{ID: correctChoice, Correct: true},
			{ID: "wrong", Correct: false},
		},
	}
}

func TestCompleteLessonIsIdempotent(t *testing.T) {
	env := newTestEnv()
	courseID := env.store.addCourse(&models.Course{
		NavigationMode: models.NavigationFree,
		Syllabus:       []models.SyllabusEntry{{LessonID: "l1"}},
	})

	for i := 0; i < 2; i++ {
		if err := env.completion.CompleteLesson(context.Background(), "user-1", courseID, "l1"); err != nil {
			t.Fatalf("CompleteLesson attempt %d failed: %v", i+1, err)
		}
	}

	entry := env.store.learners["user-1"].CoursesProgress[0]
	if len(entry.CompletedLessons) != 1 {
		t.Errorf("completedLessons grew on repeat: %v", entry.CompletedLessons)
	}
	if got := env.eventTypes(); len(got) != 1 || got[0] != models.EventTypeLessonCompleted {
		t.Errorf("expected one lesson event, got %v", got)
	}
}

func TestCompleteLessonLinearGating(t *testing.T) {
	env := newTestEnv()
	courseID := env.store.addCourse(&models.Course{
		NavigationMode: models.NavigationLinear,
		Syllabus: []models.SyllabusEntry{
			{LessonID: "l1"},
			{LessonID: "l2"},
		},
	})
	ctx := context.Background()

	err := env.completion.CompleteLesson(ctx, "user-1", courseID, "l2")
	if !errors.Is(err, models.ErrConflict) {
		t.Fatalf("l2 before l1 should conflict, got %v", err)
	}
	if err := env.completion.CompleteLesson(ctx, "user-1", courseID, "l1"); err != nil {
		t.Fatalf("l1 failed: %v", err)
	}
	if err := env.completion.CompleteLesson(ctx, "user-1", courseID, "l2"); err != nil {
		t.Fatalf("l2 after l1 failed: %v", err)
	}
}

func TestCompleteLessonLinearGatingCountsQuiz(t *testing.T) {
	env := newTestEnv()
	courseID := env.store.addCourse(&models.Course{
		NavigationMode: models.NavigationLinear,
		Syllabus: []models.SyllabusEntry{
			{LessonID: "l1"},
			{LessonID: "l2"},
		},
	})
	quizID := env.store.addQuiz(&models.Quiz{
		CourseID:     courseID,
		LessonID:     "l1",
		MinimumScore: 70,
		Questions:    []models.Question{choiceQuestion("q1", "a")},
	})
	ctx := context.Background()

	if err := env.completion.CompleteLesson(ctx, "user-1", courseID, "l1"); err != nil {
		t.Fatalf("l1 failed: %v", err)
	}
	// l1's quiz is not passed yet, so l1 is not fully complete.
	if err := env.completion.CompleteLesson(ctx, "user-1", courseID, "l2"); !errors.Is(err, models.ErrConflict) {
		t.Fatalf("l2 should be gated on l1's quiz, got %v", err)
	}

	if _, err := env.completion.SubmitQuiz(ctx, "user-1", courseID, quizID, map[string]string{"q1": "a"}); err != nil {
		t.Fatalf("SubmitQuiz failed: %v", err)
	}
	if err := env.completion.CompleteLesson(ctx, "user-1", courseID, "l2"); err != nil {
		t.Fatalf("l2 after quiz pass failed: %v", err)
	}
}

func TestCompleteLessonUnknownLesson(t *testing.T) {
	env := newTestEnv()
	courseID := env.store.addCourse(&models.Course{
		Syllabus: []models.SyllabusEntry{{LessonID: "l1"}},
	})

	err := env.completion.CompleteLesson(context.Background(), "user-1", courseID, "l9")
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("got %v, want not found", err)
	}
}

func TestSubmitQuizPassMarksLesson(t *testing.T) {
	env := newTestEnv()
	courseID := env.store.addCourse(&models.Course{
		Syllabus: []models.SyllabusEntry{
			{LessonID: "l1"},
			{LessonID: "l2"},
		},
	})
	quizID := env.store.addQuiz(&models.Quiz{
		CourseID:     courseID,
		LessonID:     "l1",
		MinimumScore: 70,
		Questions: []models.Question{
			choiceQuestion("q1", "a"),
			choiceQuestion("q2", "b"),
		},
	})

	sub, err := env.completion.SubmitQuiz(context.Background(), "user-1", courseID, quizID, map[string]string{
		"q1": "a",
		"q2": "b",
	})
	if err != nil {
		t.Fatalf("SubmitQuiz failed: %v", err)
	}
	if !sub.Passed || sub.Score != 100 {
		t.Errorf("got score %.1f passed=%v, want 100 passed", sub.Score, sub.Passed)
	}
	if sub.CourseCompleted {
		t.Error("course reported complete with l2 outstanding")
	}

	entry := env.store.learners["user-1"].CoursesProgress[0]
	if len(entry.CompletedQuizzes) != 1 || entry.CompletedQuizzes[0].Score != 100 {
		t.Errorf("quiz result not stored: %+v", entry.CompletedQuizzes)
	}
	if len(entry.CompletedLessons) != 1 || entry.CompletedLessons[0].LessonID != "l1" {
		t.Errorf("lesson not marked on pass: %+v", entry.CompletedLessons)
	}
}

func TestSubmitQuizFailIsAResultNotAnError(t *testing.T) {
	env := newTestEnv()
	courseID := env.store.addCourse(&models.Course{
		Syllabus: []models.SyllabusEntry{{LessonID: "l1"}},
	})
	quizID := env.store.addQuiz(&models.Quiz{
		CourseID:     courseID,
		LessonID:     "l1",
		MinimumScore: 70,
		Questions: []models.Question{
			choiceQuestion("q1", "a"),
			choiceQuestion("q2", "b"),
		},
	})

	sub, err := env.completion.SubmitQuiz(context.Background(), "user-1", courseID, quizID, map[string]string{
		"q1": "a",
		"q2": "wrong",
	})
	if err != nil {
		t.Fatalf("failing submission returned error: %v", err)
	}
	if sub.Passed || sub.Score != 50 {
		t.Errorf("got score %.1f passed=%v, want 50 failed", sub.Score, sub.Passed)
	}

	entry := env.store.learners["user-1"].CoursesProgress[0]
	if len(entry.CompletedQuizzes) != 1 {
		t.Error("failed attempt not recorded")
	}
	if len(entry.CompletedLessons) != 0 {
		t.Error("lesson marked complete on a failed quiz")
	}
}

func TestSubmitQuizLatestWins(t *testing.T) {
	env := newTestEnv()
	courseID := env.store.addCourse(&models.Course{
		Syllabus: []models.SyllabusEntry{{LessonID: "l1"}, {LessonID: "l2"}},
	})
	quizID := env.store.addQuiz(&models.Quiz{
		CourseID:     courseID,
		LessonID:     "l1",
		MinimumScore: 70,
		Questions: []models.Question{
			choiceQuestion("q1", "a"),
			choiceQuestion("q2", "b"),
		},
	})
	ctx := context.Background()

	if _, err := env.completion.SubmitQuiz(ctx, "user-1", courseID, quizID, map[string]string{"q1": "a"}); err != nil {
		t.Fatal(err)
	}
	sub, err := env.completion.SubmitQuiz(ctx, "user-1", courseID, quizID, map[string]string{"q1": "a", "q2": "b"})
	if err != nil {
		t.Fatal(err)
	}
	if !sub.Passed {
		t.Fatal("retake should pass")
	}

	entry := env.store.learners["user-1"].CoursesProgress[0]
	if len(entry.CompletedQuizzes) != 1 {
		t.Fatalf("retake appended instead of replacing: %+v", entry.CompletedQuizzes)
	}
	if entry.CompletedQuizzes[0].Score != 100 {
		t.Errorf("stored score %.1f, want the latest 100", entry.CompletedQuizzes[0].Score)
	}
}

func TestSubmitQuizCascadesIntoCourseCompletion(t *testing.T) {
	env := newTestEnv()
	courseID := env.store.addCourse(&models.Course{
		Syllabus:         []models.SyllabusEntry{{LessonID: "l1"}},
		EnrolledStudents: []string{"user-1"},
		CertificateID:    "cert-go-basics",
	})
	quizID := env.store.addQuiz(&models.Quiz{
		CourseID:     courseID,
		LessonID:     "l1",
		MinimumScore: 70,
		Questions:    []models.Question{choiceQuestion("q1", "a")},
	})

	sub, err := env.completion.SubmitQuiz(context.Background(), "user-1", courseID, quizID, map[string]string{"q1": "a"})
	if err != nil {
		t.Fatalf("SubmitQuiz failed: %v", err)
	}
	if !sub.CourseCompleted {
		t.Fatal("passing the last gate did not complete the course")
	}

	course := env.store.courses[courseID]
	if course.IsEnrolled("user-1") || !course.HasCompleted("user-1") {
		t.Errorf("membership not migrated: enrolled=%v completed=%v", course.EnrolledStudents, course.CompletedStudents)
	}
	entry := env.store.learners["user-1"].CoursesProgress[0]
	if !entry.Completed || entry.CompletedAt == nil {
		t.Errorf("ledger completion not persisted: %+v", entry)
	}
	key := models.IssuanceKey("user-1", courseID, "cert-go-basics")
	if env.store.issuances[key] == nil {
		t.Error("certificate issuance not recorded")
	}

	want := []models.EventType{
		models.EventTypeQuizSubmitted,
		models.EventTypeCertificateIssue,
		models.EventTypeCourseCompleted,
	}
	got := env.eventTypes()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestSubmitQuizValidation(t *testing.T) {
	env := newTestEnv()
	courseID := env.store.addCourse(&models.Course{
		Syllabus: []models.SyllabusEntry{{LessonID: "l1"}},
	})
	otherCourse := env.store.addCourse(&models.Course{Title: "Other"})
	quizID := env.store.addQuiz(&models.Quiz{
		CourseID:     courseID,
		LessonID:     "l1",
		MinimumScore: 70,
		Questions:    []models.Question{choiceQuestion("q1", "a")},
	})
	ctx := context.Background()

	if _, err := env.completion.SubmitQuiz(ctx, "user-1", courseID, quizID, nil); !errors.Is(err, models.ErrInvalidArgument) {
		t.Errorf("nil answers: got %v, want invalid argument", err)
	}
	if _, err := env.completion.SubmitQuiz(ctx, "user-1", otherCourse, quizID, map[string]string{}); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("quiz from another course: got %v, want not found", err)
	}
	if _, err := env.completion.SubmitQuiz(ctx, "", courseID, quizID, map[string]string{}); !errors.Is(err, models.ErrUnauthenticated) {
		t.Errorf("no caller: got %v, want unauthenticated", err)
	}
}

func TestCompleteCourseExplicit(t *testing.T) {
	env := newTestEnv()
	courseID := env.store.addCourse(&models.Course{
		Syllabus:         []models.SyllabusEntry{{LessonID: "l1"}},
		EnrolledStudents: []string{"user-1"},
	})
	ctx := context.Background()

	if err := env.completion.CompleteCourse(ctx, "user-1", courseID, ""); err != nil {
		t.Fatalf("CompleteCourse failed: %v", err)
	}

	course := env.store.courses[courseID]
	if !course.HasCompleted("user-1") || course.IsEnrolled("user-1") {
		t.Errorf("membership not migrated: %+v", course)
	}
	entry := env.store.learners["user-1"].CoursesProgress[0]
	if !entry.Completed {
		t.Error("ledger not flipped")
	}

	// Re-completing and completing while not enrolled are conflicts.
	if err := env.completion.CompleteCourse(ctx, "user-1", courseID, ""); !errors.Is(err, models.ErrConflict) {
		t.Errorf("re-complete: got %v, want conflict", err)
	}
	if err := env.completion.CompleteCourse(ctx, "user-2", courseID, ""); !errors.Is(err, models.ErrConflict) {
		t.Errorf("not enrolled: got %v, want conflict", err)
	}
}

func TestCompleteCourseSkipsCertificateWithoutTemplate(t *testing.T) {
	env := newTestEnv()
	courseID := env.store.addCourse(&models.Course{
		EnrolledStudents: []string{"user-1"},
	})

	if err := env.completion.CompleteCourse(context.Background(), "user-1", courseID, ""); err != nil {
		t.Fatalf("CompleteCourse failed: %v", err)
	}
	if len(env.store.issuances) != 0 {
		t.Errorf("issuance recorded for a course without a certificate: %v", env.store.issuances)
	}
	for _, ev := range env.pub.Events {
		if ev.EventType == models.EventTypeCertificateIssue {
			t.Error("certificate event published for a course without a certificate")
		}
	}
}
