package service

import (
	"context"
	"testing"
	"time"

	"progress-service/internal/models"
)

func TestFetchProgressForUnknownUser(t *testing.T) {
	env := newTestEnv()

	summary, err := env.progress.FetchProgress(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("FetchProgress failed: %v", err)
	}
	if summary.UserID != "ghost" {
		t.Errorf("userId = %s", summary.UserID)
	}
	if len(summary.CoursesProgress) != 0 || len(summary.EnrolledCourses) != 0 || len(summary.CompletedCourses) != 0 {
		t.Errorf("expected empty summary, got %+v", summary)
	}
	if summary.CoursesProgress == nil || summary.EnrolledCourses == nil || summary.CompletedCourses == nil {
		t.Error("summary slices must be non-nil for JSON rendering")
	}
}

func TestFetchProgressSplitsMemberships(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	active := env.store.addCourse(&models.Course{
		Syllabus: []models.SyllabusEntry{
			{LessonID: "l1"},
			{LessonID: "l2"},
			{LessonID: "l3"},
			{LessonID: "bonus", Optional: true},
		},
		EnrolledStudents: []string{"user-1"},
	})
	done := env.store.addCourse(&models.Course{
		Syllabus:          []models.SyllabusEntry{{LessonID: "x1"}},
		CompletedStudents: []string{"user-1"},
	})

	now := time.Now().UTC()
	env.store.learners["user-1"] = &models.Learner{
		UserID: "user-1",
		CoursesProgress: []models.CourseProgress{
			{
				CourseID: active,
				CompletedLessons: []models.CompletedLesson{
					{LessonID: "l1", CompletedAt: now},
					{LessonID: "l2", CompletedAt: now},
				},
			},
			{
				CourseID:    done,
				Completed:   true,
				CompletedAt: &now,
				CompletedLessons: []models.CompletedLesson{
					{LessonID: "x1", CompletedAt: now},
				},
			},
		},
	}

	summary, err := env.progress.FetchProgress(ctx, "user-1")
	if err != nil {
		t.Fatalf("FetchProgress failed: %v", err)
	}
	if len(summary.EnrolledCourses) != 1 || summary.EnrolledCourses[0] != active {
		t.Errorf("enrolledCourses = %v", summary.EnrolledCourses)
	}
	if len(summary.CompletedCourses) != 1 || summary.CompletedCourses[0] != done {
		t.Errorf("completedCourses = %v", summary.CompletedCourses)
	}

	views := make(map[string]CourseProgressView)
	for _, v := range summary.CoursesProgress {
		views[v.CourseID] = v
	}
	// Optional lessons stay out of the denominator: 2 of 3 required.
	if got := views[active].CompletionPercentage; got != 67 {
		t.Errorf("active course percentage = %d, want 67", got)
	}
	if v := views[done]; !v.Completed || v.CompletionPercentage != 100 || v.CompletedAt == nil {
		t.Errorf("completed course view = %+v", v)
	}
}
