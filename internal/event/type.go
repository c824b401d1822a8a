package event

import (
	"time"

	"progress-service/internal/models"
)

func NewEnrolledEvent(userID, courseID string, viaGroup string) *models.ProgressEvent {
	e := &models.ProgressEvent{
		EventType: models.EventTypeEnrolled,
		UserID:    userID,
		CourseID:  courseID,
		Timestamp: time.Now().UTC(),
	}
	if viaGroup != "" {
		e.Payload = map[string]any{"groupId": viaGroup}
	}
	return e
}

func NewLessonCompletedEvent(userID, courseID, lessonID string) *models.ProgressEvent {
	return &models.ProgressEvent{
		EventType: models.EventTypeLessonCompleted,
		UserID:    userID,
		CourseID:  courseID,
		Timestamp: time.Now().UTC(),
		Payload:   map[string]any{"lessonId": lessonID},
	}
}

func NewQuizSubmittedEvent(userID, courseID, quizID string, score float64, passed bool) *models.ProgressEvent {
	return &models.ProgressEvent{
		EventType: models.EventTypeQuizSubmitted,
		UserID:    userID,
		CourseID:  courseID,
		Timestamp: time.Now().UTC(),
		Payload: map[string]any{
			"quizId": quizID,
			"score":  score,
			"passed": passed,
		},
	}
}

func NewCourseCompletedEvent(userID, courseID string) *models.ProgressEvent {
	return &models.ProgressEvent{
		EventType: models.EventTypeCourseCompleted,
		UserID:    userID,
		CourseID:  courseID,
		Timestamp: time.Now().UTC(),
	}
}

func NewCertificateIssueEvent(issuance *models.CertificateIssuance) *models.ProgressEvent {
	return &models.ProgressEvent{
		EventType: models.EventTypeCertificateIssue,
		UserID:    issuance.UserID,
		CourseID:  issuance.CourseID,
		Timestamp: time.Now().UTC(),
		Payload: map[string]any{
			"issuanceId":    issuance.ID,
			"certificateId": issuance.CertificateID,
		},
	}
}

func NewGroupMemberAddedEvent(userID, groupID, role string) *models.ProgressEvent {
	return &models.ProgressEvent{
		EventType: models.EventTypeGroupMemberAdded,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
		Payload: map[string]any{
			"groupId": groupID,
			"role":    role,
		},
	}
}
