package models

import "time"

type EventType string

const (
	EventTypeEnrolled           EventType = "progress.enrolled"
	EventTypeLessonCompleted    EventType = "progress.lesson.completed"
	EventTypeQuizSubmitted      EventType = "progress.quiz.submitted"
	EventTypeCourseCompleted    EventType = "progress.course.completed"
	EventTypeCertificateIssue   EventType = "certificate.issue.requested"
	EventTypeGroupMemberAdded   EventType = "progress.group.member.added"
)

// ProgressEvent is the envelope published to the platform topic exchange.
// The routing key is the event type.
type ProgressEvent struct {
	EventType EventType      `json:"eventType"`
	UserID    string         `json:"userId"`
	CourseID  string         `json:"courseId,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Payload   map[string]any `json:"payload,omitempty"`
}
