package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Navigation modes. Linear courses gate each lesson on its predecessor;
// free courses do not.
const (
	NavigationLinear = "linear"
	NavigationFree   = "free"
)

// SyllabusEntry is one ordered lesson reference in a course. Optional
// lessons never block course completion.
type SyllabusEntry struct {
	LessonID string `bson:"lessonId" json:"lessonId"`
	Optional bool   `bson:"optional" json:"optional"`
}

// Course holds the syllabus plus the membership sets this service maintains.
// A user id is in at most one of EnrolledStudents / CompletedStudents, and
// only ever moves enrolled -> completed.
type Course struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Title             string             `bson:"title" json:"title"`
	NavigationMode    string             `bson:"navigationMode" json:"navigationMode"`
	Syllabus          []SyllabusEntry    `bson:"syllabus" json:"syllabus"`
	EnrolledStudents  []string           `bson:"enrolledStudents" json:"enrolledStudents"`
	CompletedStudents []string           `bson:"courseCompletedStudents" json:"courseCompletedStudents"`
	EnrolledGroups    []string           `bson:"enrolledGroups" json:"enrolledGroups"`
	CertificateID     string             `bson:"certificateId,omitempty" json:"certificateId,omitempty"`
	Version           int64              `bson:"version" json:"-"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// RequiredLessons returns the non-optional lesson ids in syllabus order.
func (c *Course) RequiredLessons() []string {
	var ids []string
	for _, entry := range c.Syllabus {
		if !entry.Optional {
			ids = append(ids, entry.LessonID)
		}
	}
	return ids
}

// HasLesson reports whether the syllabus references the lesson.
func (c *Course) HasLesson(lessonID string) bool {
	for _, entry := range c.Syllabus {
		if entry.LessonID == lessonID {
			return true
		}
	}
	return false
}

// IsEnrolled reports whether the user id is in the enrolled set.
func (c *Course) IsEnrolled(userID string) bool {
	for _, id := range c.EnrolledStudents {
		if id == userID {
			return true
		}
	}
	return false
}

// HasCompleted reports whether the user id is in the completed set.
func (c *Course) HasCompleted(userID string) bool {
	for _, id := range c.CompletedStudents {
		if id == userID {
			return true
		}
	}
	return false
}
