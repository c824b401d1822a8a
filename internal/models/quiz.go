package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Question types. Only the choice types and trueFalse carry a grading rule;
// the rest are structurally supported and graded as zero.
const (
	QuestionMultipleChoice = "multipleChoice"
	QuestionSingleChoice   = "singleChoice"
	QuestionTrueFalse      = "trueFalse"
	QuestionSorting        = "sorting"
	QuestionFillInBlank    = "fillInBlank"
	QuestionAssessment     = "assessment"
	QuestionEssay          = "essay"
	QuestionFreeChoice     = "freeChoice"
)

// TrueFalseBoth marks a trueFalse question where either answer is accepted.
const TrueFalseBoth = "both"

// Choice is one selectable answer of a choice question.
type Choice struct {
	ID      string `bson:"id" json:"id"`
	Label   string `bson:"label" json:"label"`
	Correct bool   `bson:"isCorrect" json:"isCorrect"`
}

// Question is a single quiz question. CorrectAnswer is only meaningful for
// trueFalse questions ("true", "false" or "both").
type Question struct {
	ID            string   `bson:"id" json:"id"`
	Type          string   `bson:"questionType" json:"questionType"`
	Prompt        string   `bson:"prompt" json:"prompt"`
	Choices       []Choice `bson:"choices,omitempty" json:"choices,omitempty"`
	CorrectAnswer string   `bson:"correctAnswer,omitempty" json:"correctAnswer,omitempty"`
}

// Quiz is an ordered list of questions with a pass threshold (0-100).
// LessonID links the quiz to the lesson it gates, if any.
type Quiz struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	CourseID     string             `bson:"courseId" json:"courseId"`
	LessonID     string             `bson:"lessonId,omitempty" json:"lessonId,omitempty"`
	Title        string             `bson:"title" json:"title"`
	MinimumScore float64            `bson:"minimumScore" json:"minimumScore"`
	Questions    []Question         `bson:"questions" json:"questions"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}
