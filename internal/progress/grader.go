package progress

import (
	"progress-service/internal/models"
)

// GradeResult is the outcome of grading one submission.
type GradeResult struct {
	Score   float64 `json:"score"`
	Correct int     `json:"correctCount"`
	Total   int     `json:"total"`
}

// Passed reports whether the score meets the quiz pass threshold. A score
// exactly at the threshold passes.
func (g GradeResult) Passed(minimumScore float64) bool {
	return g.Score >= minimumScore
}

// Grade scores a submission against the quiz definition. Answers are keyed
// by question id; the submitted value is the chosen option id for choice
// questions or "true"/"false" for trueFalse questions.
//
// Question types without a grading rule (sorting, fillInBlank, assessment,
// essay, freeChoice) contribute zero to the numerator but still count in
// the denominator, so an all-essay quiz grades to zero rather than passing
// vacuously. No partial credit.
func Grade(quiz *models.Quiz, answers map[string]string) GradeResult {
	total := len(quiz.Questions)
	if total == 0 {
		return GradeResult{Score: 0, Correct: 0, Total: 0}
	}

	correct := 0
	for _, question := range quiz.Questions {
		submitted, ok := answers[question.ID]
		if !ok {
			continue
		}
		if isCorrectAnswer(&question, submitted) {
			correct++
		}
	}

	return GradeResult{
		Score:   float64(correct) / float64(total) * 100,
		Correct: correct,
		Total:   total,
	}
}

func isCorrectAnswer(question *models.Question, submitted string) bool {
	switch question.Type {
	case models.QuestionTrueFalse:
		// "both" accepts either answer.
		if question.CorrectAnswer == models.TrueFalseBoth {
			return submitted == "true" || submitted == "false"
		}
		return submitted == question.CorrectAnswer
	case models.QuestionMultipleChoice, models.QuestionSingleChoice:
		for _, choice := range question.Choices {
			if choice.Correct {
				return submitted == choice.ID
			}
		}
		return false
	default:
		return false
	}
}
