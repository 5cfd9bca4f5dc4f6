package controllers

import (
	"errors"
	"sort"

	courseModels "edumart/models/course"
)

// ErrEmptyQuiz is returned when a quiz has no questions. Grading fails fast
// instead of inventing a score.
var ErrEmptyQuiz = errors.New("quiz has no questions")

// SubmittedAnswer is one answer in a quiz submission, matched to its question
// by question ID.
type SubmittedAnswer struct {
	QuestionID     uint `json:"questionId"`
	SelectedOption int  `json:"selectedOption"` // zero-based index
}

// QuestionOutcome is the per-question breakdown of a graded attempt
type QuestionOutcome struct {
	QuestionID uint `json:"questionId"`
	Points     int  `json:"points"`
	Answered   bool `json:"answered"`
	Correct    bool `json:"correct"`
}

// QuizAttemptResult is the outcome of grading one submission. It is transient;
// the progress state machine folds it into the enrollment's score history.
type QuizAttemptResult struct {
	QuizID       uint              `json:"quizId"`
	EarnedPoints int               `json:"earnedPoints"`
	TotalPoints  int               `json:"totalPoints"`
	Percentage   float64           `json:"percentage"`
	Passed       bool              `json:"passed"`
	Breakdown    []QuestionOutcome `json:"breakdown"`
}

// GradeQuiz scores a submission against a quiz definition. Questions are
// walked in their fixed order; a question with no matching answer counts as
// incorrect. Correctness is an exact single-choice match. The function is
// deterministic and never mutates the quiz.
func GradeQuiz(quiz *courseModels.Quiz, answers []SubmittedAnswer) (*QuizAttemptResult, error) {
	questions := make([]courseModels.QuizQuestion, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		if !q.IsDeleted {
			questions = append(questions, q)
		}
	}
	if len(questions) == 0 {
		return nil, ErrEmptyQuiz
	}
	sort.SliceStable(questions, func(i, j int) bool {
		return questions[i].OrderIndex < questions[j].OrderIndex
	})

	// Last answer wins if a question ID is submitted twice
	byQuestion := make(map[uint]int, len(answers))
	for _, a := range answers {
		byQuestion[a.QuestionID] = a.SelectedOption
	}

	result := &QuizAttemptResult{
		QuizID:    quiz.ID,
		Breakdown: make([]QuestionOutcome, 0, len(questions)),
	}

	for _, q := range questions {
		points := q.Points
		if points <= 0 {
			points = 1
		}
		result.TotalPoints += points

		outcome := QuestionOutcome{QuestionID: q.ID, Points: points}
		if selected, ok := byQuestion[q.ID]; ok {
			outcome.Answered = true
			if selected == q.CorrectOption {
				outcome.Correct = true
				result.EarnedPoints += points
			}
		}
		result.Breakdown = append(result.Breakdown, outcome)
	}

	result.Percentage = 100 * float64(result.EarnedPoints) / float64(result.TotalPoints)
	result.Passed = result.Percentage >= quiz.PassingScore

	return result, nil
}
