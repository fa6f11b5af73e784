// Package scoring grades submitted answers against question answer keys.
//
// Every function in this package is pure. A bad key or answer yields a zero
// award with an explanatory Meta instead of an error, and submissions may be
// scored concurrently.
package scoring

import (
	"encoding/json"

	"sprint-quiz-service/internal/domain"
)

// questionScorer decodes the type-specific key of q and grades answer.
type questionScorer func(q domain.Question, answer json.RawMessage) Result

var scorers = map[domain.QuestionType]questionScorer{
	domain.QuestionMCQ:       scoreChoiceQuestion,
	domain.QuestionTrueFalse: scoreChoiceQuestion,
	domain.QuestionCheckbox:  scoreCheckboxQuestion,
	domain.QuestionGridPath:  scoreGridPathQuestion,
}

// ScoreSubmission grades every question in order against answers, keyed by
// question id. Questions without a key or of an unknown type earn zero and
// scoring continues with the rest.
func ScoreSubmission(questions []domain.Question, answers map[string]json.RawMessage) SubmissionResult {
	res := SubmissionResult{
		PerQuestion:  make([]QuestionOutcome, 0, len(questions)),
		Explanations: make([]Explanation, 0, len(questions)),
	}

	for _, q := range questions {
		r := ScoreQuestion(q, answers[q.ID])

		res.Total += r.Points
		res.PerQuestion = append(res.PerQuestion, QuestionOutcome{
			QuestionID: q.ID,
			Points:     r.Points,
			Correct:    r.Meta.IsCorrect(),
		})
		res.Explanations = append(res.Explanations, Explanation{
			QuestionID: q.ID,
			AI:         q.Explanation,
			Meta:       r.Meta,
		})
	}
	return res
}

// ScoreQuestion grades a single answer. The award is always within
// [0, q.Points].
func ScoreQuestion(q domain.Question, answer json.RawMessage) Result {
	if isAbsent(q.AnswerKey) {
		return Result{Meta: ErrorMeta{Error: errNoAnswerKey}}
	}
	score, ok := scorers[q.Type]
	if !ok {
		return Result{Meta: ErrorMeta{Error: errUnknownType}}
	}
	r := score(q, answer)
	r.Points = clampPoints(r.Points, q.Points)
	return r
}

func scoreChoiceQuestion(q domain.Question, answer json.RawMessage) Result {
	var key ChoiceKey
	if err := json.Unmarshal(q.AnswerKey, &key); err != nil {
		return Result{Meta: ErrorMeta{Error: errMalformedAnswerKey}}
	}
	return ScoreChoice(answer, key, q.Points)
}

func scoreCheckboxQuestion(q domain.Question, answer json.RawMessage) Result {
	var key CheckboxKey
	if err := json.Unmarshal(q.AnswerKey, &key); err != nil {
		return Result{Meta: ErrorMeta{Error: errMalformedAnswerKey}}
	}
	return ScoreCheckbox(answer, key, q.Points)
}

func scoreGridPathQuestion(q domain.Question, answer json.RawMessage) Result {
	var key GridPathKey
	if err := json.Unmarshal(q.AnswerKey, &key); err != nil {
		return Result{Meta: ErrorMeta{Error: errMalformedAnswerKey}}
	}
	var cfg GridConfig
	if isAbsent(q.Prompt) || json.Unmarshal(q.Prompt, &cfg) != nil {
		return Result{Meta: GridPathMeta{
			Valid:       false,
			Error:       errInvalidGrid,
			UserPath:    []Cell{},
			OptimalPath: key.OptimalPath,
		}}
	}
	return ScoreGridPath(answer, key, q.Points, cfg)
}

func clampPoints(points, maxPoints int) int {
	if points < 0 || maxPoints <= 0 {
		return 0
	}
	if points > maxPoints {
		return maxPoints
	}
	return points
}
