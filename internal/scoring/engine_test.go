package scoring

import (
	"encoding/json"
	"testing"

	"sprint-quiz-service/internal/domain"
)

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{
			ID:          "q-mcq",
			Type:        domain.QuestionMCQ,
			Points:      2,
			AnswerKey:   json.RawMessage(`{"correct":0}`),
			Explanation: json.RawMessage(`{"kind":"decisionRule","ruleText":"Triangle -> A"}`),
		},
		{
			ID:        "q-tf",
			Type:      domain.QuestionTrueFalse,
			Points:    2,
			AnswerKey: json.RawMessage(`{"correct":false}`),
		},
		{
			ID:        "q-grid",
			Type:      domain.QuestionGridPath,
			Points:    10,
			Prompt:    json.RawMessage(`{"gridSize":[5,5],"start":[5,1],"goal":[1,5],"water":[[2,3],[3,2],[4,4]],"stepCost":-1,"goalReward":10,"waterPenalty":-3}`),
			AnswerKey: json.RawMessage(`{"optimalPath":"U,U,U,U,R,R,R,R","optimalSteps":8,"optimalReward":2}`),
		},
		{
			ID:        "q-box",
			Type:      domain.QuestionCheckbox,
			Points:    5,
			AnswerKey: json.RawMessage(`{"correctSet":[0,1,3,4],"grading":"partial"}`),
		},
	}
}

func sampleAnswers() map[string]json.RawMessage {
	return map[string]json.RawMessage{
		"q-mcq":  json.RawMessage(`{"selected":0}`),
		"q-tf":   json.RawMessage(`{"selected":true}`),
		"q-grid": json.RawMessage(`{"moves":["U","U","U","U","R","R","R","R"]}`),
		"q-box":  json.RawMessage(`{"selected":[0,1]}`),
	}
}

func TestScoreSubmissionAggregates(t *testing.T) {
	res := ScoreSubmission(sampleQuestions(), sampleAnswers())

	if res.Total != 2+0+10+2 {
		t.Fatalf("expected total 14, got %d", res.Total)
	}
	want := []QuestionOutcome{
		{QuestionID: "q-mcq", Points: 2, Correct: true},
		{QuestionID: "q-tf", Points: 0, Correct: false},
		{QuestionID: "q-grid", Points: 10, Correct: true},
		{QuestionID: "q-box", Points: 2, Correct: false},
	}
	if len(res.PerQuestion) != len(want) {
		t.Fatalf("expected %d outcomes, got %d", len(want), len(res.PerQuestion))
	}
	for i := range want {
		if res.PerQuestion[i] != want[i] {
			t.Fatalf("outcome %d: expected %+v, got %+v", i, want[i], res.PerQuestion[i])
		}
		if res.Explanations[i].QuestionID != want[i].QuestionID {
			t.Fatalf("explanation %d out of order: %s", i, res.Explanations[i].QuestionID)
		}
	}
	if string(res.Explanations[0].AI) != `{"kind":"decisionRule","ruleText":"Triangle -> A"}` {
		t.Fatalf("explanation payload not forwarded verbatim: %s", res.Explanations[0].AI)
	}
}

func TestScoreSubmissionTotalMatchesScorers(t *testing.T) {
	questions := sampleQuestions()
	answers := sampleAnswers()

	reversed := make(map[string]json.RawMessage, len(answers))
	for i := len(questions) - 1; i >= 0; i-- {
		id := questions[i].ID
		reversed[id] = answers[id]
	}

	sum := 0
	for _, q := range questions {
		sum += ScoreQuestion(q, answers[q.ID]).Points
	}

	a := ScoreSubmission(questions, answers)
	b := ScoreSubmission(questions, reversed)
	if a.Total != sum || b.Total != sum {
		t.Fatalf("expected total %d for both orders, got %d and %d", sum, a.Total, b.Total)
	}
}

func TestScoreSubmissionDataGaps(t *testing.T) {
	questions := []domain.Question{
		{ID: "no-key", Type: domain.QuestionMCQ, Points: 3},
		{ID: "null-key", Type: domain.QuestionMCQ, Points: 3, AnswerKey: json.RawMessage(`null`)},
		{ID: "essay", Type: "ESSAY", Points: 3, AnswerKey: json.RawMessage(`{"correct":"x"}`)},
		{ID: "bad-key", Type: domain.QuestionCheckbox, Points: 3, AnswerKey: json.RawMessage(`{"correctSet":"all"}`)},
		{ID: "no-grid", Type: domain.QuestionGridPath, Points: 3, AnswerKey: json.RawMessage(`{"optimalReward":2}`)},
		{ID: "ok", Type: domain.QuestionMCQ, Points: 3, AnswerKey: json.RawMessage(`{"correct":1}`)},
	}
	answers := map[string]json.RawMessage{
		"no-key":   json.RawMessage(`{"selected":0}`),
		"null-key": json.RawMessage(`{"selected":0}`),
		"essay":    json.RawMessage(`{"selected":"x"}`),
		"bad-key":  json.RawMessage(`{"selected":[0]}`),
		"no-grid":  json.RawMessage(`{"moves":["U"]}`),
		"ok":       json.RawMessage(`{"selected":1}`),
	}

	res := ScoreSubmission(questions, answers)
	if res.Total != 3 {
		t.Fatalf("expected only the last question to score, got %d", res.Total)
	}

	wantErr := map[string]string{
		"no-key":   errNoAnswerKey,
		"null-key": errNoAnswerKey,
		"essay":    errUnknownType,
		"bad-key":  errMalformedAnswerKey,
	}
	for i, out := range res.PerQuestion[:5] {
		if out.Correct || out.Points != 0 {
			t.Fatalf("%s: expected incorrect zero award, got %+v", out.QuestionID, out)
		}
		exp := res.Explanations[i]
		if msg, ok := wantErr[out.QuestionID]; ok {
			meta, isErr := exp.Meta.(ErrorMeta)
			if !isErr || meta.Error != msg {
				t.Fatalf("%s: expected error %q, got %+v", out.QuestionID, msg, exp.Meta)
			}
		}
	}
	if meta := res.Explanations[4].Meta.(GridPathMeta); meta.Error != errInvalidGrid {
		t.Fatalf("expected invalid grid error, got %+v", meta)
	}
	if !res.PerQuestion[5].Correct {
		t.Fatalf("expected last question correct")
	}
}

func TestScoreSubmissionEmptyAnswers(t *testing.T) {
	res := ScoreSubmission(sampleQuestions(), nil)
	if res.Total != 0 {
		t.Fatalf("expected zero total, got %d", res.Total)
	}
	for _, out := range res.PerQuestion {
		if out.Correct {
			t.Fatalf("%s: unanswered question marked correct", out.QuestionID)
		}
	}
}

func TestScoreQuestionStaysInRange(t *testing.T) {
	answers := []string{
		"", "null", `{}`, `{"selected":0}`, `{"selected":[0,1,2,3,4,5]}`, `{"selected":true}`,
		`{"moves":["U","U","U","U","R","R","R","R"]}`, `{"moves":["D","D"]}`, `[1,2]`, `"U"`, `{"selected":{"$gt":0}}`,
	}
	for _, q := range sampleQuestions() {
		for _, maxPoints := range []int{0, 1, 3, 10} {
			q.Points = maxPoints
			for _, a := range answers {
				got := ScoreQuestion(q, json.RawMessage(a))
				if got.Points < 0 || got.Points > maxPoints {
					t.Fatalf("%s maxPoints=%d answer %q: points %d out of range", q.ID, maxPoints, a, got.Points)
				}
				if got.Meta == nil {
					t.Fatalf("%s: missing meta", q.ID)
				}
			}
		}
	}
}

func TestErrorMetaJSON(t *testing.T) {
	res := ScoreSubmission([]domain.Question{{ID: "q1", Type: domain.QuestionMCQ, Points: 1}}, nil)
	data, err := json.Marshal(res.Explanations[0])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"questionId":"q1","ai":null,"meta":{"error":"No answer key available"}}` {
		t.Fatalf("unexpected explanation json %s", data)
	}
}
