package scoring

import "encoding/json"

// ScoreChoice grades MCQ and TRUE_FALSE answers: all or nothing on strict
// equality with the key. Unanswered or malformed input earns zero.
func ScoreChoice(answer json.RawMessage, key ChoiceKey, maxPoints int) Result {
	raw, ok := field(answer, "selected")
	if !ok {
		return Result{Meta: ChoiceMeta{Correct: false, UserAnswer: nil}}
	}

	var selected any
	if err := json.Unmarshal(raw, &selected); err != nil {
		return Result{Meta: ChoiceMeta{Correct: false, UserAnswer: nil}}
	}

	correct := scalarEqual(selected, key.Correct)
	points := 0
	if correct {
		points = maxPoints
	}
	return Result{
		Points: points,
		Meta: ChoiceMeta{
			Correct:       correct,
			UserAnswer:    selected,
			CorrectAnswer: key.Correct,
		},
	}
}
