package scoring

import "encoding/json"

// ScoreCheckbox grades multi-select answers in exact or partial mode.
//
// Partial credit is |I|/|C| - 0.5*|W|/|C| of maxPoints, floored and never
// negative, where I are the correct picks, W the wrong picks and C the
// correct set. Wrong picks are weighed against the correct set rather than
// the offered options.
func ScoreCheckbox(answer json.RawMessage, key CheckboxKey, maxPoints int) Result {
	raw, ok := field(answer, "selected")
	if !ok {
		return Result{Meta: CheckboxMeta{Correct: false, UserAnswer: []int{}}}
	}
	selected, ok := decodeIndices(raw)
	if !ok {
		return Result{Meta: CheckboxMeta{Correct: false, UserAnswer: []int{}}}
	}

	userSet := toSet(selected)
	correctSet := toSet(key.CorrectSet)

	var intersection, wrong, missed int
	for v := range userSet {
		if _, ok := correctSet[v]; ok {
			intersection++
		} else {
			wrong++
		}
	}
	for v := range correctSet {
		if _, ok := userSet[v]; !ok {
			missed++
		}
	}

	if key.Grading == GradingExact {
		exact := len(userSet) == len(correctSet) && wrong == 0
		points := 0
		if exact {
			points = maxPoints
		}
		return Result{
			Points: points,
			Meta: CheckboxMeta{
				Correct:       exact,
				Grading:       GradingExact,
				UserAnswer:    selected,
				CorrectAnswer: key.CorrectSet,
				Matches:       intPtr(intersection),
			},
		}
	}

	points := 0
	switch {
	case wrong == 0 && missed == 0:
		points = maxPoints
	case intersection > 0:
		points = partialCredit(maxPoints, intersection, wrong, len(correctSet))
	}

	return Result{
		Points: points,
		Meta: CheckboxMeta{
			Correct:           points == maxPoints,
			Grading:           GradingPartial,
			UserAnswer:        selected,
			CorrectAnswer:     key.CorrectSet,
			CorrectSelections: intPtr(intersection),
			WrongSelections:   intPtr(wrong),
			MissedSelections:  intPtr(missed),
		},
	}
}

// partialCredit computes floor(max*(hit/size - 0.5*wrong/size)) in integer
// arithmetic.
func partialCredit(maxPoints, hit, wrong, size int) int {
	if size == 0 || maxPoints <= 0 {
		return 0
	}
	num := maxPoints * (2*hit - wrong)
	if num <= 0 {
		return 0
	}
	return num / (2 * size)
}

func toSet(values []int) map[int]struct{} {
	set := make(map[int]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
