package scoring

import "encoding/json"

// Meta is the explanation record a scorer attaches to its award. Every
// implementation states its correctness explicitly.
type Meta interface {
	IsCorrect() bool
}

// Result is the award for one question.
type Result struct {
	Points int
	Meta   Meta
}

// QuestionOutcome is the per-question summary of a scored submission.
type QuestionOutcome struct {
	QuestionID string `json:"questionId"`
	Points     int    `json:"points"`
	Correct    bool   `json:"correct"`
}

// Explanation pairs the authored explanation payload with the scorer's meta.
type Explanation struct {
	QuestionID string          `json:"questionId"`
	AI         json.RawMessage `json:"ai"`
	Meta       Meta            `json:"meta"`
}

// SubmissionResult is the aggregate of one scoring run. PerQuestion and
// Explanations follow the order of the input questions.
type SubmissionResult struct {
	Total        int               `json:"total"`
	PerQuestion  []QuestionOutcome `json:"perQuestion"`
	Explanations []Explanation     `json:"explanations"`
}

// ChoiceKey is the answer key of MCQ and TRUE_FALSE questions.
type ChoiceKey struct {
	Correct any `json:"correct"`
}

// GradingMode selects how checkbox answers earn points.
type GradingMode string

const (
	GradingExact   GradingMode = "exact"
	GradingPartial GradingMode = "partial"
)

// CheckboxKey is the answer key of CHECKBOX questions. Any grading other
// than exact is graded as partial.
type CheckboxKey struct {
	CorrectSet []int       `json:"correctSet"`
	Grading    GradingMode `json:"grading"`
}

// GridPathKey benchmarks a grid path answer. It is never compared for
// equality, only used to band the achieved reward.
type GridPathKey struct {
	OptimalPath   string  `json:"optimalPath"`
	OptimalSteps  int     `json:"optimalSteps"`
	OptimalReward float64 `json:"optimalReward"`
}

// Cell is a 1-indexed (row, col) grid coordinate.
type Cell [2]int

func (c Cell) Row() int { return c[0] }
func (c Cell) Col() int { return c[1] }

// GridConfig is the prompt payload of GRID_PATH questions.
type GridConfig struct {
	GridSize     Cell    `json:"gridSize"`
	Start        Cell    `json:"start"`
	Goal         Cell    `json:"goal"`
	Water        []Cell  `json:"water,omitempty"`
	StepCost     float64 `json:"stepCost"`
	GoalReward   float64 `json:"goalReward"`
	WaterPenalty float64 `json:"waterPenalty"`
}

func (g GridConfig) inBounds(c Cell) bool {
	return c.Row() >= 1 && c.Row() <= g.GridSize.Row() &&
		c.Col() >= 1 && c.Col() <= g.GridSize.Col()
}

func (g GridConfig) isWater(c Cell) bool {
	for _, w := range g.Water {
		if w == c {
			return true
		}
	}
	return false
}

// ChoiceMeta explains an MCQ or TRUE_FALSE award.
type ChoiceMeta struct {
	Correct       bool `json:"correct"`
	UserAnswer    any  `json:"userAnswer"`
	CorrectAnswer any  `json:"correctAnswer,omitempty"`
}

func (m ChoiceMeta) IsCorrect() bool { return m.Correct }

// CheckboxMeta explains a CHECKBOX award. Exact grading fills Matches;
// partial grading fills the selection counters.
type CheckboxMeta struct {
	Correct           bool        `json:"correct"`
	Grading           GradingMode `json:"grading,omitempty"`
	UserAnswer        []int       `json:"userAnswer"`
	CorrectAnswer     []int       `json:"correctAnswer,omitempty"`
	Matches           *int        `json:"matches,omitempty"`
	CorrectSelections *int        `json:"correctSelections,omitempty"`
	WrongSelections   *int        `json:"wrongSelections,omitempty"`
	MissedSelections  *int        `json:"missedSelections,omitempty"`
}

func (m CheckboxMeta) IsCorrect() bool { return m.Correct }

// GridPathMeta explains a GRID_PATH award.
type GridPathMeta struct {
	Correct       bool     `json:"correct"`
	Valid         bool     `json:"valid"`
	GoalReached   bool     `json:"goalReached"`
	Steps         int      `json:"steps"`
	WaterHits     int      `json:"waterHits"`
	Reward        float64  `json:"reward"`
	UserPath      []Cell   `json:"userPath"`
	OptimalPath   string   `json:"optimalPath,omitempty"`
	OptimalSteps  *int     `json:"optimalSteps,omitempty"`
	OptimalReward *float64 `json:"optimalReward,omitempty"`
	Efficiency    *int     `json:"efficiency,omitempty"`
	Error         string   `json:"error,omitempty"`
}

func (m GridPathMeta) IsCorrect() bool { return m.Correct }

// ErrorMeta is attached when a question could not be scored at all.
type ErrorMeta struct {
	Error string `json:"error"`
}

func (ErrorMeta) IsCorrect() bool { return false }

const (
	errNoAnswerKey        = "No answer key available"
	errMalformedAnswerKey = "Malformed answer key"
	errUnknownType        = "Unknown question type"
	errNoMoves            = "No moves provided"
	errOutOfBounds        = "Invalid move (out of bounds)"
	errGoalNotReached     = "Goal not reached"
	errInvalidGrid        = "Invalid grid configuration"
)

func intPtr(v int) *int { return &v }
func floatPtr(v float64) *float64 { return &v }
