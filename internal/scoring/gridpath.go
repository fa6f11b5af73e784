package scoring

import (
	"encoding/json"
	"math"
	"strings"
)

// Trace is the outcome of walking a move list across a grid.
type Trace struct {
	Path        []Cell
	Steps       int
	WaterHits   int
	Reward      float64
	Valid       bool
	GoalReached bool
}

// Simulate walks moves from cfg.Start. The walk stops at the first move that
// leaves the grid (Valid=false) or on the first arrival at the goal; moves
// after the goal are ignored. Unrecognized tokens keep the position but still
// cost a step.
func Simulate(cfg GridConfig, moves []string) Trace {
	pos := cfg.Start
	tr := Trace{
		Path:  []Cell{pos},
		Valid: true,
	}

	for _, m := range moves {
		next := step(pos, m)
		if !cfg.inBounds(next) {
			tr.Valid = false
			break
		}

		pos = next
		tr.Path = append(tr.Path, pos)
		tr.Steps++
		tr.Reward += cfg.StepCost

		if cfg.isWater(pos) {
			tr.Reward += cfg.WaterPenalty
			tr.WaterHits++
		}
		if pos == cfg.Goal {
			tr.Reward += cfg.GoalReward
			break
		}
	}

	tr.GoalReached = pos == cfg.Goal
	return tr
}

func step(c Cell, move string) Cell {
	switch strings.ToUpper(move) {
	case "U":
		return Cell{c.Row() - 1, c.Col()}
	case "D":
		return Cell{c.Row() + 1, c.Col()}
	case "L":
		return Cell{c.Row(), c.Col() - 1}
	case "R":
		return Cell{c.Row(), c.Col() + 1}
	default:
		return c
	}
}

// ScoreGridPath simulates the submitted moves and bands the reward against
// the key's optimal reward. Only a valid walk that reaches the goal scores.
func ScoreGridPath(answer json.RawMessage, key GridPathKey, maxPoints int, cfg GridConfig) Result {
	raw, ok := field(answer, "moves")
	var moves []string
	if ok {
		moves, ok = decodeMoves(raw)
	}
	if !ok {
		return Result{Meta: GridPathMeta{
			Valid:       false,
			Error:       errNoMoves,
			UserPath:    []Cell{},
			OptimalPath: key.OptimalPath,
		}}
	}

	tr := Simulate(cfg, moves)
	meta := GridPathMeta{
		Valid:       tr.Valid,
		GoalReached: tr.GoalReached,
		Steps:       tr.Steps,
		WaterHits:   tr.WaterHits,
		Reward:      tr.Reward,
		UserPath:    tr.Path,
		OptimalPath: key.OptimalPath,
	}

	if !tr.Valid || !tr.GoalReached {
		meta.Error = errGoalNotReached
		if !tr.Valid {
			meta.Error = errOutOfBounds
		}
		return Result{Meta: meta}
	}

	points := rewardBand(tr.Reward, key.OptimalReward, maxPoints)
	meta.Correct = points == maxPoints
	meta.OptimalSteps = intPtr(key.OptimalSteps)
	meta.OptimalReward = floatPtr(key.OptimalReward)
	meta.Efficiency = intPtr(efficiency(key.OptimalReward, tr.Reward))
	return Result{Points: points, Meta: meta}
}

// rewardBand maps a goal-reaching reward to a share of maxPoints. The bands
// are absolute reward gaps below optimal, tuned for step costs of -1 and
// water penalties of -3.
func rewardBand(reward, optimal float64, maxPoints int) int {
	switch {
	case reward >= optimal:
		return maxPoints
	case reward >= optimal-2:
		return percentOf(maxPoints, 80)
	case reward >= optimal-4:
		return percentOf(maxPoints, 60)
	case reward > 0:
		return percentOf(maxPoints, 40)
	default:
		return percentOf(maxPoints, 20)
	}
}

func percentOf(maxPoints, pct int) int {
	if maxPoints <= 0 {
		return 0
	}
	return maxPoints * pct / 100
}

// efficiency is round(optimal / max(reward, 1) * 100), halves rounded up.
func efficiency(optimal, reward float64) int {
	return int(math.Floor(optimal/math.Max(reward, 1)*100 + 0.5))
}
