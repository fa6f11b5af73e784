package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// QuestionType tags the answer shape a question expects.
type QuestionType string

const (
	QuestionMCQ       QuestionType = "MCQ"
	QuestionCheckbox  QuestionType = "CHECKBOX"
	QuestionTrueFalse QuestionType = "TRUE_FALSE"
	QuestionGridPath  QuestionType = "GRID_PATH"
)

// LeaderboardVisibility controls who may read an event's leaderboard.
type LeaderboardVisibility string

const (
	VisibilityAdminOnly LeaderboardVisibility = "ADMIN_ONLY"
	VisibilityTeams     LeaderboardVisibility = "TEAMS"
)

// Role identifies the kind of caller asking for data.
type Role string

const (
	RoleTeam  Role = "TEAM"
	RoleAdmin Role = "ADMIN"
)

// Question is an immutable question-bank record. Prompt, AnswerKey and
// Explanation are kept as raw JSON; their shapes depend on Type.
type Question struct {
	ID          string          `json:"id"`
	ActivityID  string          `json:"activityId,omitempty"`
	Type        QuestionType    `json:"type"`
	Prompt      json.RawMessage `json:"prompt,omitempty"`
	Options     json.RawMessage `json:"options,omitempty"`
	Points      int             `json:"points"`
	Order       int             `json:"order"`
	AnswerKey   json.RawMessage `json:"aiAnswerKey,omitempty"`
	Explanation json.RawMessage `json:"aiExplanation,omitempty"`
}

// Event groups activities and owns the open/closed switch.
type Event struct {
	ID                    string                `json:"id"`
	Name                  string                `json:"name"`
	IsOpen                bool                  `json:"isOpen"`
	LeaderboardVisibility LeaderboardVisibility `json:"leaderboardVisibility"`
}

// Activity (a "sprint" for teams) is an ordered set of questions.
// Questions become answerable once the activity is frozen.
type Activity struct {
	ID          string     `json:"id"`
	EventID     string     `json:"eventId"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Order       int        `json:"order"`
	IsFrozen    bool       `json:"isFrozen"`
	Questions   []Question `json:"questions"`
}

// Team is a registered competitor.
type Team struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	DisplayName string `json:"displayName"`
}

// Submission is the single scored answer sheet of a team for an activity.
type Submission struct {
	TeamID     string                     `json:"teamId"`
	ActivityID string                     `json:"activityId"`
	EventID    string                     `json:"eventId"`
	Answers    map[string]json.RawMessage `json:"answers"`
	Score      int                        `json:"score"`
	CreatedAt  time.Time                  `json:"createdAt"`
}

// TeamScore is a team's running total within an event.
type TeamScore struct {
	TeamID      string
	TeamCode    string
	DisplayName string
	Total       int
	// ActivityScores maps activity id to the score of that submission.
	ActivityScores map[string]int
	LastUpdated    time.Time
}

// LeaderboardEntry is a snapshot-friendly view of a team score.
type LeaderboardEntry struct {
	Rank           int            `json:"rank"`
	TeamID         string         `json:"teamId"`
	TeamCode       string         `json:"teamCode"`
	TeamName       string         `json:"teamName"`
	Score          int            `json:"score"`
	ActivityScores map[string]int `json:"activityScores,omitempty"`
	LastUpdated    time.Time      `json:"lastUpdated"`
}

// Leaderboard captures the ordered scoreboard for an event.
type Leaderboard struct {
	EventID   string             `json:"eventId"`
	Entries   []LeaderboardEntry `json:"entries"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// EventUpdate carries the admin switches of an event; nil fields are left as they are.
type EventUpdate struct {
	IsOpen                *bool                  `json:"isOpen,omitempty"`
	LeaderboardVisibility *LeaderboardVisibility `json:"leaderboardVisibility,omitempty"`
}

// Valid reports whether v is a known visibility.
func (v LeaderboardVisibility) Valid() bool {
	return v == VisibilityAdminOnly || v == VisibilityTeams
}

// TeamCode renders the display code for the index-th registered team:
// A-00..Z-99, then AA-00..AZ-99, BA-00 and so on.
func TeamCode(index int) string {
	if index < 0 {
		index = 0
	}
	block := index / 100
	prefix := ""
	for {
		prefix = string(rune('A'+block%26)) + prefix
		block = block/26 - 1
		if block < 0 {
			break
		}
	}
	return fmt.Sprintf("%s-%02d", prefix, index%100)
}
