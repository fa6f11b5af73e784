package cli

import (
	"encoding/json"

	"sprint-quiz-service/internal/domain"
)

const demoEventID = "evt-scout-2025"

// demoContent is the four-sprint awareness event used for local runs.
func demoContent() (domain.Event, []domain.Activity) {
	event := domain.Event{
		ID:                    demoEventID,
		Name:                  "Scout AI Awareness Event 2025",
		IsOpen:                true,
		LeaderboardVisibility: domain.VisibilityTeams,
	}

	activities := []domain.Activity{
		{
			ID:          "act-pattern-hunt",
			EventID:     demoEventID,
			Title:       "Sprint 1: Pattern Hunt",
			Description: "Learn how AI recognizes patterns through supervised learning",
			Order:       1,
			IsFrozen:    true,
			Questions: []domain.Question{
				{
					ID:          "q-pattern-label",
					Type:        domain.QuestionMCQ,
					Prompt:      raw(`{"text":"An AI sees these training examples: Triangle+Green→A, Square+Blue→B, Triangle+Blue→A. What label would it give to: Triangle+Red?","hint":"Look for the pattern in the shapes"}`),
					Options:     raw(`["A","B","Not sure"]`),
					Points:      2,
					Order:       1,
					AnswerKey:   raw(`{"correct":0}`),
					Explanation: raw(`{"kind":"decisionRule","ruleText":"Triangle → A","why":"The AI learned that triangles always get label A, regardless of color"}`),
				},
				{
					ID:          "q-pattern-night",
					Type:        domain.QuestionTrueFalse,
					Prompt:      raw(`{"text":"True or False: An AI trained only on daytime photos of cars will work perfectly on nighttime photos."}`),
					Points:      2,
					Order:       2,
					AnswerKey:   raw(`{"correct":false}`),
					Explanation: raw(`{"kind":"concept","concept":"Overfitting","why":"AI needs diverse training data to work in different conditions"}`),
				},
			},
		},
		{
			ID:          "act-reward-runner",
			EventID:     demoEventID,
			Title:       "Sprint 2: Reward Runner",
			Description: "Explore reinforcement learning through path-finding challenges",
			Order:       2,
			IsFrozen:    true,
			Questions: []domain.Question{
				{
					ID:          "q-runner-path",
					Type:        domain.QuestionGridPath,
					Prompt:      raw(`{"gridSize":[5,5],"start":[5,1],"goal":[1,5],"water":[[2,3],[3,2],[4,4]],"stepCost":-1,"goalReward":10,"waterPenalty":-3}`),
					Points:      10,
					Order:       1,
					AnswerKey:   raw(`{"optimalPath":"U,U,U,U,R,R,R,R","optimalSteps":8,"optimalReward":2}`),
					Explanation: raw(`{"kind":"pathOverlay","grid":{"rows":5,"cols":5,"water":[[2,3],[3,2],[4,4]]},"optimalPath":"U,U,U,U,R,R,R,R","math":"Reward = +10 (goal) - 8 (steps) = +2"}`),
				},
			},
		},
		{
			ID:          "act-bias-detective",
			EventID:     demoEventID,
			Title:       "Sprint 3: Bias Detective",
			Description: "Discover fairness issues in AI training data",
			Order:       3,
			IsFrozen:    true,
			Questions: []domain.Question{
				{
					ID:          "q-bias-fixes",
					Type:        domain.QuestionCheckbox,
					Prompt:      raw(`{"text":"An AI trained on 100 Apple photos (all daytime) and 10 Guava photos (all nighttime) is failing. Which fixes would help? (Select all that apply)"}`),
					Options:     raw(`["Add more daytime Guava photos","Add more nighttime Apple photos","Remove all nighttime photos","Use equal numbers of each fruit","Test on both day and night photos"]`),
					Points:      5,
					Order:       1,
					AnswerKey:   raw(`{"correctSet":[0,1,3,4],"grading":"partial"}`),
					Explanation: raw(`{"kind":"fairnessPanel","datasetSketch":{"apple_day":100,"apple_night":0,"guava_day":0,"guava_night":10},"issues":["class imbalance","confounding variable (time of day)"]}`),
				},
			},
		},
		{
			ID:          "act-reality-check",
			EventID:     demoEventID,
			Title:       "Sprint 4: Reality Check",
			Description: "Learn to identify AI-generated content and stay safe online",
			Order:       4,
			IsFrozen:    true,
			Questions: []domain.Question{
				{
					ID:          "q-reality-deepfake",
					Type:        domain.QuestionMCQ,
					Prompt:      raw(`{"text":"You receive a video of your favorite celebrity asking for money. The lip-sync looks slightly off. What should you do?"}`),
					Options:     raw(`["Send money immediately","Share with all friends first","Verify through official channels","Assume it's real if it looks mostly good"]`),
					Points:      3,
					Order:       1,
					AnswerKey:   raw(`{"correct":2}`),
					Explanation: raw(`{"kind":"safetyTip","principle":"SCOUT - C: Check sources","redFlags":["unusual request","imperfect lip-sync"]}`),
				},
			},
		},
	}
	return event, activities
}

func demoTeams() []domain.Team {
	return []domain.Team{
		{ID: "team-falcons", Code: domain.TeamCode(0), DisplayName: "Falcons"},
		{ID: "team-owls", Code: domain.TeamCode(1), DisplayName: "Owls"},
		{ID: "team-otters", Code: domain.TeamCode(2), DisplayName: "Otters"},
	}
}

func raw(s string) json.RawMessage {
	return json.RawMessage(s)
}
