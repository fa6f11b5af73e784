package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sprint-quiz-service/internal/domain"
	"sprint-quiz-service/internal/scoring"
)

// NewScoreCmd scores an answer sheet against a question file without a server.
func NewScoreCmd() *cobra.Command {
	var questionsPath, answersPath string
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score an answers JSON file against a questions JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			var questions []domain.Question
			if err := readJSON(questionsPath, &questions); err != nil {
				return fmt.Errorf("questions: %w", err)
			}
			var answers map[string]json.RawMessage
			if err := readJSON(answersPath, &answers); err != nil {
				return fmt.Errorf("answers: %w", err)
			}

			result := scoring.ScoreSubmission(questions, answers)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
	cmd.Flags().StringVar(&questionsPath, "questions", "", "path to a JSON array of questions")
	cmd.Flags().StringVar(&answersPath, "answers", "", "path to a JSON object of answers keyed by question id")
	_ = cmd.MarkFlagRequired("questions")
	_ = cmd.MarkFlagRequired("answers")
	return cmd
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
