package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ehr/healthassist/internal/config"
	"github.com/ehr/healthassist/internal/domain/inference"
	"github.com/ehr/healthassist/internal/domain/riskassessment"
	"github.com/ehr/healthassist/internal/knowledge"
)

// loadKnowledge resolves the knowledge base from the --dir flag, falling
// back to KNOWLEDGE_DIR and then the embedded tables.
func loadKnowledge(cmd *cobra.Command) (*knowledge.Base, error) {
	dir, _ := cmd.Flags().GetString("dir")
	if dir == "" {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		dir = cfg.KnowledgeDir
	}
	return knowledge.Resolve(dir)
}

func knowledgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "knowledge",
		Short: "Inspect the knowledge base",
	}

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Load and validate the knowledge base",
		RunE: func(cmd *cobra.Command, args []string) error {
			kb, err := loadKnowledge(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Knowledge base %s is valid.\n", kb.Version)
			fmt.Fprintf(out, "  symptoms:            %d\n", len(kb.Vocabulary()))
			fmt.Fprintf(out, "  conditions:          %d\n", len(kb.Conditions))
			fmt.Fprintf(out, "  extraction patterns: %d\n", len(kb.Patterns))
			fmt.Fprintf(out, "  questions:           %d\n", len(kb.Questionnaire))
			return nil
		},
	}
	validateCmd.Flags().String("dir", "", "Directory of knowledge YAML files (default: KNOWLEDGE_DIR or embedded)")
	cmd.AddCommand(validateCmd)

	return cmd
}

type predictOutput struct {
	inference.Result
	Disclaimer string `json:"disclaimer"`
}

func predictCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Run condition inference on free text or symptom tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, _ := cmd.Flags().GetString("text")
			symptoms, _ := cmd.Flags().GetStringSlice("symptom")
			age, _ := cmd.Flags().GetInt("age")

			kb, err := loadKnowledge(cmd)
			if err != nil {
				return err
			}
			svc := inference.NewService(kb, nil, zerolog.Nop(), inference.Options{})

			req := &inference.CheckRequest{Text: text, Symptoms: symptoms}
			if cmd.Flags().Changed("age") {
				req.Demographics = &inference.Demographics{Age: &age}
			}
			check, err := svc.Check(cmd.Context(), req)
			if err != nil {
				return err
			}

			return writeJSON(cmd.OutOrStdout(), predictOutput{
				Result: inference.Result{
					Symptoms:    check.Symptoms,
					Predictions: check.Predictions,
					RiskScore:   check.RiskScore,
				},
				Disclaimer: svc.Disclaimer(),
			})
		},
	}
	cmd.Flags().String("text", "", "Free-text symptom description")
	cmd.Flags().StringSlice("symptom", nil, "Symptom token (repeatable)")
	cmd.Flags().Int("age", 0, "Age in years")
	cmd.Flags().String("dir", "", "Directory of knowledge YAML files")
	return cmd
}

type assessOutput struct {
	Assessments []riskassessment.CategoryAssessment `json:"assessments"`
	Disclaimer  string                              `json:"disclaimer"`
}

func assessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Score questionnaire answers given as question=value pairs",
		RunE: func(cmd *cobra.Command, args []string) error {
			pairs, _ := cmd.Flags().GetStringArray("answer")
			answers, err := parseAnswers(pairs)
			if err != nil {
				return err
			}

			kb, err := loadKnowledge(cmd)
			if err != nil {
				return err
			}
			assessments, err := riskassessment.Score(kb, answers)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), assessOutput{
				Assessments: assessments,
				Disclaimer:  kb.Disclaimer,
			})
		},
	}
	cmd.Flags().StringArray("answer", nil, "Answer as question_id=value (repeatable)")
	cmd.Flags().String("dir", "", "Directory of knowledge YAML files")
	return cmd
}

func parseAnswers(pairs []string) (map[string]string, error) {
	answers := make(map[string]string, len(pairs))
	for _, p := range pairs {
		id, value, ok := strings.Cut(p, "=")
		id, value = strings.TrimSpace(id), strings.TrimSpace(value)
		if !ok || id == "" || value == "" {
			return nil, fmt.Errorf("answer %q must have the form question_id=value", p)
		}
		answers[id] = value
	}
	return answers, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
