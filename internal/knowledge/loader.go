package knowledge

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var embedded embed.FS

// File names read from a knowledge directory.
const (
	MetaFile          = "meta.yaml"
	SymptomsFile      = "symptoms.yaml"
	ConditionsFile    = "conditions.yaml"
	PatternsFile      = "patterns.yaml"
	QuestionnaireFile = "questionnaire.yaml"
)

type metaDoc struct {
	Version    string `yaml:"version"`
	Disclaimer string `yaml:"disclaimer"`
}

type symptomsDoc struct {
	Symptoms map[string][]ConditionRule `yaml:"symptoms"`
}

type conditionsDoc struct {
	DefaultDescription     string                   `yaml:"default_description"`
	DefaultRecommendations []string                 `yaml:"default_recommendations"`
	Conditions             map[string]ConditionInfo `yaml:"conditions"`
}

type patternsDoc struct {
	Patterns []ExtractionPattern `yaml:"patterns"`
}

type questionnaireDoc struct {
	Items                   []QuestionnaireItem `yaml:"items"`
	CategoryRecommendations map[string][]string `yaml:"category_recommendations"`
}

// Default loads the knowledge base compiled into the binary.
func Default() (*Base, error) {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		return nil, fmt.Errorf("open embedded knowledge: %w", err)
	}
	return Load(sub)
}

// LoadDir loads a knowledge base from YAML files in dir.
func LoadDir(dir string) (*Base, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat knowledge dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("knowledge path %s is not a directory", dir)
	}
	return Load(os.DirFS(dir))
}

// Resolve loads from dir when it is set and from the embedded tables otherwise.
func Resolve(dir string) (*Base, error) {
	if dir == "" {
		return Default()
	}
	return LoadDir(dir)
}

// Load decodes every knowledge file from fsys and validates the result.
func Load(fsys fs.FS) (*Base, error) {
	var (
		meta  metaDoc
		syms  symptomsDoc
		conds conditionsDoc
		pats  patternsDoc
		quest questionnaireDoc
	)
	docs := []struct {
		name string
		out  interface{}
	}{
		{MetaFile, &meta},
		{SymptomsFile, &syms},
		{ConditionsFile, &conds},
		{PatternsFile, &pats},
		{QuestionnaireFile, &quest},
	}
	for _, d := range docs {
		if err := decodeFile(fsys, d.name, d.out); err != nil {
			return nil, err
		}
	}

	b := &Base{
		Version:                 meta.Version,
		Disclaimer:              strings.TrimSpace(meta.Disclaimer),
		Symptoms:                normalizeSymptoms(syms.Symptoms),
		Conditions:              conds.Conditions,
		DefaultDescription:      strings.TrimSpace(conds.DefaultDescription),
		DefaultRecommendations:  conds.DefaultRecommendations,
		Patterns:                pats.Patterns,
		Questionnaire:           quest.Items,
		CategoryRecommendations: quest.CategoryRecommendations,
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

func decodeFile(fsys fs.FS, name string, out interface{}) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// normalizeSymptoms lower-cases and trims symptom keys so the vocabulary
// matches extractor output.
func normalizeSymptoms(in map[string][]ConditionRule) map[string][]ConditionRule {
	out := make(map[string][]ConditionRule, len(in))
	for k, rules := range in {
		key := strings.ToLower(strings.TrimSpace(k))
		out[key] = append(out[key], rules...)
	}
	return out
}
