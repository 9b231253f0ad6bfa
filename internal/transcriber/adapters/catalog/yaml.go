package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/izzddalfk/zhuanxie/internal/transcriber/core"
	"gopkg.in/yaml.v3"
)

// Catalog serves the language list and the demonstration sentences, read
// from an optional YAML file on top of the built-in defaults
type Catalog struct {
	languages []core.Language
	names     map[string]string
	sentences []string
}

// File is the YAML document layout
type File struct {
	Languages []core.Language `yaml:"languages"`
	Demo      DemoConfig      `yaml:"demo"`
}

type DemoConfig struct {
	Sentences []string `yaml:"sentences"`
}

// NewDefaultCatalog returns the built-in catalog
func NewDefaultCatalog() *Catalog {
	return newCatalog(core.DefaultLanguages, core.DefaultDemoSentences)
}

// LoadCatalog reads the YAML file at path. An empty path or a missing file
// yields the built-in catalog; sections left out of the file keep their defaults.
func LoadCatalog(path string, logger *slog.Logger) (*Catalog, error) {
	ctx := context.Background()

	if path == "" {
		return NewDefaultCatalog(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.InfoContext(ctx, "Catalog file not found, using defaults",
				"catalog_path", path,
			)
			return NewDefaultCatalog(), nil
		}
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	languages := core.DefaultLanguages
	if len(file.Languages) > 0 {
		if err := validateLanguages(file.Languages); err != nil {
			return nil, fmt.Errorf("invalid catalog: %w", err)
		}
		languages = file.Languages
	}

	sentences := core.DefaultDemoSentences
	if len(file.Demo.Sentences) > 0 {
		sentences = nonEmpty(file.Demo.Sentences)
		if len(sentences) == 0 {
			return nil, fmt.Errorf("invalid catalog: demo sentences are blank")
		}
	}

	logger.InfoContext(ctx, "Catalog loaded",
		"catalog_path", path,
		"languages", len(languages),
		"demo_sentences", len(sentences),
	)

	return newCatalog(languages, sentences), nil
}

func newCatalog(languages []core.Language, sentences []string) *Catalog {
	names := make(map[string]string, len(languages))
	for _, lang := range languages {
		names[lang.Code] = lang.Name
	}

	return &Catalog{
		languages: languages,
		names:     names,
		sentences: sentences,
	}
}

// Languages returns a copy of the language list
func (c *Catalog) Languages() []core.Language {
	out := make([]core.Language, len(c.languages))
	copy(out, c.languages)
	return out
}

// LanguageName returns the display name of a language code
func (c *Catalog) LanguageName(code string) (string, bool) {
	name, ok := c.names[code]
	return name, ok
}

// DemoSentences returns a copy of the demonstration sentences
func (c *Catalog) DemoSentences() []string {
	out := make([]string, len(c.sentences))
	copy(out, c.sentences)
	return out
}

func validateLanguages(languages []core.Language) error {
	seen := make(map[string]bool, len(languages))
	for i, lang := range languages {
		if strings.TrimSpace(lang.Code) == "" {
			return core.NewValidationError("languages", fmt.Sprintf("language %d has an empty code", i))
		}
		if strings.TrimSpace(lang.Name) == "" {
			return core.NewValidationError("languages", fmt.Sprintf("language %s has an empty name", lang.Code))
		}
		if seen[lang.Code] {
			return core.NewValidationError("languages", fmt.Sprintf("duplicate language code: %s", lang.Code))
		}
		seen[lang.Code] = true
	}
	return nil
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
