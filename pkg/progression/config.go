package progression

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/frnsys/dust/pkg/theory"
)

// ErrEmptyTemplate is returned for a template missing patterns for a
// mode. Generation draws random chords from the mode's pattern pool,
// so every mode needs at least one pattern.
var ErrEmptyTemplate = errors.New("template needs at least one pattern per mode")

// templateFile is the on-disk shape of a progression template:
//
//	resolution: eighth
//	major:
//	  - "I V vi IV"
//	  - "I IV V IV"
//	minor:
//	  - "i VI III v"
type templateFile struct {
	Resolution string   `yaml:"resolution"`
	Major      []string `yaml:"major"`
	Minor      []string `yaml:"minor"`
}

func parsePatterns(lines []string) ([][]theory.ChordSpec, error) {
	patterns := make([][]theory.ChordSpec, 0, len(lines))
	for _, line := range lines {
		var pattern []theory.ChordSpec
		for _, tok := range strings.Fields(line) {
			cs, err := theory.ParseChord(tok)
			if err != nil {
				return nil, fmt.Errorf("pattern %q: %w", line, err)
			}
			pattern = append(pattern, cs)
		}
		if len(pattern) == 0 {
			continue
		}
		patterns = append(patterns, pattern)
	}
	return patterns, nil
}

// ParseTemplate parses a YAML progression template and builds its
// transition graph.
func ParseTemplate(data []byte) (*ProgressionTemplate, error) {
	var file templateFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}

	resolution := theory.Eighth
	if file.Resolution != "" {
		var err error
		resolution, err = theory.ParseDuration(file.Resolution)
		if err != nil {
			return nil, err
		}
	}

	major, err := parsePatterns(file.Major)
	if err != nil {
		return nil, err
	}
	minor, err := parsePatterns(file.Minor)
	if err != nil {
		return nil, err
	}
	if len(major) == 0 {
		return nil, fmt.Errorf("%w: major", ErrEmptyTemplate)
	}
	if len(minor) == 0 {
		return nil, fmt.Errorf("%w: minor", ErrEmptyTemplate)
	}

	template := &ProgressionTemplate{
		Major:      ModeTemplate{Patterns: major},
		Minor:      ModeTemplate{Patterns: minor},
		Resolution: resolution,
	}
	template.UpdateTransitions()
	return template, nil
}

// LoadTemplate reads a progression template from a YAML file.
func LoadTemplate(path string) (*ProgressionTemplate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load template: %w", err)
	}
	return ParseTemplate(data)
}

// DefaultTemplate returns a built-in template of common progressions,
// used when no pattern file is configured.
func DefaultTemplate() *ProgressionTemplate {
	template, err := ParseTemplate([]byte(defaultPatterns))
	if err != nil {
		// The built-in patterns are fixed and known to parse.
		panic(err)
	}
	return template
}

const defaultPatterns = `
resolution: eighth
major:
  - "I V vi IV"
  - "I IV V IV"
  - "I vi IV V"
  - "IV I V vi"
  - "I iii vi IV"
  - "I IV ii V"
minor:
  - "i VI III VII"
  - "i iv v i"
  - "i VI III v"
  - "i iv VII i"
  - "i VII VI VII"
  - "i iv i v"
`
