package terminal

import (
	"strings"

	"github.com/klever-desktop/core/glob"
)

// Classifier derives the severity of a line from its channel and content.
// The exact patterns are a host concern, implementations are pluggable.
type Classifier interface {
	Classify(channel Channel, content string) Level
}

// ClassifierConfig holds the glob patterns for the default classifier. The
// patterns are matched against the lowercased content.
type ClassifierConfig struct {
	ErrorPatterns   []string
	WarningPatterns []string
	// InfoPatterns mark content as clearly informational. Matching content
	// is not upgraded to warning even if it arrived on stderr.
	InfoPatterns []string
}

type globClassifier struct {
	errors   []glob.Glob
	warnings []glob.Glob
	infos    []glob.Glob
}

// NewClassifier returns a classifier matching the given glob patterns. An
// error is returned if a pattern doesn't compile.
func NewClassifier(config ClassifierConfig) (Classifier, error) {
	c := &globClassifier{}

	for _, pattern := range config.ErrorPatterns {
		g, err := glob.Compile(strings.ToLower(pattern))
		if err != nil {
			return nil, err
		}

		c.errors = append(c.errors, g)
	}

	for _, pattern := range config.WarningPatterns {
		g, err := glob.Compile(strings.ToLower(pattern))
		if err != nil {
			return nil, err
		}

		c.warnings = append(c.warnings, g)
	}

	for _, pattern := range config.InfoPatterns {
		g, err := glob.Compile(strings.ToLower(pattern))
		if err != nil {
			return nil, err
		}

		c.infos = append(c.infos, g)
	}

	return c, nil
}

// NewDefaultClassifier returns a classifier with the patterns the dashboard
// ships with.
func NewDefaultClassifier() Classifier {
	c, _ := NewClassifier(ClassifierConfig{
		ErrorPatterns: []string{
			"*error*",
			"*fatal*",
			"*failed*",
			"*traceback*",
			"*exception*",
		},
		WarningPatterns: []string{
			"*warn*",
			"*deprecated*",
		},
		InfoPatterns: []string{
			"*info*",
			"*downloading*",
			"*pulling*",
			"*100%*",
		},
	})

	return c
}

func (c *globClassifier) Classify(channel Channel, content string) Level {
	content = strings.ToLower(content)

	for _, g := range c.errors {
		if g.Match(content) {
			return LevelError
		}
	}

	for _, g := range c.warnings {
		if g.Match(content) {
			return LevelWarning
		}
	}

	// Anything on stderr is at least a warning unless it is clearly
	// informational. Tools routinely write progress output to stderr.
	if channel == ChannelStderr {
		for _, g := range c.infos {
			if g.Match(content) {
				return LevelInfo
			}
		}

		return LevelWarning
	}

	return LevelInfo
}
