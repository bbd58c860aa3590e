package repository

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"
)

// Layout names the directory of every stage relative to the pipeline output root
type Layout struct {
	FrameAnalysis        string `yaml:"frame_analysis"`
	ConcentrationGate    string `yaml:"concentration_gate"`
	SuggestionGeneration string `yaml:"suggestion_generation"`
	ScoringFiltering     string `yaml:"scoring_filtering"`
	Deduplication        string `yaml:"deduplication"`
	Screenshots          string `yaml:"screenshots"`
}

// DefaultLayout returns the directory names the pipeline writes by default
func DefaultLayout() Layout {
	return Layout{
		FrameAnalysis:        "frame_analysis",
		ConcentrationGate:    "concentration_gate",
		SuggestionGeneration: "suggestion_generation",
		ScoringFiltering:     "scoring_filtering",
		Deduplication:        "deduplication",
		Screenshots:          "screenshots",
	}
}

// LoadLayout reads a YAML layout file. Directories the file leaves out keep their defaults.
func LoadLayout(path string) (Layout, error) {
	layout := DefaultLayout()

	data, err := os.ReadFile(path)
	if err != nil {
		return layout, goerr.Wrap(err, "failed to read layout file", goerr.V("path", path))
	}

	var override Layout
	if err := yaml.Unmarshal(data, &override); err != nil {
		return layout, goerr.Wrap(err, "failed to parse layout file", goerr.V("path", path))
	}

	layout.merge(override)
	return layout, nil
}

func (l *Layout) merge(o Layout) {
	pick := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	pick(&l.FrameAnalysis, o.FrameAnalysis)
	pick(&l.ConcentrationGate, o.ConcentrationGate)
	pick(&l.SuggestionGeneration, o.SuggestionGeneration)
	pick(&l.ScoringFiltering, o.ScoringFiltering)
	pick(&l.Deduplication, o.Deduplication)
	pick(&l.Screenshots, o.Screenshots)
}
