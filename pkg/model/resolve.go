package model

// Precedence rules shared by every trace and listing. A suggestion accumulates more accurate data as it
// moves through the pipeline, and the live record reflects user interaction, so later tiers override
// earlier ones:
//
//	support: live.Support  >  scored.Scores.Combined  >  generated.Support / 10
//	text:    non-empty live field  >  generated field
//	keywords: non-nil live list  >  generated list
//	status:  non-empty live status  >  "generated"
//
// A nil live or scored argument means that tier is absent.

// RawSupportScale converts the generation stage's integer support count into [0,1]
const RawSupportScale = 10.0

// ResolveSupport returns the most current support value for a suggestion
func ResolveSupport(live *LiveSuggestion, scored *ScoredSuggestion, rawSupport int) float64 {
	if live != nil && live.Support != nil {
		return *live.Support
	}
	if scored != nil {
		return scored.Scores.Combined
	}
	return float64(rawSupport) / RawSupportScale
}

// ResolveStatus returns the live status, or StatusGenerated when the suggestion has not surfaced yet
func ResolveStatus(live *LiveSuggestion) string {
	if live != nil && live.Status != "" {
		return live.Status
	}
	return StatusGenerated
}

// Display holds the user-facing fields of a suggestion after precedence resolution
type Display struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Approach    string   `json:"approach"`
	Keywords    []string `json:"keywords"`
	Status      string   `json:"status"`
}

// ResolveDisplay merges the live record over the generation-time snapshot field by field
func ResolveDisplay(live *LiveSuggestion, gen *GeneratedSuggestion) Display {
	d := Display{
		Title:       gen.Title,
		Description: gen.Description,
		Approach:    gen.Approach,
		Keywords:    gen.Keywords,
		Status:      ResolveStatus(live),
	}
	if live == nil {
		return d
	}

	d.Title = resolveText(live.Title, gen.Title)
	d.Description = resolveText(live.Description, gen.Description)
	d.Approach = resolveText(live.Approach, gen.Approach)
	if live.Keywords != nil {
		d.Keywords = live.Keywords
	}
	return d
}

func resolveText(live, generated string) string {
	if live != "" {
		return live
	}
	return generated
}
