package model

// Records persisted by the five pipeline stages. They are written once by their producers and only read
// here, so every type mirrors the on-disk JSON layout.

type SuggestionID string

type GateDecision string

const (
	GateDecisionContinue GateDecision = "CONTINUE"
	GateDecisionSkip     GateDecision = "SKIP"
)

// FrameAnalysis is the output of the frame_analysis stage for one frame
type FrameAnalysis struct {
	FrameID      FrameID  `json:"frameId"`
	Description  string   `json:"description"`
	Activities   []string `json:"activities"`
	Applications []string `json:"applications"`
	Keywords     []string `json:"keywords"`
	// LLMUsed is false when the description was served from the analyzer cache
	LLMUsed    bool  `json:"llmUsed"`
	AnalyzedAt int64 `json:"analyzedAt,omitempty"`
}

// GateResult is the output of the concentration_gate stage for one frame
type GateResult struct {
	FrameID     FrameID      `json:"frameId"`
	Decision    GateDecision `json:"decision"`
	Importance  float64      `json:"importance"`
	Reason      string       `json:"reason"`
	EvaluatedAt int64        `json:"evaluatedAt,omitempty"`
}

type GeneratedSuggestion struct {
	SuggestionID    SuggestionID `json:"suggestionId"`
	Title           string       `json:"title"`
	Description     string       `json:"description"`
	Approach        string       `json:"approach"`
	Keywords        []string     `json:"keywords"`
	Support         int          `json:"support"`
	SupportEvidence string       `json:"supportEvidence"`
	SourceFrameIDs  []FrameID    `json:"sourceFrameIds"`
}

// GenerationBatch is one run of the suggestion_generation stage
type GenerationBatch struct {
	BatchID     string                 `json:"batchId"`
	CreatedAt   int64                  `json:"createdAt"`
	FrameIDs    []FrameID              `json:"frameIds,omitempty"`
	Suggestions []*GeneratedSuggestion `json:"suggestions"`
}

type Scores struct {
	Benefit        float64 `json:"benefit"`
	DisruptionCost float64 `json:"disruptionCost"`
	MissCost       float64 `json:"missCost"`
	Decay          float64 `json:"decay"`
	Combined       float64 `json:"combined"`
}

type FilterDecision struct {
	Passed bool   `json:"passed"`
	Reason string `json:"reason"`
}

type ScoredSuggestion struct {
	SuggestionID SuggestionID   `json:"suggestionId"`
	Scores       Scores         `json:"scores"`
	Filter       FilterDecision `json:"filter"`
}

// ScoringResult is one run of the scoring_filtering stage
type ScoringResult struct {
	BatchID           string              `json:"batchId"`
	GenerationBatchID string              `json:"generationBatchId,omitempty"`
	CreatedAt         int64               `json:"createdAt"`
	ScoredSuggestions []*ScoredSuggestion `json:"scoredSuggestions"`
}

// Similarity is a pairwise comparison recorded by the deduplication stage
type Similarity struct {
	SuggestionID1  SuggestionID `json:"suggestionId1"`
	SuggestionID2  SuggestionID `json:"suggestionId2"`
	Similarity     float64      `json:"similarity"`
	IsDuplicate    bool         `json:"isDuplicate"`
	Classification string       `json:"classification"`
	Reason         string       `json:"reason"`
}

// Involves reports whether id is one of the two participants
func (s *Similarity) Involves(id SuggestionID) bool {
	return s.SuggestionID1 == id || s.SuggestionID2 == id
}

// DedupResult is one run of the deduplication stage
type DedupResult struct {
	BatchID             string         `json:"batchId"`
	ScoringBatchID      string         `json:"scoringBatchId,omitempty"`
	CreatedAt           int64          `json:"createdAt"`
	UniqueSuggestionIDs []SuggestionID `json:"uniqueSuggestionIds"`
	DuplicatesRemoved   []SuggestionID `json:"duplicatesRemoved"`
	Similarities        []*Similarity  `json:"similarities"`
}
