package model

// FrameSummary is the lightweight listing view of a frame
type FrameSummary struct {
	ID              FrameID      `json:"id"`
	Timestamp       int64        `json:"timestamp"`
	Kind            CaptureKind  `json:"kind"`
	Analyzed        bool         `json:"analyzed"`
	GateDecision    GateDecision `json:"gateDecision,omitempty"`
	SuggestionCount int          `json:"suggestionCount"`
	HasScreenshot   bool         `json:"hasScreenshot"`
}

// SuggestionSummary is the lightweight listing view of a generated suggestion
type SuggestionSummary struct {
	ID               SuggestionID `json:"id"`
	Title            string       `json:"title"`
	Status           string       `json:"status"`
	Support          float64      `json:"support"`
	CreatedAt        int64        `json:"createdAt"`
	SourceFrameCount int          `json:"sourceFrameCount"`
}

type ScoringTrace struct {
	BatchID   string         `json:"batchId"`
	CreatedAt int64          `json:"createdAt"`
	Scores    Scores         `json:"scores"`
	Filter    FilterDecision `json:"filter"`
}

type DedupTrace struct {
	BatchID      string        `json:"batchId"`
	CreatedAt    int64         `json:"createdAt"`
	IsUnique     bool          `json:"isUnique"`
	Similarities []*Similarity `json:"similarities"`
}

type GenerationTrace struct {
	BatchID    string               `json:"batchId"`
	CreatedAt  int64                `json:"createdAt"`
	Suggestion *GeneratedSuggestion `json:"suggestion"`
}

// ResolvedSuggestion is a suggestion as seen from a frame trace: generation data plus whatever the later
// stages and the live state recorded about it
type ResolvedSuggestion struct {
	ID SuggestionID `json:"id"`
	Display
	Support         float64       `json:"support"`
	RawSupport      int           `json:"rawSupport"`
	SupportEvidence string        `json:"supportEvidence"`
	GenerationBatch string        `json:"generationBatchId"`
	Scoring         *ScoringTrace `json:"scoring,omitempty"`
	Dedup           *DedupTrace   `json:"dedup,omitempty"`
	Live            bool          `json:"live"`
}

// FrameTrace is everything the pipeline recorded about one frame
type FrameTrace struct {
	FrameID       FrameID               `json:"frameId"`
	Timestamp     int64                 `json:"timestamp"`
	Kind          CaptureKind           `json:"kind"`
	Analysis      *FrameAnalysis        `json:"analysis"`
	Gate          *GateResult           `json:"gate"`
	ContributedTo []SuggestionID        `json:"contributedTo"`
	Suggestions   []*ResolvedSuggestion `json:"suggestions"`
}

// SuggestionTrace is everything the pipeline recorded about one suggestion
type SuggestionTrace struct {
	SuggestionID SuggestionID `json:"suggestionId"`
	Display
	Support      float64         `json:"support"`
	Generation   GenerationTrace `json:"generation"`
	Scoring      *ScoringTrace   `json:"scoring,omitempty"`
	Dedup        *DedupTrace     `json:"dedup,omitempty"`
	Live         *LiveSuggestion `json:"live,omitempty"`
	SourceFrames []*FrameSummary `json:"sourceFrames"`
}
