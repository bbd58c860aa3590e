package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

var (
	ErrInvalidVerdict = goerr.New("invalid verdict")
)

type JudgementID string

// NewJudgementID generates a new unique JudgementID
func NewJudgementID() JudgementID {
	return JudgementID(uuid.New().String())
}

type Verdict string

const (
	VerdictKeep   Verdict = "keep"
	VerdictRevise Verdict = "revise"
	VerdictDrop   Verdict = "drop"
)

// Validate checks if the verdict is valid
func (v Verdict) Validate() error {
	switch v {
	case VerdictKeep, VerdictRevise, VerdictDrop:
		return nil
	default:
		return goerr.Wrap(ErrInvalidVerdict, "unknown verdict", goerr.V("verdict", v))
	}
}

// Judgement is an LLM evaluation of one suggestion trace
type Judgement struct {
	ID           JudgementID  `json:"id"`
	SuggestionID SuggestionID `json:"suggestionId"`
	Verdict      Verdict      `json:"verdict"`
	Relevance    float64      `json:"relevance"`
	Rationale    string       `json:"rationale"`
	JudgedAt     time.Time    `json:"judgedAt"`
}
