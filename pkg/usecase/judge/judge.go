package judge

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"strings"
	"text/template"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/pipetrace/pkg/adapter"
	"github.com/m-mizutani/pipetrace/pkg/model"
	"github.com/m-mizutani/pipetrace/pkg/utils/logging"
	"google.golang.org/genai"
)

var (
	ErrSuggestionNotFound = goerr.New("suggestion not found")
)

//go:embed prompt/judge.md
var judgePromptRaw string

var judgePromptTmpl = template.Must(template.New("judge").Funcs(template.FuncMap{
	"add":  func(a, b int) int { return a + b },
	"join": strings.Join,
}).Parse(judgePromptRaw))

// Tracer is the trace lookup a judgement is built from
type Tracer interface {
	GetSuggestionTrace(ctx context.Context, id model.SuggestionID) (*model.SuggestionTrace, error)
	GetFrameTrace(ctx context.Context, id model.FrameID) (*model.FrameTrace, error)
}

// UseCase asks Gemini to grade a suggestion against the frames it was generated from
type UseCase struct {
	tracer Tracer
	gemini adapter.Gemini
	now    func() time.Time
}

type Option func(*UseCase)

func WithClock(now func() time.Time) Option {
	return func(uc *UseCase) {
		uc.now = now
	}
}

func New(tracer Tracer, gemini adapter.Gemini, opts ...Option) *UseCase {
	uc := &UseCase{
		tracer: tracer,
		gemini: gemini,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

type promptFrame struct {
	ID           model.FrameID
	Description  string
	Applications []string
}

// Evaluate grades one suggestion
func (u *UseCase) Evaluate(ctx context.Context, id model.SuggestionID) (*model.Judgement, error) {
	tr, err := u.tracer.GetSuggestionTrace(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get suggestion trace", goerr.V("suggestion_id", id))
	}
	if tr == nil {
		return nil, goerr.Wrap(ErrSuggestionNotFound, "cannot judge suggestion", goerr.V("suggestion_id", id))
	}

	frames := make([]promptFrame, 0, len(tr.SourceFrames))
	for _, f := range tr.SourceFrames {
		ft, err := u.tracer.GetFrameTrace(ctx, f.ID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to get frame trace", goerr.V("frame_id", f.ID))
		}
		pf := promptFrame{ID: f.ID}
		if ft != nil && ft.Analysis != nil {
			pf.Description = ft.Analysis.Description
			pf.Applications = ft.Analysis.Applications
		}
		frames = append(frames, pf)
	}

	var evidence string
	if tr.Generation.Suggestion != nil {
		evidence = tr.Generation.Suggestion.SupportEvidence
	}

	var buf bytes.Buffer
	if err := judgePromptTmpl.Execute(&buf, map[string]any{
		"Title":       tr.Title,
		"Description": tr.Description,
		"Approach":    tr.Approach,
		"Keywords":    tr.Keywords,
		"Status":      tr.Status,
		"Support":     tr.Support,
		"Evidence":    evidence,
		"Scoring":     tr.Scoring,
		"Frames":      frames,
	}); err != nil {
		return nil, goerr.Wrap(err, "failed to execute judge prompt template")
	}

	temperature := float32(0)
	thinkingBudget := int32(0)
	config := &genai.GenerateContentConfig{
		Temperature:      &temperature,
		ResponseMIMEType: "application/json",
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: false,
			ThinkingBudget:  &thinkingBudget,
		},
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"verdict": {
					Type:        genai.TypeString,
					Description: "keep, revise or drop",
					Enum:        []string{string(model.VerdictKeep), string(model.VerdictRevise), string(model.VerdictDrop)},
				},
				"relevance": {
					Type:        genai.TypeNumber,
					Description: "Relevance to the observed frames between 0 and 1",
				},
				"rationale": {
					Type:        genai.TypeString,
					Description: "Short explanation of the verdict",
				},
			},
			Required: []string{"verdict", "relevance", "rationale"},
		},
	}

	contents := []*genai.Content{
		genai.NewContentFromText(buf.String(), genai.RoleUser),
	}

	resp, err := u.gemini.GenerateContent(ctx, contents, config)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate judgement", goerr.V("suggestion_id", id))
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, goerr.New("invalid response structure from gemini")
	}

	rawJSON := resp.Candidates[0].Content.Parts[0].Text

	var data struct {
		Verdict   model.Verdict `json:"verdict"`
		Relevance float64       `json:"relevance"`
		Rationale string        `json:"rationale"`
	}
	if err := json.Unmarshal([]byte(rawJSON), &data); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal judgement JSON", goerr.V("json", rawJSON))
	}
	if err := data.Verdict.Validate(); err != nil {
		return nil, err
	}

	relevance := min(max(data.Relevance, 0), 1)

	judgement := &model.Judgement{
		ID:           model.NewJudgementID(),
		SuggestionID: id,
		Verdict:      data.Verdict,
		Relevance:    relevance,
		Rationale:    data.Rationale,
		JudgedAt:     u.now(),
	}

	logging.From(ctx).Debug("judged suggestion",
		"suggestion_id", id, "verdict", judgement.Verdict, "relevance", judgement.Relevance)

	return judgement, nil
}
