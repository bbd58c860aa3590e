// Package export copies frame and suggestion summaries to BigQuery so pipeline runs can be compared
// offline.
package export

import (
	"context"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/pipetrace/pkg/adapter"
	"github.com/m-mizutani/pipetrace/pkg/model"
	"github.com/m-mizutani/pipetrace/pkg/utils/logging"
)

const (
	FramesTable      = "frames"
	SuggestionsTable = "suggestions"
)

// Lister is the summary source of an export
type Lister interface {
	ListFrames(ctx context.Context) ([]*model.FrameSummary, error)
	ListSuggestions(ctx context.Context) ([]*model.SuggestionSummary, error)
}

var FramesSchema = bigquery.Schema{
	{Name: "run_id", Type: bigquery.StringFieldType, Required: true},
	{Name: "exported_at", Type: bigquery.TimestampFieldType, Required: true},
	{Name: "frame_id", Type: bigquery.StringFieldType, Required: true},
	{Name: "captured_at", Type: bigquery.TimestampFieldType},
	{Name: "kind", Type: bigquery.StringFieldType},
	{Name: "analyzed", Type: bigquery.BooleanFieldType},
	{Name: "gate_decision", Type: bigquery.StringFieldType},
	{Name: "suggestion_count", Type: bigquery.IntegerFieldType},
	{Name: "has_screenshot", Type: bigquery.BooleanFieldType},
}

var SuggestionsSchema = bigquery.Schema{
	{Name: "run_id", Type: bigquery.StringFieldType, Required: true},
	{Name: "exported_at", Type: bigquery.TimestampFieldType, Required: true},
	{Name: "suggestion_id", Type: bigquery.StringFieldType, Required: true},
	{Name: "title", Type: bigquery.StringFieldType},
	{Name: "status", Type: bigquery.StringFieldType},
	{Name: "support", Type: bigquery.FloatFieldType},
	{Name: "created_at", Type: bigquery.TimestampFieldType},
	{Name: "source_frame_count", Type: bigquery.IntegerFieldType},
}

// UseCase exports summaries
type UseCase struct {
	source Lister
	bq     adapter.BigQuery
	now    func() time.Time
}

// Option is a functional option for UseCase
type Option func(*UseCase)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(uc *UseCase) {
		uc.now = now
	}
}

// New creates a new export UseCase
func New(source Lister, bq adapter.BigQuery, opts ...Option) *UseCase {
	uc := &UseCase{
		source: source,
		bq:     bq,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Result describes one export run
type Result struct {
	RunID       string
	Frames      int
	Suggestions int
}

// Run writes the current summaries into datasetID, creating the tables on first use
func (u *UseCase) Run(ctx context.Context, datasetID string) (*Result, error) {
	if datasetID == "" {
		return nil, goerr.New("dataset is required")
	}

	frames, err := u.source.ListFrames(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list frames")
	}
	suggestions, err := u.source.ListSuggestions(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list suggestions")
	}

	run := runInfo{id: uuid.New().String(), at: u.now()}

	frameRows := make([]bigquery.ValueSaver, 0, len(frames))
	for _, f := range frames {
		frameRows = append(frameRows, &frameRow{run: run, summary: f})
	}
	suggestionRows := make([]bigquery.ValueSaver, 0, len(suggestions))
	for _, s := range suggestions {
		suggestionRows = append(suggestionRows, &suggestionRow{run: run, summary: s})
	}

	if err := u.write(ctx, datasetID, FramesTable, FramesSchema, frameRows); err != nil {
		return nil, err
	}
	if err := u.write(ctx, datasetID, SuggestionsTable, SuggestionsSchema, suggestionRows); err != nil {
		return nil, err
	}

	logging.From(ctx).Info("exported summaries",
		"run_id", run.id, "dataset", datasetID, "frames", len(frameRows), "suggestions", len(suggestionRows))

	return &Result{
		RunID:       run.id,
		Frames:      len(frameRows),
		Suggestions: len(suggestionRows),
	}, nil
}

func (u *UseCase) write(ctx context.Context, datasetID, table string, schema bigquery.Schema, rows []bigquery.ValueSaver) error {
	if err := u.bq.EnsureTable(ctx, datasetID, table, schema); err != nil {
		return goerr.Wrap(err, "failed to prepare export table", goerr.V("table", table))
	}
	if err := u.bq.Insert(ctx, datasetID, table, rows); err != nil {
		return goerr.Wrap(err, "failed to export rows", goerr.V("table", table))
	}
	return nil
}

type runInfo struct {
	id string
	at time.Time
}

type frameRow struct {
	run     runInfo
	summary *model.FrameSummary
}

func (r *frameRow) Save() (map[string]bigquery.Value, string, error) {
	return map[string]bigquery.Value{
		"run_id":           r.run.id,
		"exported_at":      r.run.at,
		"frame_id":         string(r.summary.ID),
		"captured_at":      time.UnixMilli(r.summary.Timestamp).UTC(),
		"kind":             string(r.summary.Kind),
		"analyzed":         r.summary.Analyzed,
		"gate_decision":    string(r.summary.GateDecision),
		"suggestion_count": r.summary.SuggestionCount,
		"has_screenshot":   r.summary.HasScreenshot,
	}, uuid.New().String(), nil
}

type suggestionRow struct {
	run     runInfo
	summary *model.SuggestionSummary
}

func (r *suggestionRow) Save() (map[string]bigquery.Value, string, error) {
	return map[string]bigquery.Value{
		"run_id":             r.run.id,
		"exported_at":        r.run.at,
		"suggestion_id":      string(r.summary.ID),
		"title":              r.summary.Title,
		"status":             r.summary.Status,
		"support":            r.summary.Support,
		"created_at":         time.UnixMilli(r.summary.CreatedAt).UTC(),
		"source_frame_count": r.summary.SourceFrameCount,
	}, uuid.New().String(), nil
}
