package export_test

import (
	"context"
	"testing"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/pipetrace/pkg/model"
	"github.com/m-mizutani/pipetrace/pkg/usecase/export"
)

type mockLister struct {
	frames      []*model.FrameSummary
	suggestions []*model.SuggestionSummary
}

func (m *mockLister) ListFrames(ctx context.Context) ([]*model.FrameSummary, error) {
	return m.frames, nil
}

func (m *mockLister) ListSuggestions(ctx context.Context) ([]*model.SuggestionSummary, error) {
	return m.suggestions, nil
}

type mockBigQuery struct {
	tables   map[string]bigquery.Schema
	rows     map[string][]bigquery.ValueSaver
	failWith error
}

func newMockBigQuery() *mockBigQuery {
	return &mockBigQuery{
		tables: make(map[string]bigquery.Schema),
		rows:   make(map[string][]bigquery.ValueSaver),
	}
}

func (m *mockBigQuery) EnsureTable(ctx context.Context, datasetID, tableID string, schema bigquery.Schema) error {
	m.tables[datasetID+"."+tableID] = schema
	return nil
}

func (m *mockBigQuery) Insert(ctx context.Context, datasetID, tableID string, rows []bigquery.ValueSaver) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.rows[datasetID+"."+tableID] = append(m.rows[datasetID+"."+tableID], rows...)
	return nil
}

func TestRun(t *testing.T) {
	lister := &mockLister{
		frames: []*model.FrameSummary{
			{ID: "frame_1700000000000_before", Timestamp: 1700000000000, Kind: model.CaptureKindBefore, Analyzed: true, GateDecision: model.GateDecisionContinue, SuggestionCount: 2},
		},
		suggestions: []*model.SuggestionSummary{
			{ID: "s1", Title: "Batch your email", Status: "accepted", Support: 0.9, CreatedAt: 1700000010000, SourceFrameCount: 1},
			{ID: "s2", Title: "Stretch", Status: model.StatusGenerated, Support: 0.3, CreatedAt: 1700000010000},
		},
	}
	bq := newMockBigQuery()
	exportedAt := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	uc := export.New(lister, bq, export.WithClock(func() time.Time { return exportedAt }))
	result, err := uc.Run(context.Background(), "eval")
	gt.NoError(t, err)
	gt.Equal(t, result.Frames, 1)
	gt.Equal(t, result.Suggestions, 2)
	gt.NotEqual(t, result.RunID, "")

	gt.Map(t, bq.tables).HasKey("eval.frames")
	gt.Map(t, bq.tables).HasKey("eval.suggestions")
	gt.A(t, bq.rows["eval.suggestions"]).Length(2)

	row, insertID, err := bq.rows["eval.frames"][0].Save()
	gt.NoError(t, err)
	gt.NotEqual(t, insertID, "")
	gt.Equal(t, row["run_id"], bigquery.Value(result.RunID))
	gt.Equal(t, row["exported_at"], bigquery.Value(exportedAt))
	gt.Equal(t, row["frame_id"], bigquery.Value("frame_1700000000000_before"))
	gt.Equal(t, row["captured_at"], bigquery.Value(time.UnixMilli(1700000000000).UTC()))
	gt.Equal(t, row["gate_decision"], bigquery.Value("CONTINUE"))

	row2, insertID2, err := bq.rows["eval.suggestions"][1].Save()
	gt.NoError(t, err)
	gt.NotEqual(t, insertID2, insertID)
	gt.Equal(t, row2["status"], bigquery.Value(model.StatusGenerated))
	gt.Equal(t, row2["support"], bigquery.Value(0.3))
}

func TestRunErrors(t *testing.T) {
	_, err := export.New(&mockLister{}, newMockBigQuery()).Run(context.Background(), "")
	gt.Error(t, err)

	bq := newMockBigQuery()
	bq.failWith = goerr.New("quota exceeded")
	_, err = export.New(&mockLister{frames: []*model.FrameSummary{{ID: "f"}}}, bq).Run(context.Background(), "eval")
	gt.Error(t, err)
}
