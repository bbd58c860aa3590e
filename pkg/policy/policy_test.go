package policy_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/pipetrace/pkg/model"
	"github.com/m-mizutani/pipetrace/pkg/policy"
)

const lowImportancePolicy = `package integrity

anomaly contains {
	"kind": "low_importance_continue",
	"subject": g.frameId,
	"message": "gate continued a frame below 0.2 importance",
} if {
	some g in input.gates
	g.decision == "CONTINUE"
	g.importance < 0.2
}

anomaly contains {
	"subject": s.id,
	"message": "suggestion without source frames",
} if {
	some s in input.suggestions
	s.sourceFrameCount == 0
}
`

func TestEvaluate(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	gt.NoError(t, os.WriteFile(filepath.Join(dir, "integrity.rego"), []byte(lowImportancePolicy), 0644))

	p, err := policy.Load(ctx, dir)
	gt.NoError(t, err)
	gt.NotNil(t, p)

	input := map[string]any{
		"gates": []*model.GateResult{
			{FrameID: "frame_1_periodic", Decision: model.GateDecisionContinue, Importance: 0.1},
			{FrameID: "frame_2_periodic", Decision: model.GateDecisionContinue, Importance: 0.8},
			{FrameID: "frame_3_periodic", Decision: model.GateDecisionSkip, Importance: 0.05},
		},
		"suggestions": []*model.SuggestionSummary{
			{ID: "s1", SourceFrameCount: 0},
			{ID: "s2", SourceFrameCount: 2},
		},
	}

	anomalies, err := p.Evaluate(ctx, input)
	gt.NoError(t, err)
	gt.A(t, anomalies).Length(2)

	kinds := map[model.AnomalyKind]string{}
	for _, a := range anomalies {
		kinds[a.Kind] = a.Subject
	}
	gt.Equal(t, kinds["low_importance_continue"], "frame_1_periodic")
	gt.Equal(t, kinds[model.AnomalyPolicy], "s1")
}

func TestLoadEmptyDirectory(t *testing.T) {
	p, err := policy.Load(context.Background(), t.TempDir())
	gt.NoError(t, err)
	gt.True(t, p == nil)

	anomalies, err := p.Evaluate(context.Background(), map[string]any{})
	gt.NoError(t, err)
	gt.A(t, anomalies).Length(0)
}

func TestLoadInvalidPolicy(t *testing.T) {
	dir := t.TempDir()
	gt.NoError(t, os.WriteFile(filepath.Join(dir, "broken.rego"), []byte("package integrity\n\nanomaly contains {"), 0644))

	_, err := policy.Load(context.Background(), dir)
	gt.Error(t, err)
}
