package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/pipetrace/pkg/model"
)

const (
	testFrame model.FrameID = "frame_1700000000000_before"
	testLater model.FrameID = "frame_1700000060000_periodic"
)

func writeRecord(t *testing.T, root, dir, name string, v any) {
	t.Helper()
	gt.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0o755))
	data, err := json.Marshal(v)
	gt.NoError(t, err)
	gt.NoError(t, os.WriteFile(filepath.Join(root, dir, name), data, 0o644))
}

func setupRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	writeRecord(t, root, "frame_analysis", string(testFrame)+".json",
		&model.FrameAnalysis{FrameID: testFrame, Description: "writing tests"})
	writeRecord(t, root, "concentration_gate", string(testFrame)+".json",
		&model.GateResult{FrameID: testFrame, Decision: model.GateDecisionContinue})
	writeRecord(t, root, "frame_analysis", string(testLater)+".json",
		&model.FrameAnalysis{FrameID: testLater})
	writeRecord(t, root, "suggestion_generation", "gen_1.json", &model.GenerationBatch{
		BatchID:   "gen_1",
		CreatedAt: 1700000070000,
		Suggestions: []*model.GeneratedSuggestion{
			{SuggestionID: "s1", Title: "Run tests in watch mode", Support: 4, SourceFrameIDs: []model.FrameID{testFrame}},
		},
	})
	writeRecord(t, root, "scoring_filtering", "score_1.json", &model.ScoringResult{
		BatchID:   "score_1",
		CreatedAt: 1700000071000,
		ScoredSuggestions: []*model.ScoredSuggestion{
			{SuggestionID: "ghost", Scores: model.Scores{Combined: 0.3}},
		},
	})
	writeRecord(t, root, "", "state.json", map[string]any{
		"suggestions": []map[string]any{
			{"id": "s1", "title": "Use watch mode", "status": "accepted"},
		},
	})

	gt.NoError(t, os.MkdirAll(filepath.Join(root, "screenshots"), 0o755))
	gt.NoError(t, os.WriteFile(filepath.Join(root, "screenshots", string(testFrame)+".png"), []byte("png-bytes"), 0o644))

	return root
}

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	app := newApp()
	app.Writer = &buf
	app.ErrWriter = &buf
	err := app.Run(context.Background(), append([]string{"pipetrace"}, args...))
	return buf.String(), err
}

func TestFramesCommand(t *testing.T) {
	root := setupRoot(t)

	out, err := runApp(t, "frames", "--root", root, "--log-level", "error")
	gt.NoError(t, err)
	gt.S(t, out).Contains(string(testLater) + "\t2023-11-14T22:14:20Z\tperiodic\tanalyzed\t-\t0")
	gt.S(t, out).Contains(string(testFrame) + "\t2023-11-14T22:13:20Z\tbefore\tanalyzed\tCONTINUE\t1")
}

func TestSuggestionsCommandUsesLiveState(t *testing.T) {
	root := setupRoot(t)

	out, err := runApp(t, "suggestions", "--root", root, "--log-level", "error")
	gt.NoError(t, err)
	gt.S(t, out).Contains("s1")
	gt.S(t, out).Contains("accepted")
	gt.S(t, out).Contains("Use watch mode")

	out, err = runApp(t, "suggestions", "--root", root, "--live-state", "none", "--log-level", "error")
	gt.NoError(t, err)
	gt.S(t, out).Contains("generated")
	gt.S(t, out).Contains("Run tests in watch mode")
}

func TestSuggestionCommand(t *testing.T) {
	root := setupRoot(t)

	out, err := runApp(t, "suggestion", "--root", root, "--suggestion-id", "s1", "--log-level", "error")
	gt.NoError(t, err)

	var tr model.SuggestionTrace
	gt.NoError(t, json.Unmarshal([]byte(out), &tr))
	gt.Equal(t, tr.Title, "Use watch mode")
	gt.Equal(t, tr.Support, 0.4)
	gt.A(t, tr.SourceFrames).Length(1)

	_, err = runApp(t, "suggestion", "--root", root, "--suggestion-id", "missing", "--log-level", "error")
	gt.Error(t, err)
	gt.True(t, errors.Is(err, errSuggestionNotFound))
}

func TestFrameCommandNotFound(t *testing.T) {
	root := setupRoot(t)

	_, err := runApp(t, "frame", "--root", root, "--frame-id", "frame_1_after", "--log-level", "error")
	gt.Error(t, err)
	gt.True(t, errors.Is(err, errFrameNotFound))
}

func TestAnomaliesCommand(t *testing.T) {
	root := setupRoot(t)

	out, err := runApp(t, "anomalies", "--root", root, "--json", "--log-level", "error")
	gt.NoError(t, err)

	var anomalies []*model.Anomaly
	gt.NoError(t, json.Unmarshal([]byte(out), &anomalies))
	gt.A(t, anomalies).Length(1)
	gt.Equal(t, anomalies[0].Kind, model.AnomalyOrphanScore)
	gt.Equal(t, anomalies[0].Subject, "ghost")
}

func TestAnomaliesCommandWithPolicy(t *testing.T) {
	root := setupRoot(t)
	policyDir := t.TempDir()
	gt.NoError(t, os.WriteFile(filepath.Join(policyDir, "skip.rego"), []byte(`package integrity

anomaly contains {"kind": "ungated_frame", "subject": f.id, "message": "analyzed frame never reached the gate"} if {
	some f in input.frames
	f.analyzed
	not f.gateDecision
}
`), 0o644))

	out, err := runApp(t, "anomalies", "--root", root, "--policy-dir", policyDir, "--log-level", "error")
	gt.NoError(t, err)
	gt.S(t, out).Contains("orphan_score\tghost")
	gt.S(t, out).Contains("ungated_frame\t" + string(testLater))
}

func TestScreenshotCommand(t *testing.T) {
	root := setupRoot(t)

	out, err := runApp(t, "screenshot", "--root", root, "--frame-id", string(testFrame), "--log-level", "error")
	gt.NoError(t, err)
	gt.S(t, out).Contains("data:image/png;base64,")

	output := filepath.Join(t.TempDir(), "shot.png")
	_, err = runApp(t, "screenshot", "--root", root, "--frame-id", string(testFrame), "--output", output, "--log-level", "error")
	gt.NoError(t, err)
	data, err := os.ReadFile(output)
	gt.NoError(t, err)
	gt.Equal(t, string(data), "png-bytes")

	_, err = runApp(t, "screenshot", "--root", root, "--frame-id", string(testLater), "--log-level", "error")
	gt.True(t, errors.Is(err, errScreenshotNotFound))
}

func TestLayoutConfig(t *testing.T) {
	root := t.TempDir()
	writeRecord(t, root, "analyses", string(testFrame)+".json", &model.FrameAnalysis{FrameID: testFrame})

	configPath := filepath.Join(t.TempDir(), "layout.yaml")
	gt.NoError(t, os.WriteFile(configPath, []byte("frame_analysis: analyses\n"), 0o644))

	out, err := runApp(t, "frames", "--root", root, "--config", configPath, "--log-level", "error")
	gt.NoError(t, err)
	gt.S(t, out).Contains(string(testFrame))
}

func TestUnsupportedBackend(t *testing.T) {
	_, err := runApp(t, "frames", "--backend", "ftp", "--log-level", "error")
	gt.Error(t, err)

	_, err = runApp(t, "frames", "--live-state", "redis", "--log-level", "error")
	gt.Error(t, err)
}

func TestShellExec(t *testing.T) {
	root := setupRoot(t)
	cfg := config{root: root, backend: backendFS, liveState: liveStateFile, logLevel: "error"}
	ctx := cfg.setupLogger(context.Background())
	uc, closer, err := cfg.newTrace(ctx)
	gt.NoError(t, err)
	defer closer()

	var buf bytes.Buffer
	sh := &shell{tracer: uc, w: &buf}

	quit, err := sh.exec(ctx, "frames")
	gt.NoError(t, err)
	gt.False(t, quit)
	gt.S(t, buf.String()).Contains(string(testFrame))

	buf.Reset()
	_, err = sh.exec(ctx, "suggestion s1")
	gt.NoError(t, err)
	gt.S(t, buf.String()).Contains(`"title": "Use watch mode"`)

	_, err = sh.exec(ctx, "frame")
	gt.Error(t, err)

	_, err = sh.exec(ctx, "frame nope")
	gt.True(t, errors.Is(err, errFrameNotFound))

	_, err = sh.exec(ctx, "launch")
	gt.Error(t, err)

	quit, err = sh.exec(ctx, "  ")
	gt.NoError(t, err)
	gt.False(t, quit)

	quit, err = sh.exec(ctx, "exit")
	gt.NoError(t, err)
	gt.True(t, quit)
}

func TestDecodeDataURI(t *testing.T) {
	data, err := decodeDataURI("data:image/jpeg;base64,aGVsbG8=")
	gt.NoError(t, err)
	gt.Equal(t, string(data), "hello")

	_, err = decodeDataURI("hello")
	gt.Error(t, err)
}
