package repository_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/pipetrace/pkg/model"
	"github.com/m-mizutani/pipetrace/pkg/repository"
	"github.com/m-mizutani/pipetrace/pkg/utils/logging"
)

func writeJSON(t *testing.T, path string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	gt.NoError(t, err)
	gt.NoError(t, os.WriteFile(path, data, 0644))
}

func TestStageLoadAllSkipsCorruptRecord(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "concentration_gate")
	gt.NoError(t, os.MkdirAll(dir, 0755))

	for i := 0; i < 9; i++ {
		id := model.FrameID(fmt.Sprintf("frame_170000000000%d_periodic", i))
		writeJSON(t, filepath.Join(dir, string(id)+".json"), &model.GateResult{
			FrameID:    id,
			Decision:   model.GateDecisionContinue,
			Importance: 0.5,
		})
	}
	gt.NoError(t, os.WriteFile(filepath.Join(dir, "frame_broken.json"), []byte(`{"frameId": "frame_`), 0644))
	// Reserved and foreign files are ignored without a warning
	gt.NoError(t, os.WriteFile(filepath.Join(dir, "_index.json"), []byte(`not json`), 0644))
	gt.NoError(t, os.WriteFile(filepath.Join(dir, "README.txt"), []byte(`hello`), 0644))

	buf := &bytes.Buffer{}
	ctx := logging.With(context.Background(), logging.New("info", buf))

	stage := repository.NewStage[model.GateResult](repository.NewFileSource(root), "concentration_gate")
	records, err := stage.LoadAll(ctx)
	gt.NoError(t, err)
	gt.A(t, records).Length(9)
	gt.Equal(t, strings.Count(buf.String(), "skip unreadable stage record"), 1)
	gt.S(t, buf.String()).Contains("frame_broken.json")

	for _, r := range records {
		gt.Equal(t, r.Decision, model.GateDecisionContinue)
	}
}

func TestStageLoadAllMissingDirectory(t *testing.T) {
	stage := repository.NewStage[model.FrameAnalysis](repository.NewFileSource(t.TempDir()), "frame_analysis")
	records, err := stage.LoadAll(context.Background())
	gt.NoError(t, err)
	gt.A(t, records).Length(0)
}

func TestStageLoadAllMemorySource(t *testing.T) {
	src := repository.NewMemorySource()
	src.Put("suggestion_generation", "batch_1.json", []byte(`{
		"batchId": "batch_1",
		"createdAt": 1700000000000,
		"suggestions": [
			{"suggestionId": "s1", "title": "Take a break", "support": 6, "sourceFrameIds": ["frame_1_periodic"]}
		]
	}`))
	src.Put("suggestion_generation", "batch_2.json", []byte(`[]`))

	buf := &bytes.Buffer{}
	ctx := logging.With(context.Background(), logging.New("info", buf))

	stage := repository.NewStage[model.GenerationBatch](src, "suggestion_generation")
	batches, err := stage.LoadAll(ctx)
	gt.NoError(t, err)
	gt.A(t, batches).Length(1)
	gt.Equal(t, batches[0].BatchID, "batch_1")
	gt.A(t, batches[0].Suggestions).Length(1)
	gt.Equal(t, batches[0].Suggestions[0].SourceFrameIDs[0], model.FrameID("frame_1_periodic"))
	gt.S(t, buf.String()).Contains("batch_2.json")
}

func TestMemoryStage(t *testing.T) {
	stage := repository.NewMemoryStage(&model.GateResult{FrameID: "frame_1_periodic"})
	stage.Add(&model.GateResult{FrameID: "frame_2_periodic"})

	records, err := stage.LoadAll(context.Background())
	gt.NoError(t, err)
	gt.A(t, records).Length(2)
}
