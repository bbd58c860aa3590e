package repository

import (
	"context"

	"github.com/m-mizutani/pipetrace/pkg/model"
)

// Assets is the screenshot store
type Assets interface {
	// List returns the names of all assets
	List(ctx context.Context) ([]string, error)

	// Get returns the contents of the named asset. A missing asset yields an error wrapping ErrNotFound.
	Get(ctx context.Context, name string) ([]byte, error)
}

type sourceAssets struct {
	src Source
	dir string
}

// NewAssets creates an Assets store over dir of src
func NewAssets(src Source, dir string) Assets {
	return &sourceAssets{src: src, dir: dir}
}

func (a *sourceAssets) List(ctx context.Context) ([]string, error) {
	return a.src.List(ctx, a.dir)
}

func (a *sourceAssets) Get(ctx context.Context, name string) ([]byte, error) {
	return a.src.Read(ctx, a.dir, name)
}

// Stores bundles the read side of all five pipeline stages and the screenshot store
type Stores struct {
	Analyses    Stage[model.FrameAnalysis]
	Gates       Stage[model.GateResult]
	Generations Stage[model.GenerationBatch]
	Scorings    Stage[model.ScoringResult]
	Dedups      Stage[model.DedupResult]
	Screenshots Assets
}

// NewStores creates file-per-record stores for every directory of layout within src
func NewStores(src Source, layout Layout) *Stores {
	return &Stores{
		Analyses:    NewStage[model.FrameAnalysis](src, layout.FrameAnalysis),
		Gates:       NewStage[model.GateResult](src, layout.ConcentrationGate),
		Generations: NewStage[model.GenerationBatch](src, layout.SuggestionGeneration),
		Scorings:    NewStage[model.ScoringResult](src, layout.ScoringFiltering),
		Dedups:      NewStage[model.DedupResult](src, layout.Deduplication),
		Screenshots: NewAssets(src, layout.Screenshots),
	}
}
