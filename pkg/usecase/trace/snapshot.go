package trace

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/pipetrace/pkg/model"
	"github.com/m-mizutani/pipetrace/pkg/repository"
	"github.com/m-mizutani/pipetrace/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

// snapshot is the raw content of every store as of one request
type snapshot struct {
	analyses    []*model.FrameAnalysis
	gates       []*model.GateResult
	generations []*model.GenerationBatch
	scorings    []*model.ScoringResult
	dedups      []*model.DedupResult
	live        []*model.LiveSuggestion
	screenshots []string
}

// loadSnapshot reads all stores concurrently. A store that fails to load is logged and treated as empty;
// only cancellation of ctx fails the request.
func (u *UseCase) loadSnapshot(ctx context.Context) (*snapshot, error) {
	var s snapshot
	g, gctx := errgroup.WithContext(ctx)

	loadStage(gctx, g, "frame_analysis", u.stores.Analyses, &s.analyses)
	loadStage(gctx, g, "concentration_gate", u.stores.Gates, &s.gates)
	loadStage(gctx, g, "suggestion_generation", u.stores.Generations, &s.generations)
	loadStage(gctx, g, "scoring_filtering", u.stores.Scorings, &s.scorings)
	loadStage(gctx, g, "deduplication", u.stores.Dedups, &s.dedups)

	if u.stores.Screenshots != nil {
		g.Go(func() error {
			names, err := u.stores.Screenshots.List(gctx)
			if err != nil {
				logging.From(gctx).Warn("failed to list screenshots, treating as empty", "error", err)
				return nil
			}
			s.screenshots = names
			return nil
		})
	}

	if u.live != nil {
		g.Go(func() error {
			live, err := u.live.ListSuggestions(gctx)
			if err != nil {
				logging.From(gctx).Warn("failed to read live state, using pipeline snapshots only", "error", err)
				return nil
			}
			s.live = live
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, goerr.Wrap(err, "trace request canceled")
	}

	return &s, nil
}

func loadStage[T any](ctx context.Context, g *errgroup.Group, name string, stage repository.Stage[T], dst *[]*T) {
	if stage == nil {
		return
	}

	g.Go(func() error {
		records, err := stage.LoadAll(ctx)
		if err != nil {
			logging.From(ctx).Warn("failed to load stage, treating as empty", "stage", name, "error", err)
			return nil
		}
		logging.From(ctx).Debug("stage loaded", "stage", name, "records", len(records))
		*dst = records
		return nil
	})
}
