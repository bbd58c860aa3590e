package trace

import (
	"context"
	"sort"

	"github.com/m-mizutani/pipetrace/pkg/model"
)

// ListSuggestions returns a summary of every generated suggestion across all batches, newest batch
// first. Suggestions that only exist in later stages are not listed.
func (u *UseCase) ListSuggestions(ctx context.Context) ([]*model.SuggestionSummary, error) {
	snap, err := u.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	return buildIndex(snap).listSuggestions(), nil
}

func (idx *index) listSuggestions() []*model.SuggestionSummary {
	summaries := make([]*model.SuggestionSummary, 0, len(idx.generated))
	for _, id := range idx.generated {
		gen := idx.generatedByID[id]
		live := idx.liveByID[id]

		display := model.ResolveDisplay(live, gen.suggestion)

		summaries = append(summaries, &model.SuggestionSummary{
			ID:               id,
			Title:            display.Title,
			Status:           display.Status,
			Support:          model.ResolveSupport(live, scoredOf(idx.scoredByID[id]), gen.suggestion.Support),
			CreatedAt:        gen.batch.CreatedAt,
			SourceFrameCount: len(gen.suggestion.SourceFrameIDs),
		})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		if summaries[i].CreatedAt != summaries[j].CreatedAt {
			return summaries[i].CreatedAt > summaries[j].CreatedAt
		}
		return summaries[i].ID < summaries[j].ID
	})
	return summaries
}

// GetSuggestionTrace returns everything recorded about a suggestion, or nil when no generation batch
// contains it.
func (u *UseCase) GetSuggestionTrace(ctx context.Context, id model.SuggestionID) (*model.SuggestionTrace, error) {
	snap, err := u.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	return buildIndex(snap).suggestionTrace(id), nil
}

func (idx *index) suggestionTrace(id model.SuggestionID) *model.SuggestionTrace {
	gen, ok := idx.generatedByID[id]
	if !ok {
		return nil
	}

	live := idx.liveByID[id]
	scored := idx.scoredByID[id]

	trace := &model.SuggestionTrace{
		SuggestionID: id,
		Display:      model.ResolveDisplay(live, gen.suggestion),
		Support:      model.ResolveSupport(live, scoredOf(scored), gen.suggestion.Support),
		Generation: model.GenerationTrace{
			BatchID:    gen.batch.BatchID,
			CreatedAt:  gen.batch.CreatedAt,
			Suggestion: gen.suggestion,
		},
		Scoring:      scoringTrace(scored),
		Dedup:        dedupTrace(idx.dedupByID[id]),
		Live:         live,
		SourceFrames: make([]*model.FrameSummary, 0, len(gen.suggestion.SourceFrameIDs)),
	}

	for _, frameID := range gen.suggestion.SourceFrameIDs {
		// Only frames the frame lister knows about resolve to a summary
		if _, ok := idx.frames[frameID]; !ok {
			continue
		}
		trace.SourceFrames = append(trace.SourceFrames, idx.frameSummary(frameID))
	}

	return trace
}
