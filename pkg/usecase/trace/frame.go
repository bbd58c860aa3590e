package trace

import (
	"context"
	"sort"

	"github.com/m-mizutani/pipetrace/pkg/model"
)

// ListFrames returns a summary of every frame observed by the analysis stage, the gate stage or the
// screenshot store, most recent first. Captured frames that the pipeline has not reached yet are listed
// too.
func (u *UseCase) ListFrames(ctx context.Context) ([]*model.FrameSummary, error) {
	snap, err := u.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	return buildIndex(snap).listFrames(), nil
}

func (idx *index) listFrames() []*model.FrameSummary {
	summaries := make([]*model.FrameSummary, 0, len(idx.frames))
	for id := range idx.frames {
		summaries = append(summaries, idx.frameSummary(id))
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Timestamp != summaries[j].Timestamp {
			return summaries[i].Timestamp > summaries[j].Timestamp
		}
		return summaries[i].ID < summaries[j].ID
	})
	return summaries
}

func (idx *index) frameSummary(id model.FrameID) *model.FrameSummary {
	meta := model.ParseFrameID(id)
	summary := &model.FrameSummary{
		ID:              id,
		Timestamp:       meta.Timestamp,
		Kind:            meta.Kind,
		SuggestionCount: len(idx.contributionsByFrame[id]),
		HasScreenshot:   idx.screenshotByFrame[id],
	}
	if _, ok := idx.analysisByFrame[id]; ok {
		summary.Analyzed = true
	}
	if gate, ok := idx.gateByFrame[id]; ok {
		summary.GateDecision = gate.Decision
	}
	return summary
}

// GetFrameTrace returns everything recorded about a frame, or nil when no stage and no suggestion
// mentions it. A frame known only through its screenshot or a suggestion's source list still gets a
// trace, with nil analysis and gate.
func (u *UseCase) GetFrameTrace(ctx context.Context, frameID model.FrameID) (*model.FrameTrace, error) {
	snap, err := u.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	return buildIndex(snap).frameTrace(frameID), nil
}

func (idx *index) frameTrace(frameID model.FrameID) *model.FrameTrace {
	if !idx.knownFrame(frameID) {
		return nil
	}

	meta := model.ParseFrameID(frameID)
	contributions := idx.contributionsByFrame[frameID]

	trace := &model.FrameTrace{
		FrameID:       frameID,
		Timestamp:     meta.Timestamp,
		Kind:          meta.Kind,
		Analysis:      idx.analysisByFrame[frameID],
		Gate:          idx.gateByFrame[frameID],
		ContributedTo: make([]model.SuggestionID, 0, len(contributions)),
		Suggestions:   make([]*model.ResolvedSuggestion, 0, len(contributions)),
	}

	for _, id := range contributions {
		trace.ContributedTo = append(trace.ContributedTo, id)
		if resolved := idx.resolveSuggestion(id); resolved != nil {
			trace.Suggestions = append(trace.Suggestions, resolved)
		}
	}

	return trace
}

// resolveSuggestion joins generation, scoring, dedup and live data for one suggestion
func (idx *index) resolveSuggestion(id model.SuggestionID) *model.ResolvedSuggestion {
	gen, ok := idx.generatedByID[id]
	if !ok {
		return nil
	}

	live := idx.liveByID[id]
	scored := idx.scoredByID[id]

	resolved := &model.ResolvedSuggestion{
		ID:              id,
		Display:         model.ResolveDisplay(live, gen.suggestion),
		Support:         model.ResolveSupport(live, scoredOf(scored), gen.suggestion.Support),
		RawSupport:      gen.suggestion.Support,
		SupportEvidence: gen.suggestion.SupportEvidence,
		GenerationBatch: gen.batch.BatchID,
		Scoring:         scoringTrace(scored),
		Dedup:           dedupTrace(idx.dedupByID[id]),
		Live:            live != nil,
	}
	return resolved
}

func scoredOf(e *scoredEntry) *model.ScoredSuggestion {
	if e == nil {
		return nil
	}
	return e.scored
}

func scoringTrace(e *scoredEntry) *model.ScoringTrace {
	if e == nil {
		return nil
	}
	return &model.ScoringTrace{
		BatchID:   e.batch.BatchID,
		CreatedAt: e.batch.CreatedAt,
		Scores:    e.scored.Scores,
		Filter:    e.scored.Filter,
	}
}

func dedupTrace(e *dedupEntry) *model.DedupTrace {
	if e == nil {
		return nil
	}
	return &model.DedupTrace{
		BatchID:      e.batch.BatchID,
		CreatedAt:    e.batch.CreatedAt,
		IsUnique:     e.unique,
		Similarities: e.similarities,
	}
}
