package trace

import (
	"sort"
	"strings"

	"github.com/m-mizutani/pipetrace/pkg/model"
)

type generatedEntry struct {
	batch      *model.GenerationBatch
	suggestion *model.GeneratedSuggestion
}

type scoredEntry struct {
	batch  *model.ScoringResult
	scored *model.ScoredSuggestion
}

type dedupEntry struct {
	batch        *model.DedupResult
	unique       bool
	similarities []*model.Similarity
}

// index holds the joins over one snapshot
type index struct {
	analysisByFrame map[model.FrameID]*model.FrameAnalysis
	gateByFrame     map[model.FrameID]*model.GateResult

	generatedByID map[model.SuggestionID]*generatedEntry
	// generated lists suggestion IDs in batch order
	generated []model.SuggestionID

	scoredByID map[model.SuggestionID]*scoredEntry
	dedupByID  map[model.SuggestionID]*dedupEntry
	liveByID   map[model.SuggestionID]*model.LiveSuggestion

	// contributionsByFrame inverts GeneratedSuggestion.SourceFrameIDs
	contributionsByFrame map[model.FrameID][]model.SuggestionID

	screenshotByFrame map[model.FrameID]bool
	// frames is the union of frames observed by analysis, gate or screenshot asset
	frames map[model.FrameID]struct{}
}

// screenshotExts lists asset extensions in probe priority order
var screenshotExts = []string{".jpg", ".png", ".jpeg"}

func buildIndex(s *snapshot) *index {
	idx := &index{
		analysisByFrame:      make(map[model.FrameID]*model.FrameAnalysis, len(s.analyses)),
		gateByFrame:          make(map[model.FrameID]*model.GateResult, len(s.gates)),
		generatedByID:        make(map[model.SuggestionID]*generatedEntry),
		scoredByID:           make(map[model.SuggestionID]*scoredEntry),
		dedupByID:            make(map[model.SuggestionID]*dedupEntry),
		liveByID:             make(map[model.SuggestionID]*model.LiveSuggestion, len(s.live)),
		contributionsByFrame: make(map[model.FrameID][]model.SuggestionID),
		screenshotByFrame:    make(map[model.FrameID]bool),
		frames:               make(map[model.FrameID]struct{}),
	}

	for _, a := range s.analyses {
		if a == nil || a.FrameID == "" {
			continue
		}
		idx.analysisByFrame[a.FrameID] = a
		idx.frames[a.FrameID] = struct{}{}
	}

	for _, g := range s.gates {
		if g == nil || g.FrameID == "" {
			continue
		}
		idx.gateByFrame[g.FrameID] = g
		idx.frames[g.FrameID] = struct{}{}
	}

	for _, name := range s.screenshots {
		if id, ok := frameIDFromAsset(name); ok {
			idx.screenshotByFrame[id] = true
			idx.frames[id] = struct{}{}
		}
	}

	idx.indexGenerations(s.generations)
	idx.indexScorings(s.scorings)
	idx.indexDedups(s.dedups)

	for _, l := range s.live {
		if l != nil && l.ID != "" {
			idx.liveByID[l.ID] = l
		}
	}

	return idx
}

func (idx *index) indexGenerations(batches []*model.GenerationBatch) {
	batches = sortedBy(batches, func(b *model.GenerationBatch) (int64, string) { return b.CreatedAt, b.BatchID })

	for _, batch := range batches {
		for _, sg := range batch.Suggestions {
			if sg == nil || sg.SuggestionID == "" {
				continue
			}
			// IDs are unique across batches; a repeated ID keeps its first record
			if _, exists := idx.generatedByID[sg.SuggestionID]; exists {
				continue
			}
			idx.generatedByID[sg.SuggestionID] = &generatedEntry{batch: batch, suggestion: sg}
			idx.generated = append(idx.generated, sg.SuggestionID)

			seen := make(map[model.FrameID]bool, len(sg.SourceFrameIDs))
			for _, frameID := range sg.SourceFrameIDs {
				if seen[frameID] {
					continue
				}
				seen[frameID] = true
				idx.contributionsByFrame[frameID] = append(idx.contributionsByFrame[frameID], sg.SuggestionID)
			}
		}
	}
}

// indexScorings flattens all scoring batches; a suggestion scored twice keeps the latest batch
func (idx *index) indexScorings(batches []*model.ScoringResult) {
	batches = sortedBy(batches, func(b *model.ScoringResult) (int64, string) { return b.CreatedAt, b.BatchID })

	for _, batch := range batches {
		for _, sc := range batch.ScoredSuggestions {
			if sc == nil || sc.SuggestionID == "" {
				continue
			}
			idx.scoredByID[sc.SuggestionID] = &scoredEntry{batch: batch, scored: sc}
		}
	}
}

func (idx *index) indexDedups(batches []*model.DedupResult) {
	batches = sortedBy(batches, func(b *model.DedupResult) (int64, string) { return b.CreatedAt, b.BatchID })

	for _, batch := range batches {
		record := func(id model.SuggestionID, unique bool) {
			entry := &dedupEntry{batch: batch, unique: unique, similarities: []*model.Similarity{}}
			for _, sim := range batch.Similarities {
				if sim != nil && sim.Involves(id) {
					entry.similarities = append(entry.similarities, sim)
				}
			}
			idx.dedupByID[id] = entry
		}

		for _, id := range batch.UniqueSuggestionIDs {
			record(id, true)
		}
		for _, id := range batch.DuplicatesRemoved {
			record(id, false)
		}
	}
}

// knownFrame reports whether any index mentions the frame
func (idx *index) knownFrame(id model.FrameID) bool {
	if _, ok := idx.frames[id]; ok {
		return true
	}
	_, ok := idx.contributionsByFrame[id]
	return ok
}

// frameIDFromAsset maps a screenshot asset name to its frame ID
func frameIDFromAsset(name string) (model.FrameID, bool) {
	if strings.HasPrefix(name, "_") {
		return "", false
	}
	for _, ext := range screenshotExts {
		if strings.HasSuffix(name, ext) && len(name) > len(ext) {
			return model.FrameID(strings.TrimSuffix(name, ext)), true
		}
	}
	return "", false
}

// sortedBy returns non-nil items ordered by (time, id) ascending, leaving the input untouched
func sortedBy[T any](items []*T, key func(*T) (int64, string)) []*T {
	out := make([]*T, 0, len(items))
	for _, item := range items {
		if item != nil {
			out = append(out, item)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ti, si := key(out[i])
		tj, sj := key(out[j])
		if ti != tj {
			return ti < tj
		}
		return si < sj
	})
	return out
}
