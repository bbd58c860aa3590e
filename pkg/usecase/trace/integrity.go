package trace

import (
	"context"
	"fmt"
	"sort"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/pipetrace/pkg/model"
)

// CheckIntegrity reports cross-stage inconsistencies left by producer races. Traces and listings are
// unaffected by what it finds: an orphaned record simply never appears in a join that needs its
// generation record.
func (u *UseCase) CheckIntegrity(ctx context.Context) ([]*model.Anomaly, error) {
	snap, err := u.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	idx := buildIndex(snap)

	anomalies := idx.builtinAnomalies(snap)

	if u.policy != nil {
		found, err := u.policy.Evaluate(ctx, policyInput(snap, idx))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to evaluate integrity policy")
		}
		anomalies = append(anomalies, found...)
	}

	sort.SliceStable(anomalies, func(i, j int) bool {
		if anomalies[i].Kind != anomalies[j].Kind {
			return anomalies[i].Kind < anomalies[j].Kind
		}
		return anomalies[i].Subject < anomalies[j].Subject
	})
	return anomalies, nil
}

func (idx *index) builtinAnomalies(snap *snapshot) []*model.Anomaly {
	var anomalies []*model.Anomaly

	for id, e := range idx.scoredByID {
		if _, ok := idx.generatedByID[id]; !ok {
			anomalies = append(anomalies, &model.Anomaly{
				Kind:    model.AnomalyOrphanScore,
				Subject: string(id),
				Message: fmt.Sprintf("scoring batch %s scored a suggestion with no generation record", e.batch.BatchID),
			})
		}
	}

	for id, e := range idx.dedupByID {
		if _, ok := idx.generatedByID[id]; !ok {
			anomalies = append(anomalies, &model.Anomaly{
				Kind:    model.AnomalyOrphanDedup,
				Subject: string(id),
				Message: fmt.Sprintf("dedup batch %s lists a suggestion with no generation record", e.batch.BatchID),
			})
		}
	}

	for _, batch := range snap.dedups {
		if batch == nil {
			continue
		}
		members := make(map[model.SuggestionID]bool)
		for _, id := range batch.UniqueSuggestionIDs {
			members[id] = true
		}
		for _, id := range batch.DuplicatesRemoved {
			members[id] = true
		}
		for _, sim := range batch.Similarities {
			if sim == nil {
				continue
			}
			for _, id := range []model.SuggestionID{sim.SuggestionID1, sim.SuggestionID2} {
				if !members[id] {
					anomalies = append(anomalies, &model.Anomaly{
						Kind:    model.AnomalyForeignSimilarity,
						Subject: string(id),
						Message: fmt.Sprintf("dedup batch %s compares a suggestion outside its run", batch.BatchID),
					})
				}
			}
		}
	}

	for _, id := range idx.generated {
		for _, frameID := range idx.generatedByID[id].suggestion.SourceFrameIDs {
			if _, ok := idx.frames[frameID]; !ok {
				anomalies = append(anomalies, &model.Anomaly{
					Kind:    model.AnomalyDanglingFrame,
					Subject: string(id),
					Message: fmt.Sprintf("source frame %s is unknown to analysis, gate and screenshot stores", frameID),
				})
			}
		}
	}

	return anomalies
}

// policyInput is the document Rego rules see as input
func policyInput(snap *snapshot, idx *index) map[string]any {
	return map[string]any{
		"frames":      idx.listFrames(),
		"suggestions": idx.listSuggestions(),
		"analyses":    snap.analyses,
		"gates":       snap.gates,
		"generations": snap.generations,
		"scorings":    snap.scorings,
		"dedups":      snap.dedups,
		"live":        snap.live,
	}
}
