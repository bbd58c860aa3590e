package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/pipetrace/pkg/model"
)

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return goerr.Wrap(err, "failed to marshal output")
	}
	fmt.Fprintf(w, "%s\n", string(data))
	return nil
}

func formatMillis(ms int64) string {
	if ms == 0 {
		return "-"
	}
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}

func printFrames(w io.Writer, frames []*model.FrameSummary) {
	for _, f := range frames {
		gate := string(f.GateDecision)
		if gate == "" {
			gate = "-"
		}
		analyzed := "pending"
		if f.Analyzed {
			analyzed = "analyzed"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\n",
			f.ID, formatMillis(f.Timestamp), f.Kind, analyzed, gate, f.SuggestionCount)
	}
}

func printSuggestions(w io.Writer, suggestions []*model.SuggestionSummary) {
	for _, s := range suggestions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%d\t%s\n",
			s.ID, formatMillis(s.CreatedAt), s.Status, s.Support, s.SourceFrameCount, s.Title)
	}
}

func printAnomalies(w io.Writer, anomalies []*model.Anomaly) {
	if len(anomalies) == 0 {
		fmt.Fprintf(w, "no anomalies found\n")
		return
	}
	for _, a := range anomalies {
		fmt.Fprintf(w, "%s\t%s\t%s\n", a.Kind, a.Subject, a.Message)
	}
}
