// Package policy evaluates user-supplied Rego rules over the joined pipeline data. Rules live in package
// "integrity" and contribute objects {kind, subject, message} to the set "anomaly".
package policy

import (
	"context"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/pipetrace/pkg/model"
	"github.com/m-mizutani/pipetrace/pkg/utils/logging"
	"github.com/open-policy-agent/opa/v1/rego"
	"github.com/open-policy-agent/opa/v1/topdown/print"
)

const integrityQuery = "data.integrity"

// Policy is a prepared set of integrity rules
type Policy struct {
	query *rego.PreparedEvalQuery
}

// printHook forwards Rego print() output to the context logger
type printHook struct {
	ctx context.Context
}

func (h *printHook) Print(pctx print.Context, message string) error {
	logging.From(h.ctx).Debug("rego print", "message", message)
	return nil
}

// Load reads all .rego files in dir. It returns nil when the directory holds no policy.
func Load(ctx context.Context, dir string) (*Policy, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.rego"))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to glob policy files", goerr.V("dir", dir))
	}
	if len(files) == 0 {
		return nil, nil
	}

	options := make([]func(*rego.Rego), 0, len(files)+1)
	options = append(options, rego.Query(integrityQuery), rego.EnablePrintStatements(true))
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read policy file", goerr.V("path", file))
		}
		options = append(options, rego.Module(file, string(data)))
	}

	prepared, err := rego.New(options...).PrepareForEval(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to prepare integrity policy", goerr.V("dir", dir))
	}

	return &Policy{query: &prepared}, nil
}

// Evaluate runs the rules against input and returns the anomalies they report. A nil Policy reports
// nothing.
func (p *Policy) Evaluate(ctx context.Context, input any) ([]*model.Anomaly, error) {
	if p == nil {
		return nil, nil
	}

	rs, err := p.query.Eval(ctx, rego.EvalInput(input), rego.EvalPrintHook(&printHook{ctx: ctx}))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to evaluate integrity policy")
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return nil, nil
	}

	data, ok := rs[0].Expressions[0].Value.(map[string]any)
	if !ok {
		return nil, goerr.New("invalid integrity result: not an object")
	}
	raw, ok := data["anomaly"]
	if !ok {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, goerr.New("invalid integrity result: anomaly is not a set")
	}

	anomalies := make([]*model.Anomaly, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, goerr.New("invalid anomaly in integrity result", goerr.V("anomaly", item))
		}

		a := &model.Anomaly{
			Kind:    model.AnomalyKind(getString(m, "kind")),
			Subject: getString(m, "subject"),
			Message: getString(m, "message"),
		}
		if a.Kind == "" {
			a.Kind = model.AnomalyPolicy
		}
		anomalies = append(anomalies, a)
	}

	return anomalies, nil
}

func getString(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
