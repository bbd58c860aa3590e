// Package trace reconstructs the causal history of frames and suggestions from the independently
// persisted outputs of the pipeline stages. Every call re-reads all stages and joins them from scratch;
// nothing is cached between calls, so a UseCase is safe for concurrent use.
package trace

import (
	"github.com/m-mizutani/pipetrace/pkg/livestate"
	"github.com/m-mizutani/pipetrace/pkg/policy"
	"github.com/m-mizutani/pipetrace/pkg/repository"
)

// UseCase provides trace and listing operations
type UseCase struct {
	stores *repository.Stores
	live   livestate.Provider
	policy *policy.Policy
}

// Option is a functional option for UseCase
type Option func(*UseCase)

// WithLiveState sets the provider whose records override pipeline snapshots
func WithLiveState(p livestate.Provider) Option {
	return func(uc *UseCase) {
		uc.live = p
	}
}

// WithPolicy adds Rego integrity rules to CheckIntegrity
func WithPolicy(p *policy.Policy) Option {
	return func(uc *UseCase) {
		uc.policy = p
	}
}

// New creates a new trace UseCase over fully built stores
func New(stores *repository.Stores, opts ...Option) *UseCase {
	uc := &UseCase{
		stores: stores,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}
