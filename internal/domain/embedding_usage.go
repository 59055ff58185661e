package domain

import "context"

type searchUsageKey struct{}

// SearchUsage collects per-request facts about a search for response headers and logs.
// The handler puts a mutable pointer into the context before calling the pipeline;
// the pipeline stages write to it.
type SearchUsage struct {
	TotalTokens  int
	Reranked     bool // embeddings were applied to the candidate order
	FallbackUsed bool // the pattern strategy contributed candidates
}

// NewContextWithUsage returns a context with an embedded usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *SearchUsage) {
	u := &SearchUsage{}
	return context.WithValue(ctx, searchUsageKey{}, u), u
}

// UsageFromContext extracts the usage collector from context. Returns nil if not set.
func UsageFromContext(ctx context.Context) *SearchUsage {
	u, _ := ctx.Value(searchUsageKey{}).(*SearchUsage)
	return u
}

// AddTokens records consumed embedding tokens.
func (u *SearchUsage) AddTokens(n int) {
	if u != nil {
		u.TotalTokens += n
	}
}

// MarkReranked records that semantic reranking reordered the candidates.
func (u *SearchUsage) MarkReranked() {
	if u != nil {
		u.Reranked = true
	}
}

// MarkFallback records that the fallback strategy ran.
func (u *SearchUsage) MarkFallback() {
	if u != nil {
		u.FallbackUsed = true
	}
}
