package oracle

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/BaSui01/hrflow/types"
)

// RateLimited wraps an Oracle with a token-bucket limiter so that bursts of
// routing decisions cannot exhaust the upstream quota. Waiting respects ctx.
type RateLimited struct {
	inner   Oracle
	limiter *rate.Limiter
}

// NewRateLimited creates a rate-limited oracle allowing rps requests per
// second with the given burst. rps <= 0 disables limiting.
func NewRateLimited(inner Oracle, rps float64, burst int) *RateLimited {
	var limiter *rate.Limiter
	if rps > 0 {
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
	return &RateLimited{inner: inner, limiter: limiter}
}

func (r *RateLimited) Complete(ctx context.Context, prompt string, opts *Options) (string, error) {
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return "", types.NewError(types.ErrRateLimited, "oracle rate limit wait cancelled").WithCause(err)
		}
	}
	return r.inner.Complete(ctx, prompt, opts)
}
