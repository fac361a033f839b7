package mock

import (
	"context"

	"github.com/fwojciec/saletrack"
)

var _ saletrack.ChallengeResolver = (*ChallengeResolver)(nil)

// ChallengeResolver is a mock implementation of saletrack.ChallengeResolver.
type ChallengeResolver struct {
	ResolveFn func(ctx context.Context, url string) (*saletrack.Resolution, error)
	PingFn    func(ctx context.Context) error
}

func (r *ChallengeResolver) Resolve(ctx context.Context, url string) (*saletrack.Resolution, error) {
	return r.ResolveFn(ctx, url)
}

func (r *ChallengeResolver) Ping(ctx context.Context) error {
	if r.PingFn == nil {
		return nil
	}
	return r.PingFn(ctx)
}
