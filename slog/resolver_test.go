package slog_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/fwojciec/saletrack"
	"github.com/fwojciec/saletrack/mock"
	saleslog "github.com/fwojciec/saletrack/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingResolver_Resolve(t *testing.T) {
	t.Parallel()

	t.Run("logs resolution with status and bytes", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.ChallengeResolver{
			ResolveFn: func(ctx context.Context, url string) (*saletrack.Resolution, error) {
				return &saletrack.Resolution{
					Status:  200,
					HTML:    "<html>solved</html>",
					Cookies: []saletrack.Cookie{{Name: "cf_clearance", Value: "tok"}},
				}, nil
			},
		}

		resolver := saleslog.NewLoggingResolver(inner, logger)
		res, err := resolver.Resolve(context.Background(), "https://example.test/search")

		require.NoError(t, err)
		assert.Equal(t, 200, res.Status)
		output := buf.String()
		assert.Contains(t, output, "challenge resolution")
		assert.Contains(t, output, "url=https://example.test/search")
		assert.Contains(t, output, "status=200")
		assert.Contains(t, output, "cookies=1")
		assert.Contains(t, output, "duration=")
	})

	t.Run("logs error on failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.ChallengeResolver{
			ResolveFn: func(ctx context.Context, url string) (*saletrack.Resolution, error) {
				return nil, saletrack.Errorf(saletrack.EUNAVAILABLE, "resolver down")
			},
		}

		resolver := saleslog.NewLoggingResolver(inner, logger)
		_, err := resolver.Resolve(context.Background(), "https://example.test/search")

		require.Error(t, err)
		assert.Contains(t, buf.String(), "resolver down")
	})
}

func TestLoggingResolver_Ping(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	inner := &mock.ChallengeResolver{
		PingFn: func(ctx context.Context) error {
			return saletrack.Errorf(saletrack.EUNAVAILABLE, "connection refused")
		},
	}

	resolver := saleslog.NewLoggingResolver(inner, logger)
	err := resolver.Ping(context.Background())

	require.Error(t, err)
	assert.Contains(t, buf.String(), "ping failed")
}
