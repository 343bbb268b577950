package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/auth"
)

type observation struct {
	procedure string
	code      string
}

type fakeObserver struct {
	seen []observation
}

func (o *fakeObserver) ObserveRPC(procedure, code string, _ time.Duration) {
	o.seen = append(o.seen, observation{procedure: procedure, code: code})
}

func okHandler(ctx context.Context, _ connect.AnyRequest) (connect.AnyResponse, error) {
	return connect.NewResponse(&struct{}{}), nil
}

func TestMetricsInterceptor(t *testing.T) {
	obs := &fakeObserver{}
	interceptor := MetricsInterceptor(obs)

	_, err := interceptor(okHandler)(context.Background(), connect.NewRequest(&struct{}{}))
	require.NoError(t, err)

	failing := func(context.Context, connect.AnyRequest) (connect.AnyResponse, error) {
		return nil, connect.NewError(connect.CodeNotFound, errors.New("missing"))
	}
	_, err = interceptor(failing)(context.Background(), connect.NewRequest(&struct{}{}))
	require.Error(t, err)

	require.Len(t, obs.seen, 2)
	assert.Equal(t, "ok", obs.seen[0].code)
	assert.Equal(t, connect.CodeNotFound.String(), obs.seen[1].code)
}

func TestRequireAuth(t *testing.T) {
	jwtManager := auth.NewJWTManager("middleware-test-secret", time.Hour)
	token, err := jwtManager.Generate(42, "web")
	require.NoError(t, err)

	var gotUserID int64
	next := func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		gotUserID = GetUserID(ctx)
		return okHandler(ctx, req)
	}
	interceptor := RequireAuth(jwtManager)

	tests := []struct {
		name   string
		header string
		code   connect.Code
	}{
		{name: "valid token", header: "Bearer " + token},
		{name: "missing header", code: connect.CodeUnauthenticated},
		{name: "not bearer", header: "Basic " + token, code: connect.CodeUnauthenticated},
		{name: "garbage token", header: "Bearer not-a-jwt", code: connect.CodeUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotUserID = 0
			req := connect.NewRequest(&struct{}{})
			if tt.header != "" {
				req.Header().Set("Authorization", tt.header)
			}

			_, err := interceptor(next)(context.Background(), req)
			if tt.code == 0 {
				require.NoError(t, err)
				assert.Equal(t, int64(42), gotUserID)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.code, connect.CodeOf(err))
			assert.Zero(t, gotUserID)
		})
	}
}

func TestLoggingInterceptor(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	interceptor := LoggingInterceptor(logger)

	ctx := WithUserID(context.Background(), 7)
	_, err := interceptor(okHandler)(ctx, connect.NewRequest(&struct{}{}))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"msg":"RPC ok"`)
	assert.Contains(t, buf.String(), `"user_id":7`)

	buf.Reset()
	denied := func(context.Context, connect.AnyRequest) (connect.AnyResponse, error) {
		return nil, connect.NewError(connect.CodePermissionDenied, errors.New("not yours"))
	}
	_, err = interceptor(denied)(ctx, connect.NewRequest(&struct{}{}))
	require.Error(t, err)
	assert.Contains(t, buf.String(), `"level":"WARN"`)
	assert.Contains(t, buf.String(), "not yours")
}
