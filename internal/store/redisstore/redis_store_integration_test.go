//go:build integration

package redisstore

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"fraudpipeline/internal/fraudmodel"
)

// These tests exercise a real Redis instance and only run when REDIS_ADDR
// is set, e.g. `REDIS_ADDR=localhost:6379 go test -tags integration ./...`.
func newTestStores(t *testing.T) (*SessionStore, *SignalStore, *AnalysisStore) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set, skipping redis integration test")
	}
	sessions, signals, analyses, err := NewClient(Config{Addr: addr, KeyPrefix: "fraudtest:"})
	require.NoError(t, err)
	return sessions, signals, analyses
}

func TestIntegration_SessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	sessions, _, _ := newTestStores(t)

	sess, err := sessions.Create(ctx, fraudmodel.CreateSessionRequest{ClientID: "c1", DeviceFingerprint: "fp1"})
	require.NoError(t, err)

	got, err := sessions.Get(ctx, sess.ID)
	require.NoError(t, err)
	require.Equal(t, "c1", got.ClientID)
}

func TestIntegration_SignalAppendAndTimeRange(t *testing.T) {
	ctx := context.Background()
	_, signals, _ := newTestStores(t)

	sessionID := "sess-integration"
	require.NoError(t, signals.Append(ctx, sessionID, []fraudmodel.Signal{
		{ID: "a", Type: fraudmodel.SignalMouseMove, Timestamp: 100, Payload: map[string]any{}},
		{ID: "b", Type: fraudmodel.SignalMouseMove, Timestamp: 200, Payload: map[string]any{}},
	}))

	got, err := signals.GetBySessionAndTimeRange(ctx, sessionID, 100, 150)
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestIntegration_AnalysisSaveOverwrites(t *testing.T) {
	ctx := context.Background()
	_, _, analyses := newTestStores(t)

	sessionID := "sess-analysis"
	require.NoError(t, analyses.Save(ctx, fraudmodel.FraudAnalysis{SessionID: sessionID, Verdict: fraudmodel.VerdictAllow}))
	require.NoError(t, analyses.Save(ctx, fraudmodel.FraudAnalysis{SessionID: sessionID, Verdict: fraudmodel.VerdictBlock}))

	got, err := analyses.GetBySession(ctx, sessionID)
	require.NoError(t, err)
	require.Equal(t, fraudmodel.VerdictBlock, got.Verdict)
}
