package archive

import (
	"context"
	"path/filepath"
	"testing"

	"fraudpipeline/internal/fraudmodel"
)

func openTestArchive(t *testing.T) *Archive {
	t.Helper()
	path := filepath.Join(t.TempDir(), "archive.db")
	a, err := Open(path)
	if err != nil {
		t.Fatalf("opening archive: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestSessionStore_CreateGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	a := openTestArchive(t)

	sess, err := a.Sessions.Create(ctx, fraudmodel.CreateSessionRequest{ClientID: "c1", DeviceFingerprint: "fp1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := a.Sessions.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.ClientID != "c1" {
		t.Fatalf("expected round-tripped session, got %+v", got)
	}
}

func TestSessionStore_CompleteSetsTimestamp(t *testing.T) {
	ctx := context.Background()
	a := openTestArchive(t)

	sess, _ := a.Sessions.Create(ctx, fraudmodel.CreateSessionRequest{ClientID: "c1"})
	completed, err := a.Sessions.Complete(ctx, sess.ID)
	if err != nil || completed.CompletedAt == nil {
		t.Fatalf("expected completion to set CompletedAt, err=%v", err)
	}
}

func TestSignalStore_AppendAndGetSorted(t *testing.T) {
	ctx := context.Background()
	a := openTestArchive(t)

	signals := []fraudmodel.Signal{
		{ID: "s1", Type: fraudmodel.SignalMouseMove, Timestamp: 300, Payload: map[string]any{}},
		{ID: "s2", Type: fraudmodel.SignalMouseMove, Timestamp: 100, Payload: map[string]any{}},
	}
	if err := a.Signals.Append(ctx, "sess1", signals); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := a.Signals.GetBySession(ctx, "sess1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].Timestamp != 100 {
		t.Fatalf("expected signals sorted ascending, got %+v", got)
	}
}

func TestAnalysisStore_SaveOverwrites(t *testing.T) {
	ctx := context.Background()
	a := openTestArchive(t)

	a.Analyses.Save(ctx, fraudmodel.FraudAnalysis{SessionID: "sess", Verdict: fraudmodel.VerdictAllow})
	a.Analyses.Save(ctx, fraudmodel.FraudAnalysis{SessionID: "sess", Verdict: fraudmodel.VerdictBlock})

	got, err := a.Analyses.GetBySession(ctx, "sess")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Verdict != fraudmodel.VerdictBlock {
		t.Fatalf("expected overwritten verdict BLOCK, got %v", got.Verdict)
	}
}
