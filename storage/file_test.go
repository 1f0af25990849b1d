package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/c360studio/memberdir/section"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sections", "snapshot.json")
	store := NewFileStore(path)
	ctx := context.Background()

	_, err := store.Get(ctx)
	require.ErrorIs(t, err, ErrNotFound)

	snap := &section.Snapshot{
		BatchID:  "batch-1",
		SyncedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Sections: []*section.SectionDefinition{
			{Key: "profile", Label: "Profile", Order: 1, PMPDefault: "member"},
		},
	}
	require.NoError(t, store.Set(ctx, snap))

	got, err := store.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, "batch-1", got.BatchID)
	require.Len(t, got.Sections, 1)
	require.Equal(t, "profile", got.Sections[0].Key)
	require.True(t, got.SyncedAt.Equal(snap.SyncedAt))
}

func TestFileStoreOverwrite(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "snapshot.json"))
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, &section.Snapshot{BatchID: "a"}))
	require.NoError(t, store.Set(ctx, &section.Snapshot{BatchID: "b"}))

	got, err := store.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, "b", got.BatchID)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if _, err := store.Get(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("empty store Get = %v, want ErrNotFound", err)
	}

	snap := &section.Snapshot{BatchID: "x"}
	if err := store.Set(ctx, snap); err != nil {
		t.Fatal(err)
	}
	got, err := store.Get(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got.BatchID != "x" {
		t.Errorf("BatchID = %q", got.BatchID)
	}
}
