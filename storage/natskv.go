package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360studio/memberdir/section"
)

// BucketSections is the KV bucket holding the section snapshot.
const BucketSections = "MEMBERDIR_SECTIONS"

// snapshotKey is the single key the blob lives under.
const snapshotKey = "snapshot"

// KVStore persists the snapshot in a NATS JetStream KV bucket.
type KVStore struct {
	kv jetstream.KeyValue
}

// NewKVStore creates a KVStore, creating the bucket if it doesn't exist.
// Bucket history keeps the last few snapshot revisions for operator
// inspection.
func NewKVStore(ctx context.Context, js jetstream.JetStream) (*KVStore, error) {
	kv, err := getOrCreateBucket(ctx, js, BucketSections)
	if err != nil {
		return nil, fmt.Errorf("create sections bucket: %w", err)
	}
	return &KVStore{kv: kv}, nil
}

func getOrCreateBucket(ctx context.Context, js jetstream.JetStream, name string) (jetstream.KeyValue, error) {
	kv, err := js.KeyValue(ctx, name)
	if err == nil {
		return kv, nil
	}
	// Bucket doesn't exist, create it
	return js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      name,
		Description: "Member directory section configuration",
		History:     5,
	})
}

// Get implements SnapshotStore.
func (s *KVStore) Get(ctx context.Context) (*section.Snapshot, error) {
	entry, err := s.kv.Get(ctx, snapshotKey)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}

	var snap section.Snapshot
	if err := json.Unmarshal(entry.Value(), &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

// Set implements SnapshotStore.
func (s *KVStore) Set(ctx context.Context, snap *section.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if _, err := s.kv.Put(ctx, snapshotKey, data); err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}
	return nil
}

func isNotFound(err error) bool {
	return err != nil && strings.Contains(err.Error(), "key not found")
}
