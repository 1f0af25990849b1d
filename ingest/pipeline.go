// Package ingest implements the administrator-triggered sync pipeline that
// moves section documents from their source into the live registry, plus
// the admin operations (upload, reorder, delete, relabel) that share its
// backup-before-write discipline. Nothing in this package runs on a
// content-serving request; hot-path reads go straight to the registry's
// in-memory snapshot.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/c360studio/memberdir/metric"
	"github.com/c360studio/memberdir/section"
	"github.com/c360studio/memberdir/storage"
)

// RawDoc is one section document as read from the source, identified for
// operator-facing reporting.
type RawDoc struct {
	ID   string
	Data []byte
}

// Result summarizes a sync batch for the operator: which documents went
// live and which were skipped, with the specific reason per document.
type Result struct {
	BatchID string
	Loaded  []string
	Skipped map[string]string
}

// Pipeline orchestrates validation, staging, and atomic promotion of
// section documents.
type Pipeline struct {
	registry *section.Registry
	store    storage.SnapshotStore
	backups  *BackupManager
	logger   *slog.Logger
	metrics  *metric.Metrics
	now      func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithMetrics attaches sync metrics.
func WithMetrics(m *metric.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithClock overrides the pipeline's clock. Tests use this to pin backup
// names and snapshot timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// NewPipeline creates a sync pipeline over the given registry and store.
func NewPipeline(registry *section.Registry, store storage.SnapshotStore, backups *BackupManager, logger *slog.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pipeline{
		registry: registry,
		store:    store,
		backups:  backups,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Restore hydrates the registry from the persisted snapshot at startup. A
// store that has never been synced is not an error; the registry just
// starts empty.
func (p *Pipeline) Restore(ctx context.Context) error {
	snap, err := p.store.Get(ctx)
	if err != nil {
		if err == storage.ErrNotFound {
			p.logger.Debug("No persisted snapshot; registry starts empty")
			return nil
		}
		return fmt.Errorf("restore snapshot: %w", err)
	}

	p.registry.LoadSnapshot(snap.Sections)
	p.setRegistryGauges()
	p.logger.Info("Snapshot restored",
		slog.String("batch_id", snap.BatchID),
		slog.Int("sections", len(snap.Sections)))
	return nil
}

// Sync validates every document in the batch, stages the ones that pass,
// and atomically replaces the live snapshot with the staged set. One bad
// document never aborts the batch: its failure is recorded per-document and
// processing continues. The returned Result is the operator's summary.
//
// Concurrent syncs are last-write-wins on the persisted snapshot; the admin
// workflow that triggers them is expected to be serialized by humans.
func (p *Pipeline) Sync(ctx context.Context, docs []RawDoc) (*Result, error) {
	result := &Result{
		BatchID: uuid.New().String(),
		Skipped: make(map[string]string),
	}

	var staged []*section.SectionDefinition
	stagedSections := make(map[string]string) // section key -> doc ID
	claimedFields := make(map[string]string)  // field key -> doc ID

	for _, doc := range docs {
		def, verr := p.registry.ValidateDocument(doc.Data)
		if verr != nil {
			p.skip(result, doc.ID, string(verr.Kind), verr.Reason)
			continue
		}

		if prior, dup := stagedSections[def.Key]; dup {
			p.skip(result, doc.ID, string(section.KindIntegrity),
				fmt.Sprintf("section key %q already staged by document %q", def.Key, prior))
			continue
		}

		// Collision detection across the documents of this batch; the
		// registry check above only covers already-live sections.
		collided := false
		for _, fieldKey := range def.ContentFieldKeys() {
			if prior, claimed := claimedFields[fieldKey]; claimed {
				p.skip(result, doc.ID, string(section.KindIntegrity),
					fmt.Sprintf("field key %q already claimed by document %q", fieldKey, prior))
				collided = true
				break
			}
		}
		if collided {
			continue
		}

		stagedSections[def.Key] = doc.ID
		for _, fieldKey := range def.ContentFieldKeys() {
			claimedFields[fieldKey] = doc.ID
		}
		staged = append(staged, def)
		result.Loaded = append(result.Loaded, doc.ID)
	}

	sort.SliceStable(staged, func(i, j int) bool {
		return staged[i].Order < staged[j].Order
	})

	if err := p.promote(ctx, staged, result.BatchID); err != nil {
		return result, err
	}

	if p.metrics != nil {
		p.metrics.DocumentsLoaded.Add(float64(len(result.Loaded)))
	}
	p.logger.Info("Sync complete",
		slog.String("batch_id", result.BatchID),
		slog.Int("loaded", len(result.Loaded)),
		slog.Int("skipped", len(result.Skipped)))
	return result, nil
}

func (p *Pipeline) skip(result *Result, id, kind, reason string) {
	result.Skipped[id] = reason
	if p.metrics != nil {
		p.metrics.DocumentsSkipped.WithLabelValues(kind).Inc()
		p.metrics.ValidationFailures.WithLabelValues(kind).Inc()
	}
	p.logger.Warn("Section document skipped",
		slog.String("document", id),
		slog.String("reason", reason))
}

// promote persists the staged snapshot and, only once the write succeeds,
// replaces the registry's live state. A failed persist leaves the previous
// snapshot live.
func (p *Pipeline) promote(ctx context.Context, defs []*section.SectionDefinition, batchID string) error {
	snap := &section.Snapshot{
		BatchID:  batchID,
		SyncedAt: p.now(),
		Sections: defs,
	}
	if err := p.store.Set(ctx, snap); err != nil {
		return fmt.Errorf("persist snapshot: %w", err)
	}

	p.registry.LoadSnapshot(defs)

	if p.metrics != nil {
		p.metrics.SnapshotWrites.Inc()
	}
	p.setRegistryGauges()
	return nil
}

func (p *Pipeline) setRegistryGauges() {
	if p.metrics == nil {
		return
	}
	fields := 0
	sections := p.registry.Sections()
	for _, s := range sections {
		fields += len(s.AllFields())
	}
	p.metrics.LiveSections.Set(float64(len(sections)))
	p.metrics.LiveFields.Set(float64(fields))
}
