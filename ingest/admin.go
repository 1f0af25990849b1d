package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/c360studio/memberdir/section"
)

// Upload validates and applies a single section document outside a bulk
// sync. Unlike Sync, this path runs the destructive-removal guard: an
// update that drops live field keys is rejected unless force is set, and
// even then the current version is backed up first. A nil error means the
// document is live.
func (p *Pipeline) Upload(ctx context.Context, doc RawDoc, force bool) error {
	def, verr := p.registry.ValidateUpload(doc.Data)
	if verr != nil {
		if verr.Kind != section.KindDestructiveChange || !force {
			if p.metrics != nil {
				p.metrics.ValidationFailures.WithLabelValues(string(verr.Kind)).Inc()
			}
			return verr
		}
		p.logger.Warn("Destructive change forced",
			slog.String("section", verr.SectionKey),
			slog.Any("dropped_fields", verr.FieldKeys))
		def, verr = p.registry.ValidateDocument(doc.Data)
		if verr != nil {
			return verr
		}
	}

	if live := p.registry.Section(def.Key); live != nil {
		if err := p.backupSection(live); err != nil {
			return err
		}
	}

	defs := p.replaceSection(def.Key, def)
	if err := p.promote(ctx, defs, uuid.New().String()); err != nil {
		return err
	}

	p.logger.Info("Section uploaded", slog.String("section", def.Key))
	return nil
}

// Reorder swaps the display order of two adjacent sections. When both carry
// the same Order value (bulk-imported data is often never individually
// ordered), distinct values are synthesized from their current positions
// first so the swap is observable.
func (p *Pipeline) Reorder(ctx context.Context, keyA, keyB string) error {
	sections := p.registry.Sections()

	posA, posB := -1, -1
	for i, s := range sections {
		switch s.Key {
		case keyA:
			posA = i
		case keyB:
			posB = i
		}
	}
	if posA < 0 {
		return fmt.Errorf("unknown section %q", keyA)
	}
	if posB < 0 {
		return fmt.Errorf("unknown section %q", keyB)
	}
	if posA-posB != 1 && posB-posA != 1 {
		return fmt.Errorf("sections %q and %q are not adjacent", keyA, keyB)
	}

	defs := make([]*section.SectionDefinition, len(sections))
	for i, s := range sections {
		if i == posA || i == posB {
			clone := *s
			defs[i] = &clone
			continue
		}
		defs[i] = s
	}

	a, b := defs[posA], defs[posB]
	if a.Order == b.Order {
		a.Order, b.Order = posA, posB
	}
	a.Order, b.Order = b.Order, a.Order

	if err := p.promote(ctx, defs, uuid.New().String()); err != nil {
		return err
	}

	p.logger.Info("Sections reordered",
		slog.String("section_a", keyA),
		slog.String("section_b", keyB))
	return nil
}

// Delete removes a section from the live snapshot. Deletion is never a
// side effect: confirm must be set, and the current version is backed up
// before the write.
func (p *Pipeline) Delete(ctx context.Context, key string, confirm bool) error {
	if !confirm {
		return fmt.Errorf("deleting section %q requires explicit confirmation", key)
	}

	live := p.registry.Section(key)
	if live == nil {
		return fmt.Errorf("unknown section %q", key)
	}
	if err := p.backupSection(live); err != nil {
		return err
	}

	sections := p.registry.Sections()
	defs := make([]*section.SectionDefinition, 0, len(sections)-1)
	for _, s := range sections {
		if s.Key != key {
			defs = append(defs, s)
		}
	}

	if err := p.promote(ctx, defs, uuid.New().String()); err != nil {
		return err
	}

	p.logger.Info("Section deleted", slog.String("section", key))
	return nil
}

// Relabel changes a section's display label. The key itself is immutable
// once member data lives under it; only the label is free to change, and
// the prior version is backed up first.
func (p *Pipeline) Relabel(ctx context.Context, key, newLabel string) error {
	live := p.registry.Section(key)
	if live == nil {
		return fmt.Errorf("unknown section %q", key)
	}
	if newLabel == "" {
		return fmt.Errorf("section %q: new label must not be empty", key)
	}
	if err := p.backupSection(live); err != nil {
		return err
	}

	clone := *live
	clone.Label = newLabel
	defs := p.replaceSection(key, &clone)

	if err := p.promote(ctx, defs, uuid.New().String()); err != nil {
		return err
	}

	p.logger.Info("Section relabeled",
		slog.String("section", key),
		slog.String("label", newLabel))
	return nil
}

// backupSection writes the live definition through the backup manager.
func (p *Pipeline) backupSection(def *section.SectionDefinition) error {
	if p.backups == nil {
		return fmt.Errorf("section %q: no backup manager configured; refusing destructive write", def.Key)
	}

	data, err := json.MarshalIndent(def, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal section %q for backup: %w", def.Key, err)
	}

	path, err := p.backups.Backup(def.Key, data)
	if err != nil {
		return fmt.Errorf("backup section %q: %w", def.Key, err)
	}

	if p.metrics != nil {
		p.metrics.BackupsWritten.Inc()
	}
	p.logger.Debug("Section backed up",
		slog.String("section", def.Key),
		slog.String("path", path))
	return nil
}

// replaceSection returns the live section list with key replaced by (or
// extended with) def, preserving current order for existing sections.
func (p *Pipeline) replaceSection(key string, def *section.SectionDefinition) []*section.SectionDefinition {
	sections := p.registry.Sections()
	defs := make([]*section.SectionDefinition, 0, len(sections)+1)
	replaced := false
	for _, s := range sections {
		if s.Key == key {
			defs = append(defs, def)
			replaced = true
			continue
		}
		defs = append(defs, s)
	}
	if !replaced {
		defs = append(defs, def)
	}
	return defs
}
