// Package filestore writes month files and batch manifests to a local
// directory tree.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/metar-archive-etl/internal/domain"
	"github.com/couchcryptid/metar-archive-etl/internal/pipeline"
	"github.com/jonboulle/clockwork"
	"gopkg.in/yaml.v3"
)

// Store implements pipeline.Loader and pipeline.Recorder on the filesystem.
type Store struct {
	root          string
	writeManifest bool
	clock         clockwork.Clock
	logger        *slog.Logger
}

// New creates a Store rooted at dir. Batch manifests are only written when
// writeManifest is set.
func New(dir string, writeManifest bool, clock clockwork.Clock, logger *slog.Logger) *Store {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Store{root: dir, writeManifest: writeManifest, clock: clock, logger: logger}
}

// Root returns the output directory.
func (s *Store) Root() string { return s.root }

// Load writes the canonical month text to [Folder/]{TYPE}{YYYY}{MM}.txt and
// returns that path relative to the root. An existing file is replaced.
func (s *Store) Load(_ context.Context, a pipeline.Artifact) (string, error) {
	rel := filepath.Join(a.Folder, a.Unit.FileName())
	if err := writeAtomic(filepath.Join(s.root, rel), []byte(a.Text)); err != nil {
		return "", fmt.Errorf("write %s: %w", rel, err)
	}
	s.logger.Debug("month file written", "path", rel, "bytes", len(a.Text))
	return filepath.ToSlash(rel), nil
}

// Discard removes the month file written by Load.
func (s *Store) Discard(_ context.Context, a pipeline.Artifact) error {
	rel := filepath.Join(a.Folder, a.Unit.FileName())
	if err := os.Remove(filepath.Join(s.root, rel)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", rel, err)
	}
	s.logger.Debug("month file discarded", "path", rel)
	return nil
}

// RecordMonth is a no-op; the month file itself is the record.
func (s *Store) RecordMonth(context.Context, domain.FetchUnit, domain.MonthResult) error {
	return nil
}

// Manifest is the YAML summary written beside a batch folder.
type Manifest struct {
	GeneratedAt        time.Time `yaml:"generated_at"`
	domain.BatchResult `yaml:",inline"`
}

// RecordBatch writes {Folder}.yaml next to the batch folder.
func (s *Store) RecordBatch(_ context.Context, result domain.BatchResult) error {
	if !s.writeManifest {
		return nil
	}

	data, err := yaml.Marshal(Manifest{GeneratedAt: s.clock.Now().UTC(), BatchResult: result})
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	path := ManifestPath(s.root, result.Folder)
	if err := writeAtomic(path, data); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	s.logger.Info("batch manifest written", "path", path)
	return nil
}

// ManifestPath returns where the manifest of a batch folder lives.
func ManifestPath(root, folder string) string {
	return filepath.Join(root, folder+".yaml")
}

// ReadManifest loads a manifest written by RecordBatch.
func ReadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("decode manifest %s: %w", path, err)
	}
	return m, nil
}

// writeAtomic writes data to a temp file in the destination directory and
// renames it into place.
func writeAtomic(dest string, data []byte) error {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".month-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpPath, dest)
}
