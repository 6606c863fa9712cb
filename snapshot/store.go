// Package snapshot persists the day's aggregated document: a dated gzip
// archive plus an uncompressed latest copy, retention pruning for old
// archives, and an optional S3 mirror.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/gzip"

	"oddsflow/logger"
	"oddsflow/models"
)

const (
	latestName    = "latest.json"
	archiveSuffix = ".json.gz"
)

// Store writes daily snapshots under a root output directory.
type Store struct {
	outDir string
	log    *logger.Entry
}

func NewStore(outDir string) *Store {
	return &Store{outDir: outDir, log: logger.GetLogger().WithComponent("snapshot")}
}

// LatestPath returns where the uncompressed convenience copy lives.
func (s *Store) LatestPath() string {
	return filepath.Join(s.outDir, latestName)
}

// Save writes the snapshot twice: the dated gzip archive under its
// year/month directory, then the latest copy at the root. The archive write
// must succeed before latest is touched, so a failed run never leaves the
// latest copy ahead of the archives. Returns the archive path.
func (s *Store) Save(snap *models.DailySnapshot) (string, error) {
	day, err := time.Parse("2006-01-02", snap.Date)
	if err != nil {
		return "", fmt.Errorf("invalid snapshot date %q: %w", snap.Date, err)
	}

	dir := filepath.Join(s.outDir, fmt.Sprintf("%04d", day.Year()), fmt.Sprintf("%02d", int(day.Month())))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create archive directory: %w", err)
	}

	archivePath := filepath.Join(dir, snap.Date+archiveSuffix)
	if err := writeArchive(archivePath, snap); err != nil {
		return "", err
	}
	if fi, err := os.Stat(archivePath); err == nil {
		logger.IncrementArchiveWrite(fi.Size())
	}

	if err := writeLatest(s.LatestPath(), snap); err != nil {
		return "", fmt.Errorf("archive written but latest copy failed: %w", err)
	}

	s.log.WithFields(logger.Fields{"archive": archivePath, "fixtures": snap.Count}).Info("snapshot saved")
	return archivePath, nil
}

func writeArchive(path string, snap *models.DailySnapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	gz := gzip.NewWriter(f)
	enc := json.NewEncoder(gz)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(snap); err != nil {
		f.Close()
		return fmt.Errorf("encode archive: %w", err)
	}
	if err := gz.Close(); err != nil {
		f.Close()
		return fmt.Errorf("close gzip stream: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}
	return nil
}

func writeLatest(path string, snap *models.DailySnapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create latest copy: %w", err)
	}
	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		f.Close()
		return fmt.Errorf("encode latest copy: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close latest copy: %w", err)
	}
	return nil
}

// ReadArchive loads a snapshot back from a gzip archive.
func ReadArchive(path string) (*models.DailySnapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("open gzip stream: %w", err)
	}
	defer gz.Close()

	var snap models.DailySnapshot
	if err := json.NewDecoder(gz).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}
