package snapshot

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"oddsflow/logger"
)

// Pruner deletes archives older than a retention window.
type Pruner struct {
	log *logger.Entry
	now func() time.Time
}

func NewPruner() *Pruner {
	return &Pruner{log: logger.GetLogger().WithComponent("pruner"), now: time.Now}
}

// Prune removes archive files under rootDir whose modification time is older
// than retentionDays. The latest copy is always kept regardless of age, and
// a retention of zero or less disables pruning. Individual failures are
// logged and skipped so one bad file cannot stop the scan; the returned list
// holds the paths actually removed.
func (p *Pruner) Prune(rootDir string, retentionDays int) []string {
	if retentionDays <= 0 {
		return nil
	}
	if _, err := os.Stat(rootDir); os.IsNotExist(err) {
		return nil
	}
	cutoff := p.now().Add(-time.Duration(retentionDays) * 24 * time.Hour)

	var removed []string
	err := filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			p.log.WithError(err).WithFields(logger.Fields{"path": path}).Warn("prune scan error")
			return nil
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if name == latestName || !strings.HasSuffix(name, archiveSuffix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			p.log.WithError(err).WithFields(logger.Fields{"path": path}).Warn("stat failed during prune")
			return nil
		}
		if !info.ModTime().Before(cutoff) {
			return nil
		}
		if err := os.Remove(path); err != nil {
			if !os.IsNotExist(err) {
				p.log.WithError(err).WithFields(logger.Fields{"path": path}).Warn("remove failed during prune")
			}
			return nil
		}
		removed = append(removed, path)
		return nil
	})
	if err != nil {
		p.log.WithError(err).Warn("prune walk aborted")
	}

	if len(removed) > 0 {
		p.log.WithFields(logger.Fields{"removed": len(removed), "retention_days": retentionDays}).Info("old archives pruned")
	}
	return removed
}
