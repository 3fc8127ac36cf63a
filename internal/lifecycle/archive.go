package lifecycle

import (
	"bytes"
	"eigenkey/internal/lifecycle/interfaces"
	"eigenkey/internal/models"
	"eigenkey/internal/providers"
	"eigenkey/internal/structures"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	archivePrefix = "usage-"
	archiveSuffix = ".jsonl.zst"
)

// Archiver moves usage events older than the retention period out of the
// live log into zstd-compressed segments.
type Archiver struct {
	dir        string
	retention  time.Duration
	usage      *UsageLog
	compressor interfaces.CompressorInterface
	logger     providers.Logger
	now        Clock
}

func NewArchiver(conf *structures.Config, usage *UsageLog, compressor interfaces.CompressorInterface, logger providers.Logger) *Archiver {
	return &Archiver{
		dir:        conf.Archive.Dir,
		retention:  conf.Archive.Retention,
		usage:      usage,
		compressor: compressor,
		logger:     logger,
		now:        time.Now,
	}
}

// Roll archives everything older than now minus retention and returns the
// archive path, or "" when nothing was old enough.
func (a *Archiver) Roll() (string, int, error) {
	now := a.now()
	cutoff := now.Add(-a.retention)
	var archivePath string

	moved, err := a.usage.Evict(cutoff, func(lines [][]byte) error {
		if err := os.MkdirAll(a.dir, 0755); err != nil {
			return err
		}
		payload := append(bytes.Join(lines, []byte{'\n'}), '\n')
		data, err := a.compressor.Compress(payload)
		if err != nil {
			return err
		}
		archivePath = filepath.Join(a.dir, archivePrefix+now.Format("20060102-150405.000000")+archiveSuffix)
		return writeFileAtomic(archivePath, data)
	})
	if err != nil {
		return "", 0, fmt.Errorf("roll usage log: %w", err)
	}
	if moved > 0 {
		a.logger.Infof(providers.TypeApp, "Archived %d usage events older than %s to %s", moved, cutoff.Format(time.RFC3339), archivePath)
	}
	return archivePath, moved, nil
}

// Archives lists archive segments oldest first.
func (a *Archiver) Archives() ([]string, error) {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var paths []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, archivePrefix) || !strings.HasSuffix(name, archiveSuffix) {
			continue
		}
		paths = append(paths, filepath.Join(a.dir, name))
	}
	sort.Strings(paths)
	return paths, nil
}

// ScanArchive decodes one segment and calls fn per event like UsageLog.Scan.
func (a *Archiver) ScanArchive(path string, fn func(event *models.UsageEvent) bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	plain, err := a.compressor.Decompress(data)
	if err != nil {
		return fmt.Errorf("decompress %s: %w", path, err)
	}
	return scanEvents(bytes.NewReader(plain), fn)
}

func (a *Archiver) Close() {
	a.compressor.Close()
}
