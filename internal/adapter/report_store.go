package adapter

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	m "gooze.dev/pkg/jsgooze/internal/model"
)

const (
	reportExt   = ".yaml"
	shardPrefix = "shard_"
)

// ReportStore persists per-file mutant reports.
type ReportStore interface {
	SaveReports(ctx context.Context, dir m.Path, reports []m.FileReport) error
	LoadReports(ctx context.Context, dir m.Path) ([]m.FileReport, error)
	CleanReports(ctx context.Context, dir m.Path, sources []m.Path) error
	ListShards(ctx context.Context, dir m.Path) ([]m.Path, error)
}

// ShardDir is the reports directory used by one shard of a sharded run.
func ShardDir(dir m.Path, shardIndex int) m.Path {
	return m.Path(filepath.Join(string(dir), fmt.Sprintf("%s%d", shardPrefix, shardIndex)))
}

// YAMLReportStore writes one YAML document per source file.
type YAMLReportStore struct{}

// NewReportStore constructs the default ReportStore.
func NewReportStore() *YAMLReportStore {
	return &YAMLReportStore{}
}

// SaveReports writes each file report to dir, replacing earlier reports for
// the same source.
func (s *YAMLReportStore) SaveReports(ctx context.Context, dir m.Path, reports []m.FileReport) error {
	if err := os.MkdirAll(string(dir), 0o750); err != nil {
		slog.Error("Failed to create reports dir", "dir", dir, "error", err)
		return fmt.Errorf("create reports dir: %w", err)
	}

	for _, report := range reports {
		if err := ctx.Err(); err != nil {
			return err
		}

		data, err := yaml.Marshal(report)
		if err != nil {
			return fmt.Errorf("encode report for %s: %w", report.Source, err)
		}

		path := filepath.Join(string(dir), reportFileName(report.Source))
		if err := os.WriteFile(path, data, 0o600); err != nil {
			slog.Error("Failed to write report", "path", path, "error", err)
			return fmt.Errorf("write report %s: %w", path, err)
		}
	}

	slog.Debug("Saved reports", "dir", dir, "count", len(reports))

	return nil
}

// LoadReports reads every report in dir, sorted by source path.
func (s *YAMLReportStore) LoadReports(ctx context.Context, dir m.Path) ([]m.FileReport, error) {
	entries, err := os.ReadDir(string(dir))
	if err != nil {
		return nil, fmt.Errorf("read reports dir: %w", err)
	}

	var reports []m.FileReport

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if entry.IsDir() || !strings.HasSuffix(entry.Name(), reportExt) {
			continue
		}

		path := filepath.Join(string(dir), entry.Name())

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read report %s: %w", path, err)
		}

		var report m.FileReport
		if err := yaml.Unmarshal(data, &report); err != nil {
			slog.Warn("Skipping unreadable report", "path", path, "error", err)
			continue
		}

		reports = append(reports, report)
	}

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].Source < reports[j].Source
	})

	return reports, nil
}

// CleanReports deletes the reports of the given sources. Missing reports are
// ignored.
func (s *YAMLReportStore) CleanReports(ctx context.Context, dir m.Path, sources []m.Path) error {
	for _, source := range sources {
		if err := ctx.Err(); err != nil {
			return err
		}

		path := filepath.Join(string(dir), reportFileName(source))
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			slog.Error("Failed to remove report", "path", path, "error", err)
			return fmt.Errorf("remove report %s: %w", path, err)
		}
	}

	return nil
}

// ListShards returns the shard directories below dir in name order.
func (s *YAMLReportStore) ListShards(_ context.Context, dir m.Path) ([]m.Path, error) {
	entries, err := os.ReadDir(string(dir))
	if err != nil {
		return nil, fmt.Errorf("read reports dir: %w", err)
	}

	var shards []m.Path

	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), shardPrefix) {
			shards = append(shards, m.Path(filepath.Join(string(dir), entry.Name())))
		}
	}

	sort.Slice(shards, func(i, j int) bool { return shards[i] < shards[j] })

	return shards, nil
}

func reportFileName(source m.Path) string {
	sum := sha256.Sum256([]byte(source))
	return fmt.Sprintf("%x%s", sum[:8], reportExt)
}
