// Package scheduler writes periodic CSV backups of the address book.
package scheduler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kimhsiao/addressbook/internal/export"
	"github.com/kimhsiao/addressbook/internal/logging"
)

// BackupInterval defines the scheduling frequency.
type BackupInterval string

const (
	IntervalManual  BackupInterval = "manual"
	IntervalDaily   BackupInterval = "daily"
	IntervalWeekly  BackupInterval = "weekly"
	IntervalMonthly BackupInterval = "monthly"
)

const backupPrefix = "AddressBookBackup-"

// Exporter writes an export file.
type Exporter interface {
	ExportFile(ctx context.Context, path string) (*export.ExportResult, error)
}

// Config holds the scheduler configuration.
type Config struct {
	Interval       BackupInterval // How often to back up
	RetentionCount int            // Number of backups to keep (0 = unlimited)
	Dir            string         // Directory to store backups (default: "backups")
}

// Scheduler manages automatic backups.
type Scheduler struct {
	exporter Exporter
	config   Config
	now      func() time.Time

	mu       sync.Mutex
	started  bool
	ticker   *time.Ticker
	stopCh   chan struct{}
	stopOnce sync.Once
	done     sync.WaitGroup
}

// New creates a new backup scheduler.
func New(exporter Exporter, config Config) *Scheduler {
	if config.Dir == "" {
		config.Dir = "backups"
	}
	if config.RetentionCount < 0 {
		config.RetentionCount = 0
	}
	if config.Interval == "" {
		config.Interval = IntervalManual
	}

	return &Scheduler{
		exporter: exporter,
		config:   config,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
}

// ParseInterval maps a configuration string to a BackupInterval.
func ParseInterval(s string) (BackupInterval, error) {
	switch i := BackupInterval(strings.ToLower(strings.TrimSpace(s))); i {
	case "", IntervalManual:
		return IntervalManual, nil
	case IntervalDaily, IntervalWeekly, IntervalMonthly:
		return i, nil
	default:
		return "", fmt.Errorf("unknown backup interval: %s", s)
	}
}

// Start begins periodic backups, running the first one immediately.
// In manual mode it does nothing. A scheduler starts at most once.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.config.Interval == IntervalManual {
		logging.Info("backup scheduler in manual mode, automatic backups disabled")
		return nil
	}

	dur, err := s.intervalDuration()
	if err != nil {
		return fmt.Errorf("invalid interval: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return fmt.Errorf("backup scheduler already started")
	}
	s.started = true

	s.ticker = time.NewTicker(dur)
	logging.Info("backup scheduler started", map[string]interface{}{
		"interval":        string(s.config.Interval),
		"retention_count": s.config.RetentionCount,
		"dir":             s.config.Dir,
	})

	s.done.Add(1)
	go func() {
		defer s.done.Done()
		if _, err := s.RunOnce(ctx); err != nil {
			logging.Error("initial backup failed", err)
		}
		for {
			select {
			case <-s.ticker.C:
				if _, err := s.RunOnce(ctx); err != nil {
					logging.Error("scheduled backup failed", err)
				}
			case <-s.stopCh:
				logging.Info("backup scheduler stopped")
				return
			case <-ctx.Done():
				logging.Info("backup scheduler context cancelled")
				return
			}
		}
	}()

	return nil
}

// Stop shuts down the scheduler and waits for a running backup to finish.
// It is safe to call more than once.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		s.mu.Lock()
		if s.ticker != nil {
			s.ticker.Stop()
		}
		s.mu.Unlock()
	})
	s.done.Wait()
}

// RunOnce writes one backup and applies the retention policy.
func (s *Scheduler) RunOnce(ctx context.Context) (*export.ExportResult, error) {
	path := filepath.Join(s.config.Dir, backupPrefix+s.now().Format("20060102T150405.000")+".csv")

	result, err := s.exporter.ExportFile(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("backup failed: %w", err)
	}

	logging.Info("backup completed", map[string]interface{}{
		"run_id":     result.RunID,
		"file":       result.FilePath,
		"size_bytes": result.SizeBytes,
		"item_count": result.ItemCount,
	})

	if s.config.RetentionCount > 0 {
		if err := s.applyRetentionPolicy(); err != nil {
			logging.Error("backup retention failed", err)
		}
	}
	return result, nil
}

// Config returns the scheduler configuration.
func (s *Scheduler) Config() Config {
	return s.config
}

func (s *Scheduler) intervalDuration() (time.Duration, error) {
	switch s.config.Interval {
	case IntervalDaily:
		return 24 * time.Hour, nil
	case IntervalWeekly:
		return 7 * 24 * time.Hour, nil
	case IntervalMonthly:
		// Approximate as 30 days
		return 30 * 24 * time.Hour, nil
	case IntervalManual:
		return 0, fmt.Errorf("manual interval has no duration")
	default:
		return 0, fmt.Errorf("unknown interval: %s", s.config.Interval)
	}
}

// applyRetentionPolicy removes the oldest backups beyond the retention count.
func (s *Scheduler) applyRetentionPolicy() error {
	backups, err := listBackups(s.config.Dir)
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) <= s.config.RetentionCount {
		return nil
	}

	for _, path := range backups[:len(backups)-s.config.RetentionCount] {
		if err := os.Remove(path); err != nil {
			logging.Error("failed to delete old backup", err, map[string]interface{}{"path": path})
			continue
		}
		logging.Info("deleted old backup", map[string]interface{}{"path": path})
	}
	return nil
}

// listBackups returns backup files in dir, oldest first. Names embed the timestamp.
func listBackups(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var backups []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, backupPrefix) || filepath.Ext(name) != ".csv" {
			continue
		}
		backups = append(backups, filepath.Join(dir, name))
	}
	sort.Strings(backups)
	return backups, nil
}
