// Package backup keeps rotating, zstd-compressed copies of the gtadmin
// database file.
//
// On startup a copy is taken when the newest one is older than the
// configured interval. Copies are named after the database file:
// gtadmin.db.bak.1.zst is the newest, higher numbers are older, and
// anything past MaxCount is removed.
package backup

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/diogenes-ai-code/gtadmin/internal/config"
)

// Suffix ends every backup file name.
const Suffix = ".zst"

// Backup describes one backup file.
type Backup struct {
	Path    string
	Number  int
	ModTime time.Time
	Size    int64
}

// Manager handles database backup operations.
type Manager struct {
	dbPath    string
	backupDir string
	prefix    string
	cfg       config.BackupConfig
	logger    *slog.Logger
	now       func() time.Time
}

// NewManager creates a backup manager for the database at dbPath. Backups
// go to cfg.Path, or next to the database when it is empty.
func NewManager(dbPath string, cfg config.BackupConfig, logger *slog.Logger) *Manager {
	backupDir := cfg.Path
	if backupDir == "" {
		backupDir = filepath.Dir(dbPath)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		dbPath:    dbPath,
		backupDir: backupDir,
		prefix:    filepath.Base(dbPath) + ".bak.",
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// Dir returns the directory where backups are stored.
func (m *Manager) Dir() string {
	return m.backupDir
}

// FileName returns the file name of backup number n.
func (m *Manager) FileName(n int) string {
	return m.prefix + strconv.Itoa(n) + Suffix
}

// BackupIfNeeded takes a backup when backups are enabled, the database
// exists and the newest backup is older than the interval. It returns the
// new backup path, or "" when no backup was taken.
func (m *Manager) BackupIfNeeded() (string, error) {
	if !m.cfg.Enabled {
		return "", nil
	}
	if _, err := os.Stat(m.dbPath); os.IsNotExist(err) {
		return "", nil
	}

	backups, err := m.List()
	if err != nil {
		return "", fmt.Errorf("checking if backup needed: %w", err)
	}
	if len(backups) > 0 {
		interval := time.Duration(m.cfg.IntervalHours) * time.Hour
		if m.now().Sub(backups[0].ModTime) <= interval {
			return "", nil
		}
	}

	path, err := m.Create()
	if err != nil {
		return "", fmt.Errorf("creating backup: %w", err)
	}
	return path, nil
}

// Create rotates the existing backups and writes a fresh one as number 1.
func (m *Manager) Create() (string, error) {
	if err := os.MkdirAll(m.backupDir, 0755); err != nil {
		return "", fmt.Errorf("creating backup directory: %w", err)
	}
	if err := m.rotate(); err != nil {
		return "", fmt.Errorf("rotating backups: %w", err)
	}

	path := filepath.Join(m.backupDir, m.FileName(1))
	if err := compressFile(m.dbPath, path); err != nil {
		return "", fmt.Errorf("compressing database: %w", err)
	}
	m.logger.Info("database backed up", "path", path)
	return path, nil
}

// List returns the existing backups, newest first.
func (m *Manager) List() ([]Backup, error) {
	entries, err := os.ReadDir(m.backupDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading backup directory: %w", err)
	}

	var backups []Backup
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		n, ok := m.number(entry.Name())
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("stat backup file: %w", err)
		}
		backups = append(backups, Backup{
			Path:    filepath.Join(m.backupDir, entry.Name()),
			Number:  n,
			ModTime: info.ModTime(),
			Size:    info.Size(),
		})
	}

	slices.SortFunc(backups, func(a, b Backup) int { return a.Number - b.Number })
	return backups, nil
}

// number extracts N from a backup file name.
func (m *Manager) number(name string) (int, bool) {
	if !strings.HasPrefix(name, m.prefix) || !strings.HasSuffix(name, Suffix) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, m.prefix), Suffix))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// rotate shifts every backup up one number, oldest first, and removes the
// ones that would exceed MaxCount.
func (m *Manager) rotate() error {
	backups, err := m.List()
	if err != nil {
		return err
	}

	for i := len(backups) - 1; i >= 0; i-- {
		b := backups[i]
		next := b.Number + 1
		if next > m.cfg.MaxCount {
			if err := os.Remove(b.Path); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("deleting old backup %s: %w", b.Path, err)
			}
			continue
		}
		newPath := filepath.Join(m.backupDir, m.FileName(next))
		if err := os.Rename(b.Path, newPath); err != nil {
			return fmt.Errorf("renaming backup %s to %s: %w", b.Path, newPath, err)
		}
	}
	return nil
}

// Restore overwrites the database file with backup number n. The database
// must not be open.
func (m *Manager) Restore(n int) error {
	path := filepath.Join(m.backupDir, m.FileName(n))
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("backup %d: %w", n, err)
	}
	if err := decompressFile(path, m.dbPath); err != nil {
		return fmt.Errorf("restoring backup %d: %w", n, err)
	}
	m.logger.Info("database restored", "backup", path)
	return nil
}

// compressFile writes a zstd-compressed copy of src to dst, keeping the
// source permissions.
func compressFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening source: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	out, err := os.OpenFile(dst, os.O_RDWR|os.O_CREATE|os.O_TRUNC, info.Mode())
	if err != nil {
		return fmt.Errorf("creating destination: %w", err)
	}
	defer out.Close()

	enc, err := zstd.NewWriter(out)
	if err != nil {
		return err
	}
	if _, err := io.Copy(enc, in); err != nil {
		enc.Close()
		return fmt.Errorf("copying data: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finishing frame: %w", err)
	}
	return out.Sync()
}

// decompressFile writes the decompressed contents of src to dst.
func decompressFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening backup: %w", err)
	}
	defer in.Close()

	dec, err := zstd.NewReader(in)
	if err != nil {
		return err
	}
	defer dec.Close()

	out, err := os.OpenFile(dst, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("creating database file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, dec); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return out.Sync()
}
