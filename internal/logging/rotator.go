package logging

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// DefaultLogFileName is the active log file inside the log directory.
const DefaultLogFileName = "upgate.log"

// RotatorConfig controls size and age based rotation of the log file.
type RotatorConfig struct {
	Dir        string
	FileName   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Rotator is an io.WriteCloser that rolls the log file over once it reaches MaxSizeMB.
// Rolled files are named <file>.<timestamp>[.gz].
type Rotator struct {
	mu      sync.Mutex
	dir     string
	name    string
	maxSize int64
	maxAge  time.Duration
	backups int
	gzip    bool
	now     func() time.Time

	file *os.File
	size int64
}

// NewRotator opens (or creates) the active log file.
func NewRotator(cfg RotatorConfig) (*Rotator, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("log directory is required")
	}
	if cfg.FileName == "" {
		cfg.FileName = DefaultLogFileName
	}
	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = 10
	}
	if err := os.MkdirAll(cfg.Dir, 0o700); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	r := &Rotator{
		dir:     cfg.Dir,
		name:    cfg.FileName,
		maxSize: int64(cfg.MaxSizeMB) * 1024 * 1024,
		maxAge:  time.Duration(cfg.MaxAgeDays) * 24 * time.Hour,
		backups: cfg.MaxBackups,
		gzip:    cfg.Compress,
		now:     time.Now,
	}
	if err := r.open(); err != nil {
		return nil, err
	}
	return r, nil
}

// Path returns the active log file path.
func (r *Rotator) Path() string {
	return filepath.Join(r.dir, r.name)
}

func (r *Rotator) open() error {
	if info, err := os.Stat(r.Path()); err == nil {
		r.size = info.Size()
	} else {
		r.size = 0
	}

	f, err := os.OpenFile(r.Path(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	r.file = f
	return nil
}

func (r *Rotator) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		if err := r.open(); err != nil {
			return 0, err
		}
	}
	if r.size > 0 && r.size+int64(len(p)) > r.maxSize {
		if err := r.rotate(); err != nil {
			return 0, err
		}
	}

	n, err := r.file.Write(p)
	r.size += int64(n)
	return n, err
}

func (r *Rotator) rotate() error {
	if err := r.file.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to close log file: %v\n", err)
	}
	r.file = nil

	rolled := fmt.Sprintf("%s.%s", r.Path(), r.now().Format("20060102-150405.000"))
	if err := os.Rename(r.Path(), rolled); err != nil {
		return fmt.Errorf("rotate log file: %w", err)
	}

	if r.gzip {
		if err := gzipFile(rolled); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to compress %s: %v\n", rolled, err)
		} else if err := os.Remove(rolled); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to remove %s: %v\n", rolled, err)
		}
	}

	r.prune()
	return r.open()
}

func gzipFile(path string) (err error) {
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(path + ".gz")
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()

	zw := gzip.NewWriter(out)
	if _, err = io.Copy(zw, in); err != nil {
		return err
	}
	return zw.Close()
}

// prune drops rolled files older than maxAge, then keeps the newest maxBackups.
func (r *Rotator) prune() {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return
	}

	var rolled []os.FileInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), r.name+".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if r.maxAge > 0 && r.now().Sub(info.ModTime()) > r.maxAge {
			_ = os.Remove(filepath.Join(r.dir, entry.Name()))
			continue
		}
		rolled = append(rolled, info)
	}

	if r.backups <= 0 || len(rolled) <= r.backups {
		return
	}
	sort.Slice(rolled, func(i, j int) bool {
		return rolled[i].ModTime().Before(rolled[j].ModTime())
	})
	for _, info := range rolled[:len(rolled)-r.backups] {
		_ = os.Remove(filepath.Join(r.dir, info.Name()))
	}
}

// Close closes the active log file.
func (r *Rotator) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}
