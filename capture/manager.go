package capture

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/arloliu/caplog/errs"
	"github.com/arloliu/caplog/internal/collision"
	"github.com/arloliu/caplog/internal/options"
)

// maxDirectoryAttempts bounds the suffixes tried when a session directory already exists.
const maxDirectoryAttempts = 1000

// Manager owns a set of logs that share a root directory and a rotation interval.
//
// Each Start creates "<root>/<timestamp>" and starts every log in it. RestartIfNeeded,
// polled by the application, starts a new directory once the rotation interval has
// elapsed. All control operations are serialized by one mutex; IsLogging is lock-free.
//
// The manager does not synchronize Record calls of its logs with rotation: callers must
// not record into a log while a control operation that restarts it is running.
type Manager struct {
	mu  sync.Mutex
	cfg *ManagerConfig

	root           string
	logs           []*Log
	maxLogDuration time.Duration
	startTime      time.Time
	currentDir     string

	logging   atomic.Bool
	rotations atomic.Uint64
}

// NewManager creates a manager writing below root and creates root if needed.
//
// Parameters:
//   - root: Root directory of all capture sessions
//   - logs: Initial logs, with unique names
//   - opts: Optional configuration
//
// Returns:
//   - *Manager: Stopped manager
//   - error: errs.ErrEmptyDirectory, errs.ErrNilLog, errs.ErrDuplicateName or errs.ErrIO
func NewManager(root string, logs []*Log, opts ...ManagerOption) (*Manager, error) {
	cfg := newManagerConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	if err := checkLogs(logs); err != nil {
		return nil, err
	}
	if err := makeRoot(root); err != nil {
		return nil, err
	}

	return &Manager{
		cfg:            cfg,
		root:           root,
		logs:           slices.Clone(logs),
		maxLogDuration: cfg.maxLogDuration,
	}, nil
}

func checkLogs(logs []*Log) error {
	tracker := collision.NewTracker(len(logs))
	for i, l := range logs {
		if l == nil {
			return fmt.Errorf("%w: position %d", errs.ErrNilLog, i)
		}
		if _, err := tracker.Track(l.Name()); err != nil {
			return fmt.Errorf("manager logs: %w", err)
		}
	}

	return nil
}

func makeRoot(root string) error {
	if root == "" {
		return fmt.Errorf("%w: manager root", errs.ErrEmptyDirectory)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("%w: create root %s: %w", errs.ErrIO, root, err)
	}

	return nil
}

// PushBack adds l to the manager.
//
// A log whose name is already registered is rejected and the manager is left unchanged.
// When the manager is logging, every log is stopped and all logs, including l, are
// restarted in a new directory. If that restart fails, l is removed again and the
// previous logs are restarted; the returned error combines both failures.
func (m *Manager) PushBack(l *Log) error {
	if l == nil {
		return errs.ErrNilLog
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := checkLogs(append(slices.Clone(m.logs), l)); err != nil {
		return err
	}

	if !m.logging.Load() {
		m.logs = append(m.logs, l)
		return nil
	}

	m.stopAllLogged()
	m.logs = append(m.logs, l)
	if _, err := m.start(); err != nil {
		m.logs = m.logs[:len(m.logs)-1]
		_, restoreErr := m.start()

		return multierr.Combine(err, restoreErr)
	}

	return nil
}

// SetRootDirectory changes the root directory, creating it if needed.
//
// A logging manager is stopped and restarted below the new root. If the restart fails,
// the previous root is restored and restarted.
func (m *Manager) SetRootDirectory(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := makeRoot(path); err != nil {
		return err
	}

	old := m.root
	m.root = path
	if !m.logging.Load() {
		return nil
	}

	m.stopAllLogged()
	if _, err := m.start(); err != nil {
		m.root = old
		_, restoreErr := m.start()

		return multierr.Combine(err, restoreErr)
	}

	return nil
}

// SetMaxLogDuration sets the rotation interval used by RestartIfNeeded.
func (m *Manager) SetMaxLogDuration(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%w: %s", errs.ErrInvalidDuration, d)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.maxLogDuration = d

	return nil
}

// Start creates a new timestamped directory below the root and starts every log in it.
//
// If any log fails to start, all logs are stopped, the manager is left stopped and the
// error is returned.
//
// Returns:
//   - string: The new session directory
//   - error: errs.ErrIO or errs.ErrEmptyDirectory from the failing log
func (m *Manager) Start() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	dir, err := m.start()
	if err != nil {
		return "", err
	}
	m.cfg.logger.Info("capture started", zap.String("dir", dir), zap.Int("logs", len(m.logs)))

	return dir, nil
}

// Stop stops every log. Errors of individual logs are combined; every log is stopped
// regardless.
func (m *Manager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	err := m.stopAll()
	m.logging.Store(false)
	m.cfg.logger.Info("capture stopped", zap.String("dir", m.currentDir))

	return err
}

// RestartIfNeeded starts a new session directory when the manager is logging and the
// rotation interval has elapsed since the last start. Logs are not stopped first: each
// one opens its new file before closing the old one.
//
// Returns:
//   - bool: Whether a rotation happened
//   - error: Start failure, after which the manager is stopped
func (m *Manager) RestartIfNeeded() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.logging.Load() {
		return false, nil
	}
	if m.cfg.clock.Since(m.startTime) < m.maxLogDuration {
		return false, nil
	}

	prev := m.currentDir
	dir, err := m.start()
	if err != nil {
		m.cfg.logger.Error("capture rotation failed", zap.String("previous_dir", prev), zap.Error(err))
		return false, err
	}
	m.rotations.Add(1)
	m.cfg.logger.Info("capture rotated", zap.String("previous_dir", prev), zap.String("dir", dir))

	return true, nil
}

// start creates the session directory and starts every log. m.mu must be held.
func (m *Manager) start() (string, error) {
	now := m.cfg.clock.Now()

	dir, err := m.makeSessionDir(now)
	if err == nil {
		for _, l := range m.logs {
			if err = l.Start(dir); err != nil {
				break
			}
		}
	}
	if err != nil {
		err = multierr.Combine(err, m.stopAll())
		m.logging.Store(false)

		return "", err
	}

	m.startTime = now
	m.currentDir = dir
	m.logging.Store(true)

	return dir, nil
}

// makeSessionDir creates "<root>/<timestamp>". When that directory already exists, for
// instance after two starts within one second, a numeric suffix is appended so that the
// files of the earlier session are not truncated.
func (m *Manager) makeSessionDir(now time.Time) (string, error) {
	if err := os.MkdirAll(m.root, 0o755); err != nil {
		return "", fmt.Errorf("%w: create root %s: %w", errs.ErrIO, m.root, err)
	}

	base := filepath.Join(m.root, now.Format(DirectoryLayout))
	dir := base
	for i := 1; i <= maxDirectoryAttempts; i++ {
		err := os.Mkdir(dir, 0o755)
		if err == nil {
			return dir, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("%w: create session directory %s: %w", errs.ErrIO, dir, err)
		}
		dir = base + "_" + strconv.Itoa(i)
	}

	return "", fmt.Errorf("%w: create session directory %s: too many sessions", errs.ErrIO, base)
}

func (m *Manager) stopAll() error {
	var err error
	for _, l := range m.logs {
		err = multierr.Append(err, l.Stop())
	}

	return err
}

// stopAllLogged stops every log before a restart. Close failures of the old files do not
// prevent the restart and are only logged.
func (m *Manager) stopAllLogged() {
	if err := m.stopAll(); err != nil {
		m.cfg.logger.Error("failed to stop capture logs", zap.Error(err))
	}
	m.logging.Store(false)
}

// IsLogging reports whether the manager is logging. It does not take the manager lock.
func (m *Manager) IsLogging() bool {
	return m.logging.Load()
}

// RootDirectory returns the root directory.
func (m *Manager) RootDirectory() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.root
}

// MaxLogDuration returns the rotation interval.
func (m *Manager) MaxLogDuration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.maxLogDuration
}

// CurrentDirectory returns the directory of the current or last session, or "" if the
// manager was never started.
func (m *Manager) CurrentDirectory() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.currentDir
}

// Logs returns the registered logs in registration order.
func (m *Manager) Logs() []*Log {
	m.mu.Lock()
	defer m.mu.Unlock()

	return slices.Clone(m.logs)
}

// Rotations returns the number of rotations performed by RestartIfNeeded.
func (m *Manager) Rotations() uint64 {
	return m.rotations.Load()
}
