// Package updater performs in-place self-updates from GitHub releases.
package updater

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/smazurov/lightnode/internal/logging"
	"github.com/smazurov/lightnode/internal/version"
)

// State of the update process.
type State string

// Update states.
const (
	StateIdle       State = "idle"
	StateChecking   State = "checking"
	StateAvailable  State = "available"
	StateApplying   State = "applying"
	StateRestarting State = "restarting"
	StateError      State = "error"
)

// Info describes an available update.
type Info struct {
	CurrentVersion  string    `json:"current_version"`
	LatestVersion   string    `json:"latest_version"`
	ReleaseNotes    string    `json:"release_notes,omitempty"`
	ReleaseURL      string    `json:"release_url,omitempty"`
	PublishedAt     time.Time `json:"published_at,omitzero"`
	UpdateAvailable bool      `json:"update_available"`
}

// Status is the current updater state.
type Status struct {
	State          State      `json:"state"`
	CurrentVersion string     `json:"current_version"`
	TargetVersion  string     `json:"target_version,omitempty"`
	Error          string     `json:"error,omitempty"`
	LastChecked    *time.Time `json:"last_checked,omitempty"`
	Enabled        bool       `json:"enabled"`
	DisabledReason string     `json:"disabled_reason,omitempty"`
}

// Service checks for and applies updates of the running binary.
type Service struct {
	repository selfupdate.Repository
	updater    *selfupdate.Updater
	logger     *slog.Logger

	enabled        bool
	disabledReason string

	mu            sync.RWMutex
	state         State
	latestRelease *selfupdate.Release
	lastChecked   *time.Time
	lastError     error
}

// NewService creates the updater for the given GitHub repo slug
// (e.g. "smazurov/lightnode"). When the binary location is not writable
// the service stays constructed but disabled.
func NewService(repository string) (*Service, error) {
	logger := logging.GetLogger("updater")

	if ok, reason := checkWritePermission(); !ok {
		logger.Warn("update service disabled", "reason", reason)
		return &Service{
			state:          StateIdle,
			disabledReason: reason,
			logger:         logger,
		}, nil
	}

	source, err := selfupdate.NewGitHubSource(selfupdate.GitHubConfig{})
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub source: %w", err)
	}
	u, err := selfupdate.NewUpdater(selfupdate.Config{Source: source})
	if err != nil {
		return nil, fmt.Errorf("failed to create updater: %w", err)
	}

	return &Service{
		repository: selfupdate.ParseSlug(repository),
		updater:    u,
		state:      StateIdle,
		enabled:    true,
		logger:     logger,
	}, nil
}

// IsEnabled reports whether updates can be applied.
func (s *Service) IsEnabled() bool {
	return s.enabled
}

// DisabledReason explains why updates are disabled, or returns "" when they
// are not.
func (s *Service) DisabledReason() string {
	return s.disabledReason
}

// Check queries GitHub for the latest release and compares it against the
// running version without downloading anything.
func (s *Service) Check(ctx context.Context) (*Info, error) {
	if !s.enabled {
		return nil, fmt.Errorf("update service disabled: %s", s.disabledReason)
	}

	s.setState(StateChecking)
	current := version.Version

	release, found, err := s.updater.DetectLatest(ctx, s.repository)
	now := time.Now()
	s.mu.Lock()
	s.lastChecked = &now
	s.mu.Unlock()

	if err != nil {
		s.setError(err)
		return nil, fmt.Errorf("failed to check for updates: %w", err)
	}
	if !found {
		err := fmt.Errorf("repository has no releases")
		s.setError(err)
		return nil, err
	}

	// A dev build is always considered outdated.
	if current != "dev" && !release.GreaterThan(current) {
		s.setState(StateIdle)
		return &Info{
			CurrentVersion:  current,
			LatestVersion:   release.Version(),
			UpdateAvailable: false,
		}, nil
	}

	s.mu.Lock()
	s.latestRelease = release
	s.state = StateAvailable
	s.mu.Unlock()

	return &Info{
		CurrentVersion:  current,
		LatestVersion:   release.Version(),
		ReleaseNotes:    release.ReleaseNotes,
		ReleaseURL:      release.URL,
		PublishedAt:     release.PublishedAt,
		UpdateAvailable: true,
	}, nil
}

// Apply downloads the latest release over the running binary and triggers
// a restart via SIGTERM so systemd brings up the new version.
func (s *Service) Apply(ctx context.Context) error {
	if !s.enabled {
		return fmt.Errorf("update service disabled: %s", s.disabledReason)
	}

	if s.getState() != StateAvailable {
		info, err := s.Check(ctx)
		if err != nil {
			return err
		}
		if !info.UpdateAvailable {
			return fmt.Errorf("no update available")
		}
	}

	s.setState(StateApplying)

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		s.setError(err)
		return fmt.Errorf("failed to get executable path: %w", err)
	}

	s.mu.RLock()
	release := s.latestRelease
	s.mu.RUnlock()

	if err := s.updater.UpdateTo(ctx, release, exe); err != nil {
		s.setError(err)
		return fmt.Errorf("failed to apply update: %w", err)
	}

	s.setState(StateRestarting)
	s.logger.Info("update applied, triggering restart", "version", release.Version())

	// Short delay so the HTTP response makes it out before the process
	// asks to be restarted.
	go func() {
		time.Sleep(500 * time.Millisecond)
		_ = syscall.Kill(os.Getpid(), syscall.SIGTERM)
	}()

	return nil
}

// Status returns the current updater state.
func (s *Service) Status() *Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := &Status{
		State:          s.state,
		CurrentVersion: version.Version,
		LastChecked:    s.lastChecked,
		Enabled:        s.enabled,
		DisabledReason: s.disabledReason,
	}
	if s.latestRelease != nil {
		status.TargetVersion = s.latestRelease.Version()
	}
	if s.lastError != nil {
		status.Error = s.lastError.Error()
	}
	return status
}

func (s *Service) getState() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Service) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.lastError = nil
	s.mu.Unlock()
}

func (s *Service) setError(err error) {
	s.mu.Lock()
	s.state = StateError
	s.lastError = err
	s.mu.Unlock()
}

// checkWritePermission verifies the binary's directory accepts writes by
// creating and removing a probe file next to the executable.
func checkWritePermission() (bool, string) {
	exe, err := os.Executable()
	if err != nil {
		return false, fmt.Sprintf("failed to get executable path: %v", err)
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return false, fmt.Sprintf("failed to resolve symlinks: %v", err)
	}

	tmp := filepath.Join(filepath.Dir(exe), ".lightnode.update.test")
	f, err := os.Create(tmp)
	if err != nil {
		return false, fmt.Sprintf("no write permission to %s: %v", filepath.Dir(exe), err)
	}
	f.Close()
	os.Remove(tmp)
	return true, ""
}
