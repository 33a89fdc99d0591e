// Package filesystem contains filesystem-based adapter implementations.
package filesystem

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/example/focusguard/internal/ports/secondary"
)

// BlocklistShield implements secondary.ShieldService by materializing the
// selected targets as a blocklist file. External blockers (a hosts-file
// updater, a DNS filter, a browser extension) watch that file; its presence
// means the shield is on.
type BlocklistShield struct {
	path    string
	targets []string

	// Optional commands run after the file is written or removed.
	onStart []string
	onStop  []string
}

// BlocklistOption configures a BlocklistShield.
type BlocklistOption func(*BlocklistShield)

// WithHooks sets commands to run after the shield engages or disengages.
// Each command is split on whitespace; an empty string disables the hook.
func WithHooks(onStart, onStop string) BlocklistOption {
	return func(s *BlocklistShield) {
		s.onStart = strings.Fields(onStart)
		s.onStop = strings.Fields(onStop)
	}
}

// NewBlocklistShield creates a shield writing targets to path.
// If path is empty, defaults to ~/.focusguard/blocklist.
func NewBlocklistShield(path string, targets []string, opts ...BlocklistOption) (*BlocklistShield, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, ".focusguard", "blocklist")
	}

	var cleaned []string
	for _, t := range targets {
		if t = strings.TrimSpace(t); t != "" {
			cleaned = append(cleaned, t)
		}
	}

	s := &BlocklistShield{path: path, targets: cleaned}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

var (
	_ secondary.ShieldService = (*BlocklistShield)(nil)
	_ secondary.ShieldProbe   = (*BlocklistShield)(nil)
)

// Path returns the blocklist file location.
func (s *BlocklistShield) Path() string {
	return s.path
}

// StartBlocking writes the blocklist. Rewriting an existing file is harmless.
func (s *BlocklistShield) StartBlocking(ctx context.Context) error {
	if len(s.targets) == 0 {
		return fmt.Errorf("no shield targets selected")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create blocklist directory: %w", err)
	}

	// Write to a sibling then rename so watchers never see a partial list.
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".blocklist-*")
	if err != nil {
		return fmt.Errorf("failed to create blocklist: %w", err)
	}
	content := strings.Join(s.targets, "\n") + "\n"
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write blocklist: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write blocklist: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to install blocklist: %w", err)
	}

	return s.runHook(ctx, s.onStart)
}

// StopBlocking removes the blocklist. A missing file is not an error.
func (s *BlocklistShield) StopBlocking(ctx context.Context) error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove blocklist: %w", err)
	}
	return s.runHook(ctx, s.onStop)
}

// TargetsConfigured reports whether any target is selected.
func (s *BlocklistShield) TargetsConfigured(ctx context.Context) (bool, error) {
	return len(s.targets) > 0, nil
}

// Engaged reports whether the blocklist file exists.
func (s *BlocklistShield) Engaged(ctx context.Context) (bool, error) {
	_, err := os.Stat(s.path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat blocklist: %w", err)
	}
	return true, nil
}

func (s *BlocklistShield) runHook(ctx context.Context, argv []string) error {
	if len(argv) == 0 {
		return nil
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Env = append(os.Environ(), "FOCUSGUARD_BLOCKLIST="+s.path)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s failed: %w: %s", argv[0], err, strings.TrimSpace(string(output)))
	}
	return nil
}
