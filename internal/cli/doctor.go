package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/focusguard/internal/adapters/filesystem"
	redisadapter "github.com/example/focusguard/internal/adapters/redis"
	"github.com/example/focusguard/internal/config"
	"github.com/example/focusguard/internal/db"
	"github.com/example/focusguard/internal/wire"
)

// CheckResult represents the outcome of a single check
type CheckResult struct {
	Name    string
	Status  string // "✓", "⚠", "✗"
	Details string // Only shown if Status != "✓"
}

// DoctorCmd returns the doctor command for environment validation
func DoctorCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Validate the focusguard environment",
		Long: `Health check for focusguard.

Validates:
- Config file parses and validates
- Database opens and its schema is current
- Shield targets are configured and the blocklist location is writable
- Settings backend is reachable (Redis only)

Examples:
  focusguard doctor              # Run full health check
  focusguard doctor --quiet      # Exit code only (0=healthy, 1=issues)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			configResult, cfg := checkConfig(wire.ConfigPath())
			results := []CheckResult{configResult}
			if cfg != nil {
				results = append(results, checkDatabase(cfg))
				results = append(results, checkShield(ctx, cfg))
				results = append(results, checkSettingsBackend(ctx, cfg))
			}

			hasErrors := false
			for _, r := range results {
				if r.Status == "✗" {
					hasErrors = true
					break
				}
			}

			if !quiet {
				printResults(os.Stdout, results, hasErrors)
			}

			if hasErrors {
				return fmt.Errorf("environment validation failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode - exit code only")

	return cmd
}

func printResults(out io.Writer, results []CheckResult, hasErrors bool) {
	// Print compact table
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Check              Status")
	fmt.Fprintln(out, "─────────────────────────")
	for _, r := range results {
		fmt.Fprintf(out, "%-18s %s\n", r.Name, r.Status)
	}
	fmt.Fprintln(out)

	// Print details for non-passing checks
	hasDetails := false
	for _, r := range results {
		if r.Status != "✓" && r.Details != "" {
			if !hasDetails {
				fmt.Fprintln(out, "Details:")
				hasDetails = true
			}
			fmt.Fprintf(out, "\n%s:\n%s\n", r.Name, r.Details)
		}
	}

	if hasErrors {
		fmt.Fprintln(out, "\n⚠ Issues found. Run 'focusguard config show' to inspect the configuration.")
	} else {
		fmt.Fprintln(out, "All checks passed.")
	}
}

// checkConfig loads the config file. A missing file is a warning: defaults apply.
func checkConfig(path string) (CheckResult, *config.Config) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return CheckResult{Name: "Config", Status: "✗", Details: "  " + err.Error()}, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return CheckResult{
			Name:    "Config",
			Status:  "⚠",
			Details: fmt.Sprintf("  %s not found, using defaults\n  Run: focusguard config init --target <host>", path),
		}, cfg
	}
	return CheckResult{Name: "Config", Status: "✓"}, cfg
}

// checkDatabase opens the database, which also applies pending migrations.
func checkDatabase(cfg *config.Config) CheckResult {
	path := cfg.DBPath
	if path == "" {
		var err error
		if path, err = db.DefaultPath(); err != nil {
			return CheckResult{Name: "Database", Status: "✗", Details: "  " + err.Error()}
		}
	}

	database, err := db.Open(path)
	if err != nil {
		return CheckResult{Name: "Database", Status: "✗", Details: fmt.Sprintf("  %s: %v", path, err)}
	}
	defer database.Close()

	if err := database.Ping(); err != nil {
		return CheckResult{Name: "Database", Status: "✗", Details: fmt.Sprintf("  %s: %v", path, err)}
	}
	return CheckResult{Name: "Database", Status: "✓"}
}

// checkShield verifies targets exist and reports a shield left engaged.
func checkShield(ctx context.Context, cfg *config.Config) CheckResult {
	shield, err := filesystem.NewBlocklistShield(cfg.Shield.TargetsFile, cfg.Shield.Targets)
	if err != nil {
		return CheckResult{Name: "Shield", Status: "✗", Details: "  " + err.Error()}
	}

	ok, _ := shield.TargetsConfigured(ctx)
	if !ok {
		return CheckResult{
			Name:    "Shield",
			Status:  "✗",
			Details: "  No shield targets configured; blocking can never start\n  Add hosts under shield.targets",
		}
	}

	engaged, err := shield.Engaged(ctx)
	if err != nil {
		return CheckResult{Name: "Shield", Status: "✗", Details: "  " + err.Error()}
	}
	if engaged {
		return CheckResult{
			Name:    "Shield",
			Status:  "⚠",
			Details: fmt.Sprintf("  %s exists: blocking is on\n  Run: focusguard reconcile", shield.Path()),
		}
	}
	return CheckResult{Name: "Shield", Status: "✓"}
}

// checkSettingsBackend pings Redis when it holds the settings.
func checkSettingsBackend(ctx context.Context, cfg *config.Config) CheckResult {
	if cfg.SettingsBackend != config.BackendRedis {
		return CheckResult{Name: "Settings", Status: "✓"}
	}

	store := redisadapter.NewSettingsStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer store.Close()

	if err := store.Ping(ctx); err != nil {
		return CheckResult{
			Name:    "Settings",
			Status:  "✗",
			Details: fmt.Sprintf("  redis at %s unreachable: %v", cfg.Redis.Addr, err),
		}
	}
	return CheckResult{Name: "Settings", Status: "✓"}
}
