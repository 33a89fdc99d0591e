package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/focusguard/internal/ctxutil"
	"github.com/example/focusguard/internal/wire"
)

// foreground marks commands the user ran directly.
func foreground() context.Context {
	return ctxutil.WithTrigger(context.Background(), ctxutil.TriggerForeground)
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Rebuild today's wake triggers and reconcile blocking",
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.BlockingAdapter().Schedule(foreground())
	},
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Bring blocking in line with today's tasks",
	Long: `Recompute which task should be blocking right now and correct any drift,
without touching the scheduled wake triggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.BlockingAdapter().Reconcile(foreground())
	},
}

var fireCmd = &cobra.Command{
	Use:   "fire",
	Short: "Deliver due wake triggers",
	Long: `Deliver every stored wake trigger that is due, as the OS would after
waking the app. Blocking is reconciled first because this process starts with
no session in memory.

Examples:
  focusguard fire                     # deliver what is due now
  focusguard fire --at 15:30          # pretend it is 15:30 today
  focusguard fire --id focusguard.block.TASK-002.end --payload '{"kind":"end",...}'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := foreground()
		at, _ := cmd.Flags().GetString("at")
		id, _ := cmd.Flags().GetString("id")
		payload, _ := cmd.Flags().GetString("payload")

		clock := wire.Now
		if at != "" {
			when, err := parseClockFlag(at, wire.Now())
			if err != nil {
				return err
			}
			clock = func() time.Time { return when }
		}

		adapter := wire.BlockingAdapterWithClock(clock, os.Stdout)
		if err := adapter.Reconcile(ctx); err != nil {
			return err
		}

		wctx := ctxutil.WithTrigger(context.Background(), ctxutil.TriggerWake)
		if id != "" {
			return adapter.Fire(wctx, id, []byte(payload))
		}

		reports, err := wire.Runner(clock).DeliverDue(ctx)
		for _, r := range reports {
			adapter.PrintDelivery(r)
		}
		if err != nil {
			return err
		}
		if len(reports) == 0 {
			fmt.Println("No triggers due")
		}
		return nil
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run in the foreground, delivering triggers as they fall due",
	Long: `Refresh the schedule, then deliver due wake triggers and reconcile on
every tick until interrupted. The tick interval is run.tick_interval.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg := wire.Config()
		wire.Logger().Info("starting runner", "tick_interval", cfg.Run.TickInterval, "config", wire.ConfigPath())
		return wire.Runner(nil).Run(ctx)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show blocking status, pending triggers and recent events",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := foreground()
		events, _ := cmd.Flags().GetInt("events")

		// A fresh process holds no session until reconciled.
		if _, err := wire.BlockingService().ReconcileFromSource(ctx, wire.Now()); err != nil {
			return fmt.Errorf("failed to reconcile: %w", err)
		}
		return wire.BlockingAdapter().Status(ctx, events)
	},
}

var autoCmd = &cobra.Command{
	Use:       "auto [on|off]",
	Short:     "Show or set automatic blocking",
	Long:      "Turning auto blocking off clears every wake trigger and ends the active session.",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"on", "off"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := foreground()
		if len(args) == 0 {
			enabled, err := wire.BlockingService().AutoBlockingEnabled(ctx)
			if err != nil {
				return err
			}
			if enabled {
				fmt.Println("Auto blocking is on")
			} else {
				fmt.Println("Auto blocking is off")
			}
			return nil
		}
		return wire.BlockingAdapter().SetAuto(ctx, args[0] == "on")
	},
}

func init() {
	fireCmd.Flags().String("at", "", "Deliver as of HH:MM today instead of now")
	fireCmd.Flags().String("id", "", "Deliver a single trigger with an explicit payload")
	fireCmd.Flags().String("payload", "", "Raw payload for --id")

	statusCmd.Flags().IntP("events", "n", 5, "Number of recent block events to show")
}

// ScheduleCmd returns the schedule command
func ScheduleCmd() *cobra.Command { return scheduleCmd }

// ReconcileCmd returns the reconcile command
func ReconcileCmd() *cobra.Command { return reconcileCmd }

// FireCmd returns the fire command
func FireCmd() *cobra.Command { return fireCmd }

// RunCmd returns the run command
func RunCmd() *cobra.Command { return runCmd }

// StatusCmd returns the status command
func StatusCmd() *cobra.Command { return statusCmd }

// AutoCmd returns the auto command
func AutoCmd() *cobra.Command { return autoCmd }
