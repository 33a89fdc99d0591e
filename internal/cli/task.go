package cli

import (
	"context"

	"github.com/spf13/cobra"

	cliadapter "github.com/example/focusguard/internal/adapters/cli"
	"github.com/example/focusguard/internal/ports/primary"
	"github.com/example/focusguard/internal/wire"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks and their focus windows",
	Long: `Create, list, edit, and close tasks.

A task with a window and --block enabled blocks distractions while its
window is open. Every change reschedules today's blocking.`,
}

var taskAddCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Create a new task",
	Long: `Create a new task, optionally with a focus window.

Examples:
  focusguard task add "Write report" --start 14:00 --end 15:30 --block
  focusguard task add "Errands" --date 2026-10-16`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, _ := cmd.Flags().GetString("date")
		start, _ := cmd.Flags().GetString("start")
		end, _ := cmd.Flags().GetString("end")
		block, _ := cmd.Flags().GetBool("block")

		return wire.TaskAdapter().Add(context.Background(), primary.CreateTaskRequest{
			Title:             args[0],
			Date:              date,
			WindowStart:       start,
			WindowEnd:         end,
			BlockingRequested: block,
		})
	},
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		date, _ := cmd.Flags().GetString("date")
		status, _ := cmd.Flags().GetString("status")
		today, _ := cmd.Flags().GetBool("today")
		if today {
			date = wire.Now().Format("2006-01-02")
		}
		return wire.TaskAdapter().List(context.Background(), date, status)
	},
}

var taskShowCmd = &cobra.Command{
	Use:   "show [task-id]",
	Short: "Show task details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateTaskID(args[0]); err != nil {
			return err
		}
		_, err := wire.TaskAdapter().Show(context.Background(), args[0])
		return err
	},
}

var taskEditCmd = &cobra.Command{
	Use:   "edit [task-id]",
	Short: "Edit a task's title, date, window or blocking flag",
	Long: `Edit a task. Only the given flags change.

Examples:
  focusguard task edit TASK-003 --start 13:00 --end 14:00
  focusguard task edit TASK-003 --start "" --end ""   # remove the window
  focusguard task edit TASK-003 --block=false`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateTaskID(args[0]); err != nil {
			return err
		}

		var edit cliadapter.TaskEdit
		flags := cmd.Flags()
		if flags.Changed("title") {
			v, _ := flags.GetString("title")
			edit.Title = &v
		}
		if flags.Changed("date") {
			v, _ := flags.GetString("date")
			edit.Date = &v
		}
		if flags.Changed("start") {
			v, _ := flags.GetString("start")
			edit.WindowStart = &v
		}
		if flags.Changed("end") {
			v, _ := flags.GetString("end")
			edit.WindowEnd = &v
		}
		if flags.Changed("block") {
			v, _ := flags.GetBool("block")
			edit.BlockingRequested = &v
		}

		return wire.TaskAdapter().Edit(context.Background(), args[0], edit)
	},
}

// statusCommand builds the single-argument commands that move a task's status.
func statusCommand(use, short string, run func(a *cliadapter.TaskAdapter, ctx context.Context, id string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [task-id]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateTaskID(args[0]); err != nil {
				return err
			}
			return run(wire.TaskAdapter(), context.Background(), args[0])
		},
	}
}

var (
	taskStartCmd    = statusCommand("start", "Mark a task as in progress", (*cliadapter.TaskAdapter).Start)
	taskCompleteCmd = statusCommand("complete", "Mark a task as completed and end its blocking", (*cliadapter.TaskAdapter).Complete)
	taskSkipCmd     = statusCommand("skip", "Skip a task and end its blocking", (*cliadapter.TaskAdapter).Skip)
	taskDeleteCmd   = statusCommand("delete", "Delete a task and its wake triggers", (*cliadapter.TaskAdapter).Delete)
)

func init() {
	// task add flags
	taskAddCmd.Flags().String("date", "", "Calendar day YYYY-MM-DD (defaults to today)")
	taskAddCmd.Flags().String("start", "", "Window start HH:MM")
	taskAddCmd.Flags().String("end", "", "Window end HH:MM")
	taskAddCmd.Flags().BoolP("block", "b", false, "Block distractions during the window")

	// task list flags
	taskListCmd.Flags().String("date", "", "Filter by day YYYY-MM-DD")
	taskListCmd.Flags().Bool("today", false, "Only today's tasks")
	taskListCmd.Flags().StringP("status", "s", "", "Filter by status (pending, in_progress, completed, skipped)")

	// task edit flags
	taskEditCmd.Flags().String("title", "", "New title")
	taskEditCmd.Flags().String("date", "", "New day YYYY-MM-DD")
	taskEditCmd.Flags().String("start", "", "New window start HH:MM (empty clears the window)")
	taskEditCmd.Flags().String("end", "", "New window end HH:MM")
	taskEditCmd.Flags().BoolP("block", "b", false, "Block distractions during the window")

	taskCmd.AddCommand(taskAddCmd)
	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskShowCmd)
	taskCmd.AddCommand(taskEditCmd)
	taskCmd.AddCommand(taskStartCmd)
	taskCmd.AddCommand(taskCompleteCmd)
	taskCmd.AddCommand(taskSkipCmd)
	taskCmd.AddCommand(taskDeleteCmd)
}

// TaskCmd returns the task command
func TaskCmd() *cobra.Command {
	return taskCmd
}
