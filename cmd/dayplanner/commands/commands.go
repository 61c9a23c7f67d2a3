package commands

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dayplanner/core/internal/adapters/tui"
	"github.com/dayplanner/core/internal/domain/entities"
	"github.com/dayplanner/core/internal/infrastructure/server"
	"github.com/dayplanner/core/internal/ports"
)

// Version is set at build time with -ldflags "-X ...commands.Version=..."
var Version = "1.0.0"

const shutdownTimeout = 10 * time.Second

// NewRootCommand builds the dayplanner command tree
func NewRootCommand() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "dayplanner",
		Short:         "Day planner and task tracker",
		Long:          "Dayplanner records what you did each day, scores completed tasks and keeps your streak.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "config file (default: ./dayplanner.yaml or the user config dir)")
	flags.StringVar(&opts.dataPath, "data", "", "path of the file store, selects the file driver")
	flags.BoolVar(&opts.ephemeral, "ephemeral", false, "keep everything in memory for this run")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	// Add commands
	rootCmd.AddCommand(newServeCommand(opts))
	rootCmd.AddCommand(newTUICommand(opts))
	rootCmd.AddCommand(newAddCommand(opts))
	rootCmd.AddCommand(newToggleCommand(opts))
	rootCmd.AddCommand(newRemoveCommand(opts))
	rootCmd.AddCommand(newDayCommand(opts))
	rootCmd.AddCommand(newStatsCommand(opts))
	rootCmd.AddCommand(newProfileCommand(opts))
	rootCmd.AddCommand(newExportCommand(opts))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

func newServeCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the web planner",
		Long:  "Start the web planner with the HTML day view, the JSON API, health checks and metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), opts)
		},
	}
}

func runServer(ctx context.Context, opts *options) error {
	a, err := opts.open(ctx, logNormal, true)
	if err != nil {
		return err
	}
	defer a.close()

	srv, err := server.New(a.cfg, a.planner, a.kv, a.logger, a.metrics)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	a.logger.Infow("Starting day planner",
		"address", a.cfg.Server.GetAddr(),
		"storage", a.cfg.Storage.Driver,
		"environment", a.cfg.App.Environment,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(a.cfg.Server.GetAddr())
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return <-errCh
}

func newTUICommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the planner in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd.Context(), logSilent, false)
			if err != nil {
				return err
			}
			defer a.close()

			return tui.Run(cmd.Context(), a.planner)
		},
	}
}

func newAddCommand(opts *options) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "add <text...>",
		Short: "Add a task",
		Long:  "Add a task worth 10 points to a day, today unless --date is given",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd.Context(), logQuiet, false)
			if err != nil {
				return err
			}
			defer a.close()

			if date == "" {
				date = entities.FormatDate(time.Now())
			}
			if !entities.IsValidDate(date) {
				return fmt.Errorf("%q: %w", date, entities.ErrInvalidDate)
			}

			task, ok := a.planner.AddTask(cmd.Context(), strings.Join(args, " "), date)
			if !ok {
				return entities.ErrEmptyTaskText
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added task %d on %s: %s\n", task.ID, task.Date, task.Text)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "day of the task (YYYY-MM-DD)")
	return cmd
}

func newToggleCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Mark a task done or not done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			a, err := opts.open(cmd.Context(), logQuiet, false)
			if err != nil {
				return err
			}
			defer a.close()

			task, ok := a.planner.ToggleTask(cmd.Context(), id)
			if !ok {
				return fmt.Errorf("task %d: %w", id, entities.ErrTaskNotFound)
			}

			fmt.Fprintln(cmd.OutOrStdout(), formatTask(task))
			return nil
		},
	}
}

func newRemoveCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			a, err := opts.open(cmd.Context(), logQuiet, false)
			if err != nil {
				return err
			}
			defer a.close()

			if !a.planner.DeleteTask(cmd.Context(), id) {
				return fmt.Errorf("task %d: %w", id, entities.ErrTaskNotFound)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %d\n", id)
			return nil
		},
	}
}

func newDayCommand(opts *options) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "day",
		Short: "Show the tasks and score of a day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd.Context(), logQuiet, false)
			if err != nil {
				return err
			}
			defer a.close()

			if date == "" {
				date = a.planner.SelectedDate()
			}
			if !entities.IsValidDate(date) {
				return fmt.Errorf("%q: %w", date, entities.ErrInvalidDate)
			}

			printDay(cmd.OutOrStdout(), a.planner.Day(date))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "day to show (YYYY-MM-DD), today by default")
	return cmd
}

func newStatsCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show streak and scores",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd.Context(), logQuiet, false)
			if err != nil {
				return err
			}
			defer a.close()

			stats := a.planner.Stats(time.Now())
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Streak:       %d days\n", stats.Streak)
			fmt.Fprintf(out, "Total score:  %d pts\n", stats.TotalScore)
			fmt.Fprintf(out, "Today:        %d pts\n", stats.DayScore)
			return nil
		},
	}
}

func newProfileCommand(opts *options) *cobra.Command {
	profileCmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or set the profile picture",
	}

	profileCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the profile header",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd.Context(), logQuiet, false)
			if err != nil {
				return err
			}
			defer a.close()

			header := a.planner.Header(time.Now())
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Name:     %s\n", header.ProfileName)
			fmt.Fprintf(out, "Initials: %s\n", header.Initials)
			if header.ProfileImage == "" {
				fmt.Fprintln(out, "Image:    none")
			} else {
				fmt.Fprintf(out, "Image:    %s\n", describeImage(header.ProfileImage))
			}
			return nil
		},
	})

	var file string
	setCmd := &cobra.Command{
		Use:   "set [url]",
		Short: "Set the profile picture from a URL or an image file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var value string
			switch {
			case file != "" && len(args) == 0:
				uri, err := imageDataURI(file)
				if err != nil {
					return err
				}
				value = uri
			case file == "" && len(args) == 1:
				value = args[0]
			default:
				return errors.New("give either a URL argument or --file")
			}

			a, err := opts.open(cmd.Context(), logQuiet, false)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.kv.Set(cmd.Context(), ports.ProfileImageKey, value); err != nil {
				return fmt.Errorf("failed to store profile image: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Profile image set (%s)\n", describeImage(value))
			return nil
		},
	}
	setCmd.Flags().StringVar(&file, "file", "", "image file to embed as a data URI")
	profileCmd.AddCommand(setCmd)

	return profileCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print dayplanner version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "dayplanner v%s\n", Version)
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid task id %q", s)
	}
	return id, nil
}

func formatTask(t entities.Task) string {
	mark := "[ ]"
	if t.Completed {
		mark = "[x]"
	}
	return fmt.Sprintf("%s %d  %s  +%d pts", mark, t.ID, t.Text, t.PointValue())
}

func printDay(out io.Writer, day ports.DayView) {
	fmt.Fprintln(out, day.Heading)
	fmt.Fprintf(out, "%d / %d tasks completed\n", day.Completed, day.Total)
	fmt.Fprintf(out, "Today's Score: %d pts\n\n", day.DayScore)

	if len(day.Tasks) == 0 {
		fmt.Fprintln(out, "No tasks yet. Add your first task above!")
		return
	}
	for _, t := range day.Tasks {
		fmt.Fprintln(out, formatTask(t))
	}
}

func describeImage(value string) string {
	if strings.HasPrefix(value, "data:") {
		mime := strings.TrimPrefix(value, "data:")
		if i := strings.IndexAny(mime, ";,"); i >= 0 {
			mime = mime[:i]
		}
		return fmt.Sprintf("embedded %s, %d bytes", mime, len(value))
	}
	return value
}

func imageDataURI(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}

	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return "", fmt.Errorf("%s is not an image (%s)", path, mime)
	}

	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
