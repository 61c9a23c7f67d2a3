package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dayplanner/core/internal/domain/entities"
	"github.com/dayplanner/core/internal/domain/stats"
)

// exportDocument is the backup written by the export command
type exportDocument struct {
	ExportedAt string          `json:"exported_at" yaml:"exported_at"`
	Streak     int             `json:"streak" yaml:"streak"`
	TotalScore int             `json:"total_score" yaml:"total_score"`
	Tasks      []entities.Task `json:"tasks" yaml:"tasks"`
}

func newExportCommand(opts *options) *cobra.Command {
	var (
		format string
		date   string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all tasks as YAML or JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "yaml" && format != "json" {
				return fmt.Errorf("unknown format %q (want yaml or json)", format)
			}
			if date != "" && !entities.IsValidDate(date) {
				return fmt.Errorf("%q: %w", date, entities.ErrInvalidDate)
			}

			a, err := opts.open(cmd.Context(), logQuiet, false)
			if err != nil {
				return err
			}
			defer a.close()

			now := time.Now()
			tasks := a.planner.Tasks()
			doc := exportDocument{
				ExportedAt: now.Format(time.RFC3339),
				Streak:     stats.Streak(tasks, now),
				TotalScore: stats.TotalScore(tasks),
				Tasks:      tasks,
			}
			if date != "" {
				doc.Tasks = stats.TasksForDate(tasks, date)
			}

			return writeExport(cmd.OutOrStdout(), format, doc)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "output format (yaml or json)")
	cmd.Flags().StringVar(&date, "date", "", "only export tasks of this day (YYYY-MM-DD)")
	return cmd
}

func writeExport(out io.Writer, format string, doc exportDocument) error {
	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	}

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}
	return enc.Close()
}
