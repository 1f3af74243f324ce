package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/mr1hm/go-field-mesh/internal/aggregate"
	"github.com/mr1hm/go-field-mesh/internal/app"
	"github.com/mr1hm/go-field-mesh/internal/models"
	"github.com/mr1hm/go-field-mesh/internal/report"
)

func (r *runner) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show dashboard statistics (HQ role)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withApp(cmd.Context(), func(a *app.App) error {
				if err := requireRole(a, models.RoleHQ); err != nil {
					return err
				}
				snap := a.Store.Snapshot()
				stats := aggregate.Summarize(snap.Disasters, snap.Agriculture, snap.Aid)
				if r.jsonOutput {
					return outputJSON(cmd, stats)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Disaster surveys: %d (avg trust %d)\n", stats.DisasterSurveys, stats.AvgTrustScore)
				fmt.Fprintf(out, "  Trust: %d green, %d orange, %d red\n", stats.Trust.Green, stats.Trust.Orange, stats.Trust.Red)
				c := stats.Casualties
				fmt.Fprintf(out, "  Affected %d, injured %d, critical %d, trapped %d, dead %d\n", c.PeopleAffected, c.Injured, c.Critical, c.Trapped, c.Dead)
				l := stats.Locations
				fmt.Fprintf(out, "  Field %d, shelter %d, hospital %d, evacuated %d\n", l.Field, l.Shelter, l.Hospital, l.Evacuated)
				fmt.Fprintf(out, "Aid distributions: %d (%d verified, %d pending)\n", stats.Aid.Total, stats.Aid.Verified, stats.Aid.Pending)
				fmt.Fprintf(out, "Agriculture surveys: %d (avg damage %d%%)\n", stats.Agriculture.Surveys, stats.Agriculture.AvgDamagePercent)
				return nil
			})
		},
	}
}

func (r *runner) priorityCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "priority",
		Short: "Show the rescue queue (HQ role)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withApp(cmd.Context(), func(a *app.App) error {
				if err := requireRole(a, models.RoleHQ); err != nil {
					return err
				}
				ranked := aggregate.RescuePriority(a.Store.Snapshot().Disasters, limit)
				if r.jsonOutput {
					return outputJSON(cmd, ranked)
				}

				out := cmd.OutOrStdout()
				if len(ranked) == 0 {
					fmt.Fprintln(out, "No disaster surveys recorded.")
					return nil
				}
				for _, e := range ranked {
					s := e.Survey
					fmt.Fprintf(out, "%2d. %-18s priority %-4d %s (critical %d, trapped %d, injured %d) %s\n",
						e.Rank, s.SurveyID, e.Priority, s.DigiPin, s.Critical, s.Trapped, s.Injured, s.LocationStatus)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", aggregate.RescueQueueSize, "queue length (1-10)")
	return cmd
}

func (r *runner) exportCmd() *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the dashboard as an XLSX or PDF report (HQ role)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var generate func(report.Dashboard) ([]byte, error)
			switch format {
			case "xlsx":
				generate = report.NewExcelGenerator().Generate
			case "pdf":
				generate = report.NewPDFGenerator().Generate
			default:
				return fmt.Errorf("unsupported export format %q (want xlsx or pdf)", format)
			}

			return r.withApp(cmd.Context(), func(a *app.App) error {
				if err := requireRole(a, models.RoleHQ); err != nil {
					return err
				}
				now := time.Now()
				data, err := generate(report.Build(a.Store.Snapshot(), now))
				if err != nil {
					return fmt.Errorf("error generating %s report: %w", format, err)
				}

				path := output
				if path == "" {
					path = fmt.Sprintf("field-mesh-%s.%s", now.UTC().Format("20060102-1504"), format)
				}
				if err := os.WriteFile(path, data, 0o644); err != nil {
					return fmt.Errorf("error writing report: %w", err)
				}

				if r.jsonOutput {
					return outputJSON(cmd, map[string]any{"path": path, "bytes": len(data), "format": format})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes)\n", filepath.Clean(path), len(data))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "xlsx", "report format: xlsx or pdf")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file path")
	return cmd
}
