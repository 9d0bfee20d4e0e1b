package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/username/worktrack/internal/attendance"
	"github.com/username/worktrack/internal/report"
	"github.com/username/worktrack/internal/worktrack"
	"github.com/username/worktrack/pkg/dateutil"
)

// parseMonth reads YYYY-MM; empty means the month of now
func parseMonth(s string, now time.Time) (int, time.Month, error) {
	if s == "" {
		return now.Year(), now.Month(), nil
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month %q (want YYYY-MM): %w", s, err)
	}
	return t.Year(), t.Month(), nil
}

func monthFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVarP(target, "month", "m", "", "Month as YYYY-MM (default: current month)")
}

// withMonth loads the app and resolves the --month flag in the configured time zone
func withMonth(monthStr string, fn func(ctx context.Context, a *app, year int, month time.Month) error) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	year, month, err := parseMonth(monthStr, time.Now().In(a.cfg.Daemon.GetLocation()))
	if err != nil {
		return err
	}
	return fn(context.Background(), a, year, month)
}

func initCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Seed the current year from weekdays and holidays",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.manager.Init(context.Background(), force); err != nil {
				if errors.Is(err, worktrack.ErrAlreadyInitialized) {
					return fmt.Errorf("%w (use --force to start over)", err)
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Initialized attendance for", time.Now().Year())
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Replace existing data")
	return cmd
}

func showCmd() *cobra.Command {
	var monthStr string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the month calendar",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMonth(monthStr, func(ctx context.Context, a *app, year int, month time.Month) error {
				records, err := a.manager.Month(ctx, year, month)
				if err != nil {
					return err
				}
				settings, err := a.manager.Settings(ctx)
				if err != nil {
					return err
				}
				renderMonth(cmd.OutOrStdout(), year, month, records, settings.ShiftCode)
				return nil
			})
		},
	}

	monthFlag(cmd, &monthStr)
	return cmd
}

func optimizeCmd() *cobra.Command {
	var monthStr string

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Fill Saturdays with leave, then work, until the monthly target is met",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMonth(monthStr, func(ctx context.Context, a *app, year int, month time.Month) error {
				records, err := a.manager.Optimize(ctx, year, month)
				if err != nil {
					return err
				}
				settings, err := a.manager.Settings(ctx)
				if err != nil {
					return err
				}
				renderMonth(cmd.OutOrStdout(), year, month, records, settings.ShiftCode)
				stats, err := a.manager.Stats(ctx, year, month)
				if err != nil {
					return err
				}
				renderStats(cmd.OutOrStdout(), stats)
				return nil
			})
		},
	}

	monthFlag(cmd, &monthStr)
	return cmd
}

func statsCmd() *cobra.Command {
	var monthStr string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print the month dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMonth(monthStr, func(ctx context.Context, a *app, year int, month time.Month) error {
				stats, err := a.manager.Stats(ctx, year, month)
				if err != nil {
					return err
				}
				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(stats)
				}
				renderStats(cmd.OutOrStdout(), stats)
				return nil
			})
		},
	}

	monthFlag(cmd, &monthStr)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}

func setCmd() *cobra.Command {
	var note string

	cmd := &cobra.Command{
		Use:   "set <YYYY-MM-DD> <type>",
		Short: "Set a day manually (type: X1, 1/2 WORK, DO, AL, 1/2 AL, PH, SH or a full name)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dayType, err := attendance.ParseDayType(strings.ToUpper(args[1]))
			if err != nil {
				return err
			}

			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.Close()

			r, err := a.manager.SetDay(context.Background(), args[0], dayType, note)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s set to %s (manual)\n", r.Date, r.Type.Code())
			return nil
		},
	}

	cmd.Flags().StringVar(&note, "note", "", "Note for the day")
	return cmd
}

func resetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset <YYYY-MM-DD>",
		Short: "Drop the manual choice of a day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.Close()

			r, err := a.manager.ResetDay(context.Background(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s reset to %s\n", r.Date, r.Type.Code())
			return nil
		},
	}
}

func clockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clock",
		Short: "Record today's clock-in",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.Close()

			r, err := a.manager.AutoClock(context.Background())
			if err != nil {
				return err
			}
			state := "not clocked"
			switch {
			case r.IsManual:
				state = "manual, unchanged"
			case r.IsAutoClocked:
				state = "clocked"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%s)\n", r.Date, r.Type.Code(), state)
			return nil
		},
	}
}

func exportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the attendance snapshot as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.Close()

			snap, err := a.manager.Snapshot(context.Background())
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(snap, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal snapshot: %w", err)
			}

			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				return fmt.Errorf("failed to write export: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d days to %s\n", len(snap.Attendance), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	return cmd
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json>",
		Short: "Replace the attendance with a JSON snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			var err error
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("failed to read import file: %w", err)
			}

			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.Close()

			snap, err := a.manager.Import(context.Background(), data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d days\n", len(snap.Attendance))
			return nil
		},
	}
}

func reportCmd() *cobra.Command {
	var monthStr string
	var output string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render the month as a PDF timesheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMonth(monthStr, func(ctx context.Context, a *app, year int, month time.Month) error {
				records, err := a.manager.Month(ctx, year, month)
				if err != nil {
					return err
				}
				stats, err := a.manager.Stats(ctx, year, month)
				if err != nil {
					return err
				}
				settings, err := a.manager.Settings(ctx)
				if err != nil {
					return err
				}

				path := output
				if path == "" {
					path = fmt.Sprintf("timesheet-%04d-%02d.pdf", year, int(month))
				}
				f, err := os.Create(path)
				if err != nil {
					return fmt.Errorf("failed to create report file: %w", err)
				}
				defer f.Close()

				err = report.WriteMonthPDF(f, report.Month{
					Year:     year,
					Month:    month,
					Records:  records,
					Stats:    stats,
					Settings: settings,
				})
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Report written to", path)
				return nil
			})
		},
	}

	monthFlag(cmd, &monthStr)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: timesheet-YYYY-MM.pdf)")
	return cmd
}

// renderMonth prints a Monday-first grid with one label per day
func renderMonth(w io.Writer, year int, month time.Month, records []attendance.Record, shiftCode string) {
	if shiftCode == "" {
		shiftCode = attendance.DefaultShiftCode
	}
	byDate := make(map[string]attendance.Record, len(records))
	for _, r := range records {
		byDate[r.Date] = r
	}

	fmt.Fprintf(w, "%s %d\n", month, year)
	fmt.Fprintln(w, " Mon        Tue        Wed        Thu        Fri        Sat        Sun")

	for i, d := range dateutil.MonthGrid(year, month) {
		cell := ""
		if !d.IsZero() {
			label := "-"
			if r, ok := byDate[dateutil.DayID(d)]; ok && r.Type.Valid() {
				label = r.Type.Label(shiftCode)
				if r.IsManual {
					label += "*"
				}
			}
			cell = fmt.Sprintf("%2d %s", d.Day(), label)
		}
		fmt.Fprintf(w, " %-10s", cell)
		if i%7 == 6 {
			fmt.Fprintln(w)
		}
	}
	fmt.Fprintln(w)
}

func renderStats(w io.Writer, s attendance.Stats) {
	fmt.Fprintf(w, "Counted days:  %s / %s\n", s.TotalCalculatedDays, s.TargetWorkingDays)
	fmt.Fprintf(w, "Completed:     %s\n", s.CompletedWorkDays)
	fmt.Fprintf(w, "Missing:       %s\n", s.MissingDays)
	fmt.Fprintf(w, "Progress:      %s%%\n", s.ProgressPercent.Round(1))
	fmt.Fprintf(w, "Annual leave:  %s used, %s remaining of %s\n", s.UsedLeave, s.RemainingLeave, s.TotalLeave)
}
