package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Dosada05/athletics-meet/db"
	"github.com/Dosada05/athletics-meet/repositories"
	"github.com/Dosada05/athletics-meet/services"
)

func newScheduleCmd() *cobra.Command {
	var (
		req    services.ScheduleRequest
		days   int
		gap    int
		rest   int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Print a timetable preview for the stored events",
		Long:  "Runs the schedule builder against the current events. Nothing is persisted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}

			// Флаги, не заданные явно, берутся из конфигурации.
			if cmd.Flags().Changed("days") {
				req.Days = &days
			}
			if cmd.Flags().Changed("track-gap") {
				req.TrackGapMinutes = &gap
			}
			if cmd.Flags().Changed("rest") {
				req.AthleteRestMinutes = &rest
			}

			dbConn, err := db.Connect(cfg.DatabaseURL, cfg.DBConnectTimeout, logger)
			if err != nil {
				return err
			}
			defer dbConn.Close()

			svc := services.NewScheduleService(repositories.NewPostgresEventRepository(dbConn), scheduleDefaults(cfg), nil, logger)
			view, err := svc.GenerateSchedule(cmd.Context(), req)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(view)
			}
			return printSchedule(cmd.OutOrStdout(), view)
		},
	}

	cmd.Flags().StringVar(&req.StartDate, "start", "", "first competition day (YYYY-MM-DD)")
	cmd.Flags().IntVar(&days, "days", 0, "number of competition days")
	cmd.Flags().IntVar(&gap, "track-gap", 0, "minutes between consecutive track events")
	cmd.Flags().IntVar(&rest, "rest", 0, "minimum athlete rest in minutes")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the schedule as JSON")
	_ = cmd.MarkFlagRequired("start")
	return cmd
}

func printSchedule(out io.Writer, view *services.ScheduleView) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, day := range view.Days {
		fmt.Fprintf(tw, "%s\n", day.Date)
		if len(day.Events) == 0 {
			fmt.Fprintln(tw, "  (no events)")
			continue
		}
		for _, e := range day.Events {
			fmt.Fprintf(tw, "  %s-%s\t%s\t%s\t%d conflict(s)\n", e.StartTime, e.EndTime, e.EventType, e.Name, len(e.Conflicts))
			for _, c := range e.Conflicts {
				fmt.Fprintf(tw, "  \t\t%s\t%s\n", c.Type, c.Description)
			}
		}
	}
	return tw.Flush()
}
