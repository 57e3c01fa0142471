package main

import (
	"fmt"

	"dochazka-bot/internal/service"
	"dochazka-bot/pkg/timefmt"

	"github.com/spf13/cobra"
)

func newReportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Monthly and leave reports",
	}

	month := &cobra.Command{
		Use:   "month <username> [YYYY-MM]",
		Short: "Monthly report of one user",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.user(cmd, args[0])
			if err != nil {
				return err
			}
			year, m, err := a.yearMonth(args[1:])
			if err != nil {
				return err
			}
			summary, err := a.services.Monthly.MonthSummary(cmd.Context(), user, year, m)
			if err != nil {
				return err
			}

			loc := a.clock.Location()
			w := newTable(cmd)
			fmt.Fprintln(w, "DATE\tIN\tOUT\tWORKED\t")
			for _, d := range summary.Days {
				mark := ""
				switch {
				case d.IsWeekend:
					mark = "weekend"
				case d.IsHoliday:
					mark = "holiday"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", d.Date,
					timefmt.Clock(d.CheckIn, loc), timefmt.Clock(d.CheckOut, loc),
					timefmt.SecondsToHuman(d.WorkedSeconds), mark)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			printSummary(cmd, []service.MonthSummary{*summary})
			return nil
		},
	}

	team := &cobra.Command{
		Use:   "team [YYYY-MM]",
		Short: "Monthly totals of every active user",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, m, err := a.yearMonth(args)
			if err != nil {
				return err
			}
			summaries, err := a.services.Monthly.TeamMonth(cmd.Context(), year, m)
			if err != nil {
				return err
			}
			printSummary(cmd, summaries)
			return nil
		},
	}

	var year int
	leave := &cobra.Command{
		Use:   "leave <username>",
		Short: "Vacation and sick-day balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.user(cmd, args[0])
			if err != nil {
				return err
			}
			summary, err := a.services.Leave.LeaveSummary(cmd.Context(), user.ID, a.yearOr(year))
			if err != nil {
				return err
			}
			printLeave(cmd, user.DisplayName, summary)
			return nil
		},
	}
	leave.Flags().IntVar(&year, "year", 0, "year, the current one by default")

	cmd.AddCommand(month, team, leave)
	return cmd
}

func printSummary(cmd *cobra.Command, summaries []service.MonthSummary) {
	w := newTable(cmd)
	fmt.Fprintln(w, "NAME\tMONTH\tWORKDAYS\tABSENT\tFUND\tWORKED\tWEEKEND\tEXPECTED\tSURPLUS")
	for _, s := range summaries {
		fmt.Fprintf(w, "%s\t%d-%02d\t%d\t%.1f\t%.1f\t%s\t%s\t%s\t%s\n",
			s.DisplayName, s.Year, s.Month, s.WorkdaysSoFar, s.AbsenceDays, s.EffectiveWorkdays,
			timefmt.SecondsToHuman(s.WorkedSeconds), timefmt.SecondsToHuman(s.WeekendSeconds),
			timefmt.SecondsToHuman(s.ExpectedSeconds), timefmt.SignedHuman(s.SurplusSeconds))
	}
	_ = w.Flush()
}
