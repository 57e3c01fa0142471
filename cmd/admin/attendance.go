package main

import (
	"fmt"

	"dochazka-bot/internal/models"
	"dochazka-bot/internal/service"
	"dochazka-bot/pkg/timefmt"

	"github.com/spf13/cobra"
)

func newDayCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "day",
		Short: "Correct attendance days",
	}

	var checkIn, checkOut string
	set := &cobra.Command{
		Use:   "set <username> <date>",
		Short: "Overwrite check-in and check-out of a day",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.user(cmd, args[0])
			if err != nil {
				return err
			}
			day, err := a.date(args[1])
			if err != nil {
				return err
			}
			in, err := a.clockOn(day, checkIn)
			if err != nil {
				return err
			}
			out, err := a.clockOn(day, checkOut)
			if err != nil {
				return err
			}

			if _, err := a.services.Attendance.SetAttendance(cmd.Context(), console, user.ID, args[1], in, out); err != nil {
				return err
			}
			return printDay(cmd, a, user.ID, args[1])
		},
	}
	set.Flags().StringVar(&checkIn, "in", "", "check-in as HH:MM, empty clears it")
	set.Flags().StringVar(&checkOut, "out", "", "check-out as HH:MM, empty clears it")

	clearDay := &cobra.Command{
		Use:   "clear <username> <date>",
		Short: "Delete a day with all its pauses",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.user(cmd, args[0])
			if err != nil {
				return err
			}
			if _, err := a.date(args[1]); err != nil {
				return err
			}
			if err := a.services.Attendance.ClearAttendanceDay(cmd.Context(), console, user.ID, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cleared %s for %s\n", args[1], user.Username)
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show <username> <date>",
		Short: "Show a day with its pauses",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.user(cmd, args[0])
			if err != nil {
				return err
			}
			return printDay(cmd, a, user.ID, args[1])
		},
	}

	cmd.AddCommand(set, clearDay, show)
	return cmd
}

func newPauseCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pause",
		Short: "Correct pauses",
	}

	var (
		id       uint
		category string
		from     string
		to       string
		paid     bool
	)
	set := &cobra.Command{
		Use:   "set <username> <date>",
		Short: "Create a pause, or overwrite the one given by --id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.user(cmd, args[0])
			if err != nil {
				return err
			}
			day, err := a.date(args[1])
			if err != nil {
				return err
			}
			start, err := a.clockOn(day, from)
			if err != nil {
				return err
			}
			if start == nil {
				return fmt.Errorf("--from is required")
			}
			end, err := a.clockOn(day, to)
			if err != nil {
				return err
			}

			pause, err := a.services.Attendance.SetPause(cmd.Context(), console, service.PauseInput{
				ID:        id,
				UserID:    user.ID,
				Date:      args[1],
				Category:  models.PauseCategory(category),
				StartedAt: *start,
				EndedAt:   end,
				Paid:      paid,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved pause %d\n", pause.ID)
			return printDay(cmd, a, user.ID, args[1])
		},
	}
	set.Flags().UintVar(&id, "id", 0, "pause to overwrite")
	set.Flags().StringVar(&category, "category", string(models.PauseLunch), "lunch, doctor, break, other or reentry")
	set.Flags().StringVar(&from, "from", "", "start as HH:MM")
	set.Flags().StringVar(&to, "to", "", "end as HH:MM, empty leaves the pause open")
	set.Flags().BoolVar(&paid, "paid", false, "count the pause as worked time")

	remove := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a pause",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pauseID, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.services.Attendance.DeletePause(cmd.Context(), console, pauseID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted pause %d\n", pauseID)
			return nil
		},
	}

	cmd.AddCommand(set, remove)
	return cmd
}

func printDay(cmd *cobra.Command, a *app, userID uint, date string) error {
	report, err := a.services.Attendance.Day(cmd.Context(), userID, date)
	if err != nil {
		return err
	}

	loc := a.clock.Location()
	w := newTable(cmd)
	if report.Record == nil {
		fmt.Fprintf(w, "%s\tno attendance\n", date)
		return w.Flush()
	}
	fmt.Fprintf(w, "%s\tin %s\tout %s\tworked %s\n", date,
		timefmt.Clock(report.Record.CheckIn, loc), timefmt.Clock(report.Record.CheckOut, loc),
		timefmt.SecondsToHuman(report.WorkedSeconds))
	for _, p := range report.Pauses {
		paid := ""
		if p.Paid {
			paid = "paid"
		}
		fmt.Fprintf(w, "  pause %d\t%s\t%s - %s\t%s\n", p.ID, p.Category,
			timefmt.Clock(&p.StartedAt, loc), timefmt.Clock(p.EndedAt, loc), paid)
	}
	return w.Flush()
}
