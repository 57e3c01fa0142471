package main

import (
	"fmt"

	"dochazka-bot/internal/service"

	"github.com/spf13/cobra"
)

func newFundCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fund",
		Short: "Yearly vacation and sick-day funds",
	}

	var year int
	show := &cobra.Command{
		Use:   "show <username>",
		Short: "Show the leave balance of a user",
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
	show.Flags().IntVar(&year, "year", 0, "year, the current one by default")

	var (
		setYear   int
		vacation  float64
		carryOver float64
		sickDays  int
	)
	set := &cobra.Command{
		Use:   "set <username>",
		Short: "Change a user's fund; flags that are not given keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.user(cmd, args[0])
			if err != nil {
				return err
			}

			var upd service.LeaveFundUpdate
			if cmd.Flags().Changed("vacation") {
				upd.VacationDays = &vacation
			}
			if cmd.Flags().Changed("carry-over") {
				upd.CarryOver = &carryOver
			}
			if cmd.Flags().Changed("sick") {
				upd.SickDays = &sickDays
			}

			fund, err := a.services.Leave.UpdateLeaveFund(cmd.Context(), console, user.ID, a.yearOr(setYear), upd)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d: vacation %.1f + carry-over %.1f, sick days %d\n",
				user.Username, fund.Year, fund.VacationDays, fund.CarryOver, fund.SickDays)
			return nil
		},
	}
	set.Flags().IntVar(&setYear, "year", 0, "year, the current one by default")
	set.Flags().Float64Var(&vacation, "vacation", 0, "vacation days for the year")
	set.Flags().Float64Var(&carryOver, "carry-over", 0, "days carried over from last year")
	set.Flags().IntVar(&sickDays, "sick", 0, "sick days for the year")

	cmd.AddCommand(show, set)
	return cmd
}

func (a *app) yearOr(year int) int {
	if year == 0 {
		return a.clock.Now().Year()
	}
	return year
}

func printLeave(cmd *cobra.Command, name string, s *service.LeaveSummary) {
	w := newTable(cmd)
	fmt.Fprintf(w, "%s, %d\tTOTAL\tUSED\tREMAINING\n", name, s.Year)
	fmt.Fprintf(w, "vacation\t%.1f\t%.1f\t%.1f\n", s.VacationTotal, s.VacationUsed, s.VacationRemaining)
	fmt.Fprintf(w, "sick days\t%d\t%d\t%d\n", s.SickTotal, s.SickUsed, s.SickRemaining)
	_ = w.Flush()
}
