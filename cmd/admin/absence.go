package main

import (
	"fmt"
	"strconv"

	"dochazka-bot/internal/models"
	"dochazka-bot/internal/service"

	"github.com/spf13/cobra"
)

func newAbsenceCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "absence",
		Short: "Vacation, sick-day and illness records",
	}

	var (
		note     string
		halfDays []string
	)
	insert := &cobra.Command{
		Use:   "insert <username> <vacation|vacation_half|sickday|illness> <from> [to]",
		Short: "Insert an already approved absence",
		Args:  cobra.RangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.user(cmd, args[0])
			if err != nil {
				return err
			}
			in := service.AbsenceInput{
				Type:     models.AbsenceType(args[1]),
				From:     args[2],
				Note:     note,
				HalfDays: halfDays,
			}
			if len(args) == 4 {
				in.To = args[3]
			}

			absence, err := a.services.Absences.InsertApproved(cmd.Context(), console, user.ID, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "inserted absence %d for %s\n", absence.ID, user.Username)
			return nil
		},
	}
	insert.Flags().StringVar(&note, "note", "", "free-text note")
	insert.Flags().StringSliceVar(&halfDays, "half-day", nil, "vacation days taken as half days, repeatable")

	decide := func(approve bool) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			absence, err := a.services.Absences.ApproveAbsence(cmd.Context(), console, id, approve)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "absence %d %s (notified: %t)\n", absence.ID, absence.Approval, absence.Notified)
			return nil
		}
	}
	approve := &cobra.Command{
		Use:   "approve <id>",
		Short: "Approve a pending request",
		Args:  cobra.ExactArgs(1),
		RunE:  decide(true),
	}
	reject := &cobra.Command{
		Use:   "reject <id>",
		Short: "Reject a pending request",
		Args:  cobra.ExactArgs(1),
		RunE:  decide(false),
	}

	remove := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an absence of any state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.services.Absences.DeleteAbsence(cmd.Context(), console, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted absence %d\n", id)
			return nil
		},
	}

	closeIllness := &cobra.Command{
		Use:   "close-illness <id> <end-date>",
		Short: "Set the end date of an approved open illness",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.services.Absences.CloseIllness(cmd.Context(), console, id, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "illness %d closed on %s\n", id, args[1])
			return nil
		},
	}

	var pendingOnly bool
	list := &cobra.Command{
		Use:   "list [username]",
		Short: "List the absences of a user, or all pending requests",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var absences []models.AbsenceRequest
			var err error
			switch {
			case len(args) == 1:
				user, uerr := a.user(cmd, args[0])
				if uerr != nil {
					return uerr
				}
				absences, err = a.services.Absences.ListForUser(cmd.Context(), user.ID)
			case pendingOnly:
				absences, err = a.services.Absences.ListPending(cmd.Context(), console)
			default:
				return fmt.Errorf("give a username or --pending")
			}
			if err != nil {
				return err
			}

			w := newTable(cmd)
			fmt.Fprintln(w, "ID\tUSER\tTYPE\tFROM\tTO\tSTATE\tHALF DAYS")
			for _, abs := range absences {
				fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\t%s\t%v\n",
					abs.ID, abs.UserID, abs.Type, abs.DateFrom, abs.DateTo, abs.Approval, []string(abs.HalfDays))
			}
			return w.Flush()
		},
	}
	list.Flags().BoolVar(&pendingOnly, "pending", false, "list pending requests of everyone")

	cmd.AddCommand(insert, approve, reject, remove, closeIllness, list)
	return cmd
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return uint(id), nil
}
