package main

import (
	"fmt"
	"strconv"

	"dochazka-bot/internal/models"
	"dochazka-bot/internal/service"

	"github.com/spf13/cobra"
)

func newUserCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	var in service.NewUser
	var role string
	add := &cobra.Command{
		Use:   "add <username>",
		Short: "Create a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Username = args[0]
			in.Role = models.Role(role)
			user, err := a.services.Users.CreateUser(cmd.Context(), console, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %s (id %d)\n", user.Username, user.ID)
			return nil
		},
	}
	add.Flags().StringVar(&in.DisplayName, "name", "", "display name")
	add.Flags().StringVar(&in.Password, "password", "", "initial password")
	add.Flags().StringVar(&role, "role", string(models.RoleEmployee), "employee, admin or temp-worker")
	add.Flags().StringVar(&in.Color, "color", "", "calendar color as #rrggbb")
	_ = add.MarkFlagRequired("name")
	_ = add.MarkFlagRequired("password")

	list := &cobra.Command{
		Use:   "list",
		Short: "List active users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			users, err := a.services.Users.ListActive(cmd.Context())
			if err != nil {
				return err
			}
			w := newTable(cmd)
			fmt.Fprintln(w, "ID\tUSERNAME\tNAME\tROLE\tTELEGRAM")
			for _, u := range users {
				chat := "-"
				if u.ChatID != nil {
					chat = strconv.FormatInt(*u.ChatID, 10)
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", u.ID, u.Username, u.DisplayName, u.Role, chat)
			}
			return w.Flush()
		},
	}

	deactivate := &cobra.Command{
		Use:   "deactivate <username>",
		Short: "Deactivate a user, keeping their history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.user(cmd, args[0])
			if err != nil {
				return err
			}
			if err := a.services.Users.Deactivate(cmd.Context(), console, user.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deactivated %s\n", user.Username)
			return nil
		},
	}

	passwd := &cobra.Command{
		Use:   "passwd <username> <password>",
		Short: "Set a user's password",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.user(cmd, args[0])
			if err != nil {
				return err
			}
			if err := a.services.Users.ChangePassword(cmd.Context(), console, user.ID, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "password changed for %s\n", user.Username)
			return nil
		},
	}

	link := &cobra.Command{
		Use:   "link <username> <chat-id>",
		Short: "Link a Telegram chat to a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			chatID, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid chat id %q", args[1])
			}
			user, err := a.user(cmd, args[0])
			if err != nil {
				return err
			}
			if _, err := a.services.Users.LinkChat(cmd.Context(), user.ID, chatID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "linked %s to chat %d\n", user.Username, chatID)
			return nil
		},
	}

	cmd.AddCommand(add, list, deactivate, passwd, link)
	return cmd
}
