package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newUsersCmd(d func() *deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Inspect accounts",
	}

	var limit, offset int
	list := &cobra.Command{
		Use:   "list",
		Short: "List live accounts in id order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit < 1 || offset < 0 {
				return fmt.Errorf("--limit must be positive and --offset not negative")
			}
			users, total, err := d().users.ListUsers(cmd.Context(), limit, offset)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tEMAIL\tNICKNAME\tJOINED")
			for _, u := range users {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", u.ID, u.Email, u.Nickname, u.CreatedAt.Format("2006-01-02"))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d accounts\n", len(users), total)
			return nil
		},
	}
	list.Flags().IntVar(&limit, "limit", 50, "Maximum rows to print")
	list.Flags().IntVar(&offset, "offset", 0, "Rows to skip")
	cmd.AddCommand(list)

	return cmd
}
