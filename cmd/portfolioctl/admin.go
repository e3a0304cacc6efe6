package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/portfolio/internal/db"
)

func adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage admin access",
	}
	for _, grant := range []bool{true, false} {
		use, short := "grant <uid>", "Give a user admin access"
		if !grant {
			use, short = "revoke <uid>", "Take admin access away from a user"
		}
		cmd.AddCommand(&cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := openClient(cmd, false)
				if err != nil {
					return err
				}
				defer c.Close()

				uid := args[0]
				if err := c.backend.Docs.Merge(cmd.Context(), db.UsersCollection, uid, map[string]interface{}{"isAdmin": grant}); err != nil {
					return fmt.Errorf("updating %s: %w", uid, err)
				}
				return render(cmd, map[string]interface{}{"uid": uid, "isAdmin": grant})
			},
		})
	}
	return cmd
}
