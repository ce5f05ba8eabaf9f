package main

import (
	"context"
	"fmt"

	"github.com/mikey/inbox-clusterer/internal/core"
	"github.com/mikey/inbox-clusterer/internal/di"
	"github.com/mikey/inbox-clusterer/internal/ports"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newUserCmd(flags *di.CLIFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage web interface accounts",
	}
	cmd.AddCommand(newUserAddCmd(flags))
	return cmd
}

func newUserAddCmd(flags *di.CLIFlags) *cobra.Command {
	var email, name, password string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an account in the configured store",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := di.BuildCLIContainer(flags)
			if err != nil {
				return fmt.Errorf("failed to build dependency container: %w", err)
			}
			return container.Invoke(func(logger *zap.Logger, users *core.UserService, store ports.Store) error {
				defer logger.Sync()
				defer store.Close()

				user, err := users.SignUp(context.Background(), email, name, password, password)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created user %d (%s)\n", user.ID, user.Email)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&name, "name", "", "First name")
	cmd.Flags().StringVar(&password, "password", "", "Password")
	for _, f := range []string{"email", "name", "password"} {
		_ = cmd.MarkFlagRequired(f)
	}

	return cmd
}
