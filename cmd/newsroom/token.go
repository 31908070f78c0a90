package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func tokenCmd(opts *globalOptions) *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the given actor",
		RunE: func(cmd *cobra.Command, _ []string) error {
			actor := opts.actor()
			if actor == nil || actor.ID == "" {
				return fmt.Errorf("--actor-id and --actor-role are required")
			}
			if !actor.Role.IsValid() {
				return fmt.Errorf("unknown role %q", actor.Role)
			}
			module, err := moduleBuilder(opts)
			if err != nil {
				return err
			}
			defer module.Close()

			issuer := module.Container().TokenIssuer()
			if issuer == nil {
				return fmt.Errorf("auth is disabled; set auth.enabled and auth.secret")
			}
			token, err := issuer.Issue(*actor, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 12*time.Hour, "Token lifetime")
	return cmd
}
