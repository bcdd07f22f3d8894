package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newPingCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check backend availability",
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := ctx.gateway.Ping(cmd.Context())
			if err != nil {
				return userError(err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Backend reachable at %s\n", ctx.config.Server.URL)
			if info.Version != "" {
				fmt.Fprintf(out, "Version: %s\n", info.Version)
			}
			if len(info.Features) > 0 {
				fmt.Fprintf(out, "Features: %s\n", strings.Join(info.Features, ", "))
			}
			return nil
		},
	}
}
