package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func cacheCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "cache", Short: "Manage the analysis cache"}
	cmd.AddCommand(cacheClearCmd())
	cmd.AddCommand(cacheEnsureIndexCmd())
	return cmd
}

func cacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Drop every cached analysis",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := build(cmd.Context())
			if err != nil {
				return err
			}
			defer c.close()

			n, err := c.service.ClearCache(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cleared %d cached analyses\n", n)
			return nil
		},
	}
}

func cacheEnsureIndexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ensure-index",
		Short: "Create the Redis vector index if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := build(cmd.Context())
			if err != nil {
				return err
			}
			defer c.close()

			if err := c.service.EnsureIndex(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "vector index ready")
			return nil
		},
	}
}
