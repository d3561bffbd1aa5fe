package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/erazemk/vitrina/internal/seed"
)

func newSeedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file>",
		Short: "Add every item listed in a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			drafts, err := seed.LoadFile(args[0])
			if err != nil {
				return err
			}

			sess, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.close()

			for i, d := range drafts {
				if _, err := sess.store.Create(cmd.Context(), d); err != nil {
					return fmt.Errorf("creating entry %d (%s): %w", i, d.Name, err)
				}
			}
			slog.Info("seeded catalog", "file", args[0], "items", len(drafts))
			fmt.Fprintf(cmd.OutOrStdout(), "Added %d items\n", len(drafts))
			return nil
		},
	}
}
