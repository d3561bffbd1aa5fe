package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

func newInquiryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inquiry <id>...",
		Short: "Build a chat inquiry for the selected items",
		Long: `Build a chat inquiry for the selected items. Each id toggles the item in
the selection, so an id given twice is left out. Prints the total, the
message and a link that opens the chat with the message filled in.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.close()

			sel := sess.store.Selection()
			for _, arg := range args {
				id, err := parseID(arg)
				if err != nil {
					return err
				}
				if _, ok := sess.store.Item(id); !ok {
					slog.Warn("ignoring unknown item", "item", id)
					continue
				}
				sel.Toggle(id)
			}

			f := a.formatter()
			items := sess.store.SelectedItems(sel)
			total := sess.store.SelectionTotal(sel)
			inq, err := f.Build(items, total)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d selected, total %s\n\n", len(items), f.FormatPrice(total))
			fmt.Fprintln(out, inq.Message)
			fmt.Fprintln(out)
			fmt.Fprintln(out, inq.URL)
			return nil
		},
	}
}
