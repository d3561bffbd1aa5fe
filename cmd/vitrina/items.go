package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/erazemk/vitrina/internal/form"
	"github.com/erazemk/vitrina/internal/inquiry"
	"github.com/erazemk/vitrina/internal/model"
)

func (a *app) formatter() inquiry.Formatter {
	f := inquiry.Default()
	f.Phone = a.cfg.Phone
	f.Currency = a.cfg.Currency
	f.Separator = a.cfg.DecimalSeparator
	return f
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid item id %q", s)
	}
	return id, nil
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List items grouped by category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.close()

			out := cmd.OutOrStdout()
			groups := sess.store.GroupedByCategory()
			if len(groups) == 0 {
				fmt.Fprintln(out, "No items.")
				return nil
			}

			f := a.formatter()
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for i, g := range groups {
				if i > 0 {
					fmt.Fprintln(tw)
				}
				fmt.Fprintf(tw, "%s (%d)\n", g.Category, len(g.Items))
				for _, item := range g.Items {
					printRow(tw, f, item)
				}
			}
			return tw.Flush()
		},
	}
}

func printRow(w io.Writer, f inquiry.Formatter, item model.Item) {
	image := ""
	if item.ImageURL.IsSet() {
		image = item.ImageURL.String()
	}
	fmt.Fprintf(w, "  %d\t%s\t%s\t%s\t%s\n", item.ID, item.Name, f.FormatPrice(item.Price), item.State.Label(), image)
}

// itemFlags are the field flags shared by add and edit.
type itemFlags struct {
	name        string
	price       string
	description string
	category    string
	state       string
	image       string
}

func (f *itemFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.name, "name", "n", "", "item name")
	flags.StringVarP(&f.price, "price", "p", "", `price, e.g. "10", "5.50" or "5,50"`)
	flags.StringVar(&f.description, "description", "", "item description")
	flags.StringVarP(&f.category, "category", "c", "", "category")
	flags.StringVarP(&f.state, "state", "s", "", "pending, to_sell, to_donate, to_move or to_trash")
	flags.StringVarP(&f.image, "image", "i", "", "path of an image to attach")
}

// apply copies the flags the user passed into fields.
func (f *itemFlags) apply(cmd *cobra.Command, fields *form.Fields) error {
	flags := cmd.Flags()
	if flags.Changed("name") {
		fields.Name = f.name
	}
	if flags.Changed("price") {
		fields.Price = f.price
	}
	if flags.Changed("description") {
		fields.Description = f.description
	}
	if flags.Changed("category") {
		fields.Category = f.category
	}
	if flags.Changed("state") {
		state, err := model.ParseState(f.state)
		if err != nil {
			return err
		}
		fields.State = state
	}
	return nil
}

// submit fills the open form from the flags and saves it.
func (f *itemFlags) submit(cmd *cobra.Command, ctrl *form.Controller) (*model.Item, error) {
	fields := ctrl.Fields()
	if err := f.apply(cmd, &fields); err != nil {
		return nil, err
	}
	if err := ctrl.SetFields(fields); err != nil {
		return nil, err
	}

	if f.image != "" {
		data, err := os.ReadFile(f.image)
		if err != nil {
			return nil, fmt.Errorf("reading image: %w", err)
		}
		if err := ctrl.SelectImage(data); err != nil {
			return nil, err
		}
	}

	return ctrl.Submit(cmd.Context())
}

func newAddCmd(a *app) *cobra.Command {
	var f itemFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.close()

			ctrl := form.New(sess.store, sess.backend)
			if err := ctrl.OpenCreate(); err != nil {
				return err
			}
			item, err := f.submit(cmd, ctrl)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added item %d: %s\n", item.ID, item.Name)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newEditCmd(a *app) *cobra.Command {
	var f itemFlags

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change the fields of an item",
		Long:  "Change the fields of an item. Only the flags that are passed change the item.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			sess, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.close()

			item, ok := sess.store.Item(id)
			if !ok {
				return &model.NotFoundError{ID: id}
			}

			ctrl := form.New(sess.store, sess.backend)
			if err := ctrl.OpenEdit(item); err != nil {
				return err
			}
			saved, err := f.submit(cmd, ctrl)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Updated item %d: %s\n", saved.ID, saved.Name)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			sess, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.close()

			item, ok := sess.store.Item(id)
			if !ok {
				return &model.NotFoundError{ID: id}
			}

			out := cmd.OutOrStdout()
			if !yes && !confirm(cmd.InOrStdin(), out, fmt.Sprintf("Delete item %d (%s)?", id, item.Name)) {
				fmt.Fprintln(out, "Cancelled.")
				return nil
			}

			if err := sess.store.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(out, "Deleted item %d\n", id)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

// confirm asks a yes/no question. Anything but "y" or "yes" is a no.
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N] ", question)
	line, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
