package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/odvcencio/geogot/pkg/object"
	"github.com/odvcencio/geogot/pkg/ref"
)

func newRefCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ref",
		Short: "Inspect and rebind refs",
	}
	cmd.AddCommand(newRefShowCmd())
	cmd.AddCommand(newRefListCmd())
	cmd.AddCommand(newRefUpdateCmd())
	cmd.AddCommand(newRefDeleteCmd())
	cmd.AddCommand(newRefSymbolicCmd())
	cmd.AddCommand(newRefLogCmd())
	return cmd
}

// printRef writes "<kind> <id> <name>", or "unborn <name>" for a ref that
// points at nothing.
func printRef(w io.Writer, r ref.Ref) {
	if r.IsUnborn() {
		fmt.Fprintf(w, "unborn %s\n", r.Name())
		return
	}
	fmt.Fprintf(w, "%s %s %s\n", r.Kind(), r.ObjectID(), r.Name())
}

func newRefShowCmd() *cobra.Command {
	var noDeref bool

	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Print the object a ref resolves to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			if noDeref {
				target, ok, err := r.Refs.Symbolic(args[0])
				if err != nil {
					return err
				}
				if ok {
					fmt.Fprintf(cmd.OutOrStdout(), "ref: %s\n", target)
					return nil
				}
			}
			resolved, err := r.Refs.Resolve(args[0])
			if err != nil {
				return err
			}
			printRef(cmd.OutOrStdout(), resolved)
			return nil
		},
	}
	cmd.Flags().BoolVar(&noDeref, "no-deref", false, "print a symbolic ref's target instead of following it")
	return cmd
}

func newRefListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [prefix]",
		Short: "List refs, optionally under a name prefix",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			prefix := ""
			if len(args) == 1 {
				prefix = args[0]
			}
			all, err := r.Refs.List(prefix)
			if err != nil {
				return err
			}
			for _, b := range all {
				printRef(cmd.OutOrStdout(), b)
			}
			return nil
		},
	}
}

func newRefUpdateCmd() *cobra.Command {
	var expect string

	cmd := &cobra.Command{
		Use:   "update <name> <kind> <id>",
		Short: "Bind a ref to an object",
		Long: `Bind a ref to an object. With --expect the update only happens if the
ref currently resolves to the given id; pass the zero id to require that
the ref does not exist yet.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := object.ParseKind(args[1])
			if err != nil {
				return err
			}
			id, err := object.ParseID(args[2])
			if err != nil {
				return err
			}
			next, err := ref.New(args[0], id, kind)
			if err != nil {
				return err
			}

			r, err := openRepo()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("expect") {
				old, err := object.ParseID(expect)
				if err != nil {
					return fmt.Errorf("--expect: %w", err)
				}
				if err := r.Refs.CompareAndSwap(next, old); err != nil {
					return err
				}
			} else if err := r.Refs.Update(next); err != nil {
				return err
			}
			printRef(cmd.OutOrStdout(), next)
			return nil
		},
	}
	cmd.Flags().StringVar(&expect, "expect", "", "only update if the ref currently points at this id")
	return cmd
}

func newRefDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Remove a ref",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			if err := r.Refs.Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}

func newRefSymbolicCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "symbolic <name> [target]",
		Short: "Read or set a symbolic ref",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			if len(args) == 2 {
				return r.Refs.SetSymbolic(args[0], args[1])
			}
			target, ok, err := r.Refs.Symbolic(args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("ref %s is not symbolic", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), target)
			return nil
		},
	}
}

func newRefLogCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "log <name>",
		Short: "Show the rebind history of a ref",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			entries, err := r.Refs.Reflog(args[0], limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, e := range entries {
				ts := e.Time.UTC().Format(time.RFC3339)
				fmt.Fprintf(out, "%s %s %s %s\n", e.New.Short(12), ts, e.Ref, e.Reason)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "maximum entries to show")
	return cmd
}
