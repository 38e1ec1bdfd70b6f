package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/odvcencio/geogot/pkg/node"
)

func newPathCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "path",
		Short: "Evaluate tree path expressions",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "parent <path>",
		Short: "Print the parent tree path (empty for the root)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parent, ok := node.ParentPath(args[0])
			if !ok {
				return errors.New("path parent: empty path has no parent")
			}
			fmt.Fprintln(cmd.OutOrStdout(), parent)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "leaf <path>",
		Short: "Print the last path segment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, ok := node.LeafName(args[0])
			if !ok {
				return errors.New("path leaf: empty path has no leaf")
			}
			fmt.Fprintln(cmd.OutOrStdout(), name)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "ancestors <path>",
		Short: "Print every path leading to path, shallowest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := node.AncestorPaths(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, p := range paths {
				fmt.Fprintln(out, p)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "child <parent> <name>",
		Short: "Join a parent path and a child name",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), node.AppendChild(args[0], args[1]))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate <path>",
		Short: "Check that path can name a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return node.ValidatePath(args[0])
		},
	})

	cmd.AddCommand(newPathPredicateCmd("is-child", "Report whether child sits directly below parent", node.IsDirectChild))
	cmd.AddCommand(newPathPredicateCmd("is-descendant", "Report whether child lies below parent", node.IsDescendant))

	return cmd
}

func newPathPredicateCmd(use, short string, pred func(parent, child string) bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <parent> <child>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatBool(pred(args[0], args[1])))
		},
	}
}
