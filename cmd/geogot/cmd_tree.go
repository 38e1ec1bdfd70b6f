package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/odvcencio/geogot/pkg/node"
	"github.com/odvcencio/geogot/pkg/object"
	"github.com/odvcencio/geogot/pkg/ref"
	"github.com/odvcencio/geogot/pkg/tree"
)

func newTreeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Build and list trees",
	}
	cmd.AddCommand(newTreeBuildCmd())
	cmd.AddCommand(newTreeLsCmd())
	return cmd
}

func newTreeBuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build [file]",
		Short: "Write a tree from an entry listing and print its id",
		Long: `Read one entry per line from file (or stdin) and write every tree level
needed to hold them. A line is

	<kind> <id> <path> [meta=<id>] [minx,miny,maxx,maxy[,crs]]

Blank lines and lines starting with '#' are ignored.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := readEntryArg(cmd, args)
			if err != nil {
				return err
			}
			r, err := openRepo()
			if err != nil {
				return err
			}
			id, err := tree.Build(r.Objects, entries)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
}

func newTreeLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls [ref]",
		Short: "List the entries of the tree a ref points at",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ref.StageHead
			if len(args) == 1 {
				name = args[0]
			}
			r, err := openRepo()
			if err != nil {
				return err
			}
			entries, err := r.Entries(name)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, e := range entries {
				fmt.Fprintln(out, formatEntryLine(e))
			}
			return nil
		},
	}
}

func newStageCmd() *cobra.Command {
	var work bool

	cmd := &cobra.Command{
		Use:   "stage [file]",
		Short: "Build a tree from an entry listing and move STAGE_HEAD to it",
		Long:  "Like 'tree build', then rebind STAGE_HEAD (or WORK_HEAD with --work) to the new tree.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := readEntryArg(cmd, args)
			if err != nil {
				return err
			}
			r, err := openRepo()
			if err != nil {
				return err
			}
			update := r.Stage
			if work {
				update = r.UpdateWorkTree
			}
			moved, err := update(entries)
			if err != nil {
				return err
			}
			printRef(cmd.OutOrStdout(), moved)
			return nil
		},
	}
	cmd.Flags().BoolVar(&work, "work", false, "move WORK_HEAD instead of STAGE_HEAD")
	return cmd
}

func readEntryArg(cmd *cobra.Command, args []string) ([]node.Entry, error) {
	if len(args) == 0 {
		return parseEntries(cmd.InOrStdin())
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseEntries(f)
}

func parseEntries(r io.Reader) ([]node.Entry, error) {
	var entries []node.Entry
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		e, err := parseEntryLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read entries: %w", err)
	}
	return entries, nil
}

// metaPrefix marks the optional metadata id column of an entry line.
const metaPrefix = "meta="

func parseEntryLine(line string) (node.Entry, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 || len(fields) > 5 {
		return nil, fmt.Errorf("want <kind> <id> <path> [meta=<id>] [bounds], got %q", line)
	}
	kind, err := object.ParseKind(fields[0])
	if err != nil {
		return nil, err
	}
	id, err := object.ParseID(fields[1])
	if err != nil {
		return nil, err
	}

	meta := object.NullID
	var bounds *node.Bounds
	for _, f := range fields[3:] {
		if hex, ok := strings.CutPrefix(f, metaPrefix); ok {
			if !meta.IsNull() {
				return nil, fmt.Errorf("duplicate %s column in %q", metaPrefix, line)
			}
			if meta, err = object.ParseID(hex); err != nil {
				return nil, fmt.Errorf("metadata id: %w", err)
			}
			continue
		}
		if bounds != nil {
			return nil, fmt.Errorf("duplicate bounds column in %q", line)
		}
		b, err := tree.ParseBounds(f)
		if err != nil {
			return nil, err
		}
		bounds = &b
	}

	n, err := node.New(fields[2], kind, id, meta)
	if err != nil {
		return nil, err
	}
	if bounds == nil {
		return n, nil
	}
	return node.WithBounds(n, *bounds), nil
}

// formatEntryLine renders e in the form parseEntryLine reads.
func formatEntryLine(e node.Entry) string {
	n := e.Node()
	line := fmt.Sprintf("%s %s %s", n.Kind(), n.ObjectID(), n.Path())
	if n.HasMetadata() {
		line += " " + metaPrefix + n.MetadataID().String()
	}
	if b, ok := e.Bounds(); ok {
		line += " " + tree.FormatBounds(b)
	}
	return line
}
