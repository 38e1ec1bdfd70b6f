package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/odvcencio/geogot/pkg/ref"
)

func newTagCmd() *cobra.Command {
	var deleteTag string
	var force bool
	var showID bool

	cmd := &cobra.Command{
		Use:   "tag [name] [target-ref]",
		Short: "List, create, or delete lightweight tags",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}

			if strings.TrimSpace(deleteTag) != "" {
				if len(args) > 0 {
					return fmt.Errorf("tag --delete does not accept positional args")
				}
				return r.DeleteTag(deleteTag)
			}

			if len(args) == 0 {
				tags, err := r.ListTags()
				if err != nil {
					return err
				}
				for _, t := range tags {
					if showID {
						fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", t.ObjectID(), t.ShortName())
					} else {
						fmt.Fprintln(cmd.OutOrStdout(), t.ShortName())
					}
				}
				return nil
			}

			target := ref.Head
			if len(args) == 2 {
				target = strings.TrimSpace(args[1])
			}
			resolved, err := r.Refs.Resolve(target)
			if err != nil {
				return fmt.Errorf("resolve tag target %q: %w", target, err)
			}
			return r.CreateTag(args[0], resolved.ObjectID(), resolved.Kind(), force)
		},
	}

	cmd.Flags().StringVarP(&deleteTag, "delete", "d", "", "delete the named tag")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "move an existing tag")
	cmd.Flags().BoolVar(&showID, "show-id", false, "print target ids when listing")

	return cmd
}
