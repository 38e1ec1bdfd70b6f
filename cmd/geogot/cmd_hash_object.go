package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/odvcencio/geogot/pkg/object"
)

func newHashObjectCmd() *cobra.Command {
	var kindName string
	var write bool

	cmd := &cobra.Command{
		Use:   "hash-object [file]",
		Short: "Compute an object id, optionally storing the object",
		Long:  "Compute the id of a file (or stdin) as an object of the given kind. With -w the object is also written to the object store.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := object.ParseKind(kindName)
			if err != nil {
				return err
			}

			var data []byte
			if len(args) == 1 {
				data, err = os.ReadFile(args[0])
			} else {
				data, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return fmt.Errorf("hash-object: read input: %w", err)
			}

			id := object.HashObject(kind, data)
			if write {
				r, err := openRepo()
				if err != nil {
					return err
				}
				if id, err = r.Objects.Put(kind, data); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}

	cmd.Flags().StringVarP(&kindName, "type", "t", object.KindFeature.String(), "object kind")
	cmd.Flags().BoolVarP(&write, "write", "w", false, "write the object into the object store")

	return cmd
}
