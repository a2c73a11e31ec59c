// File: cmd/stowage/object_cmd.go
package main

import (
	"fmt"
	"io"
	"os"

	"stowage/internal/flags"
	"stowage/internal/service"

	"github.com/spf13/cobra"
)

type objectFlags struct {
	target   string
	readOnly bool
	prefix   string
	force    bool
}

func (f objectFlags) toTarget() service.Target {
	return service.Target{Name: f.target, ReadOnly: f.readOnly}
}

func newObjectCmd() *cobra.Command {
	cmdFlags := objectFlags{}

	objectCmd := &cobra.Command{
		Use:   "object",
		Short: "Read and write objects",
		Long: `The object command stores, fetches, checks, lists and deletes objects on a target.
The target is "mirror", "fallback" or the name of a configured backend. Without
--target the mirror is used when configured, then the fallback pair, then the
only configured backend.`,
	}
	objectCmd.PersistentFlags().StringVarP(&cmdFlags.target, flags.Target, flags.TargetShort, "", "Target to operate on: mirror, fallback or a backend name")
	objectCmd.PersistentFlags().BoolVar(&cmdFlags.readOnly, flags.ReadOnly, false, "Refuse writes and deletes on the target")

	putCmd := &cobra.Command{
		Use:   "put [id] [file|-]",
		Short: "Store an object",
		Long:  `Stores the contents of a file under id. Reads standard input when the file is "-" or omitted.`,
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := servicesFromContext(cmd.Context())
			if err != nil {
				return err
			}

			id := args[0]
			r, size, closeFn, err := openInput(cmd, args[1:])
			if err != nil {
				return err
			}
			defer closeFn()

			if err := app.StorageService.PutObject(cmd.Context(), cmdFlags.toTarget(), id, r, size); err != nil {
				return fmt.Errorf("error storing '%s': %w", id, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Object '%s' stored successfully.\n", id)
			return nil
		},
	}

	getCmd := &cobra.Command{
		Use:   "get [id] [file|-]",
		Short: "Fetch an object",
		Long:  `Writes the object to a file, or to standard output when the file is "-" or omitted.`,
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := servicesFromContext(cmd.Context())
			if err != nil {
				return err
			}

			id := args[0]
			if len(args) < 2 || args[1] == "-" {
				_, err := app.StorageService.GetObject(cmd.Context(), cmdFlags.toTarget(), id, cmd.OutOrStdout())
				if err != nil {
					return fmt.Errorf("error fetching '%s': %w", id, err)
				}
				return nil
			}

			path := args[1]
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("error creating %s: %w", path, err)
			}
			n, err := app.StorageService.GetObject(cmd.Context(), cmdFlags.toTarget(), id, f)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				os.Remove(path)
				return fmt.Errorf("error fetching '%s': %w", id, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Object '%s' written to %s (%d bytes).\n", id, path, n)
			return nil
		},
	}

	existsCmd := &cobra.Command{
		Use:   "exists [id]",
		Short: "Check whether an object exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := servicesFromContext(cmd.Context())
			if err != nil {
				return err
			}
			ok, err := app.StorageService.ObjectExists(cmd.Context(), cmdFlags.toTarget(), args[0])
			if err != nil {
				return fmt.Errorf("error checking '%s': %w", args[0], err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ok)
			return nil
		},
	}

	folderExistsCmd := &cobra.Command{
		Use:   "folder-exists [id]",
		Short: "Check whether any object lives under a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := servicesFromContext(cmd.Context())
			if err != nil {
				return err
			}
			ok, err := app.StorageService.FolderExists(cmd.Context(), cmdFlags.toTarget(), args[0])
			if err != nil {
				return fmt.Errorf("error checking folder '%s': %w", args[0], err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ok)
			return nil
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete an object",
		Long:  `Deletes an object from the target. Asks for confirmation unless --force is given.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := servicesFromContext(cmd.Context())
			if err != nil {
				return err
			}

			id := args[0]
			if !cmdFlags.force {
				message := fmt.Sprintf("You are about to delete '%s'. This cannot be undone.", id)
				ok, err := app.prompter(cmd.InOrStdin(), cmd.OutOrStdout()).Confirm(message, id)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Deletion cancelled.")
					return nil
				}
			}

			if err := app.StorageService.DeleteObject(cmd.Context(), cmdFlags.toTarget(), id); err != nil {
				return fmt.Errorf("error deleting '%s': %w", id, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Object '%s' deleted successfully.\n", id)
			return nil
		},
	}
	deleteCmd.Flags().BoolVarP(&cmdFlags.force, flags.Force, flags.ForceShort, false, "Delete without asking for confirmation")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List objects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := servicesFromContext(cmd.Context())
			if err != nil {
				return err
			}

			target := cmdFlags.target
			if target == "" {
				if target, err = app.Factory.DefaultTarget(); err != nil {
					return err
				}
			}

			ids, err := app.StorageService.ListObjects(cmd.Context(), cmdFlags.toTarget(), cmdFlags.prefix)
			if err != nil {
				return fmt.Errorf("error listing objects: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), app.StorageFormatter.FormatObjectList(target, cmdFlags.prefix, ids))
			return nil
		},
	}
	listCmd.Flags().StringVar(&cmdFlags.prefix, flags.Prefix, "", "Only list ids starting with this prefix")

	objectCmd.AddCommand(putCmd, getCmd, existsCmd, folderExistsCmd, deleteCmd, listCmd)
	return objectCmd
}

// Opens the put source: a file path, or standard input for "-" or no argument.
// The size is -1 when unknown
func openInput(cmd *cobra.Command, args []string) (io.Reader, int64, func(), error) {
	if len(args) == 0 || args[0] == "-" {
		return cmd.InOrStdin(), -1, func() {}, nil
	}

	f, err := os.Open(args[0])
	if err != nil {
		return nil, 0, nil, fmt.Errorf("error opening %s: %w", args[0], err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, nil, fmt.Errorf("error reading %s: %w", args[0], err)
	}
	return f, info.Size(), func() { f.Close() }, nil
}
