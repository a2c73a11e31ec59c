// File: cmd/stowage/backends_cmd.go
package main

import (
	"fmt"
	"strings"

	"stowage/internal/provider/registry"

	"github.com/spf13/cobra"
)

func newBackendsCmd() *cobra.Command {
	backendsCmd := &cobra.Command{
		Use:   "backends",
		Short: "Inspect configured backends",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Check every configured backend",
		Long:  `Initializes every configured backend concurrently and reports whether it answers, along with its usage when the provider can report it.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := servicesFromContext(cmd.Context())
			if err != nil {
				return err
			}

			statuses := app.StorageService.ListBackends(cmd.Context())
			if len(statuses) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No backends configured. Use 'stowage config set backends.<name>.kind <kind>'. Supported kinds: %s\n",
					strings.Join(registry.GetSupportedKinds(), ", "))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), app.StorageFormatter.FormatBackendList(statuses))
			return nil
		},
	}

	kindsCmd := &cobra.Command{
		Use:   "kinds",
		Short: "List the supported backend kinds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, kind := range registry.GetSupportedKinds() {
				fmt.Fprintln(cmd.OutOrStdout(), kind)
			}
			return nil
		},
	}

	backendsCmd.AddCommand(listCmd, kindsCmd)
	return backendsCmd
}
