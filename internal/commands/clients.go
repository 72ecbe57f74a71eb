package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newClientsCommand(configPath *string) *cobra.Command {
	clientsCmd := &cobra.Command{
		Use:   "clients",
		Short: "Client operations",
	}
	clientsCmd.AddCommand(newClientsListCommand(configPath))
	clientsCmd.AddCommand(newClientsExportCommand(configPath))
	return clientsCmd
}

func newClientsListCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List clients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tACCOUNTS\tUSERS")
			for _, c := range a.clients.List() {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", c.ID, c.Name, c.AccountCount, c.AuthorizedUserCount)
			}
			return tw.Flush()
		},
	}
}

func newClientsExportCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "export <client-id>",
		Short: "Print the export snapshot of a client as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			out, err := a.clients.Export(args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
}
