package commands

import (
	"fmt"

	"mailman-admin/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var listPlain *bool

func init() {
	listPlain = listCmd.Flags().Bool("plain", false, "Print one address per line instead of a table.")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list [--plain]",
	Short: "Lists the members of the list.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		client := createClient(cmd.Context())

		members, err := client.ListMembers(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to list members", err)
		}

		if *listPlain {
			for _, m := range members {
				fmt.Println(m)
			}
			return
		}

		t := newTable()
		t.AppendHeader(table.Row{"#", "Member"})
		for i, m := range members {
			t.AppendRow(table.Row{i + 1, m})
		}
		t.AppendFooter(table.Row{"", fmt.Sprintf("%d members", len(members))})
		t.Render()
	},
}
