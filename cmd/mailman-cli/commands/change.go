package commands

import (
	"fmt"
	"os"

	"mailman-admin/lib/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(changeCmd)
}

var changeCmd = &cobra.Command{
	Use:   "change <from> <to>",
	Short: "Changes the address of a member.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		client := createClient(cmd.Context())

		ok, err := client.ChangeMember(cmd.Context(), args[0], args[1])
		if err != nil {
			serviceutil.Fatal("failed to change member", err)
		}
		if !ok {
			fmt.Fprintf(os.Stderr, "change of %s to %s was not confirmed\n", args[0], args[1])
			os.Exit(1)
		}
		fmt.Printf("changed %s to %s\n", args[0], args[1])
	},
}
