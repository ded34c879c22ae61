package commands

import (
	"bufio"
	"os"
	"slices"
	"strings"

	"mailman-admin/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	addFile    *string
	removeFile *string
)

func init() {
	addFile = addCmd.Flags().String("file", "", "A file with one address per line to add.")
	removeFile = removeCmd.Flags().String("file", "", "A file with one address per line to remove.")
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(removeCmd)
}

// readAddresses collects the addresses given as arguments and the ones in
// `path`, blank lines and lines starting with # are skipped.
func readAddresses(args []string, path string) ([]string, error) {
	addresses := append([]string{}, args...)
	if path == "" {
		return addresses, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		addresses = append(addresses, line)
	}
	return addresses, scanner.Err()
}

func renderResult(requested, confirmed []string) {
	t := newTable()
	t.AppendHeader(table.Row{"Address", "Confirmed"})
	for _, addr := range requested {
		t.AppendRow(table.Row{addr, slices.Contains(confirmed, addr)})
	}
	t.Render()
}

var addCmd = &cobra.Command{
	Use:   "add <address>... [--file <path>]",
	Short: "Subscribes addresses to the list.",
	Run: func(cmd *cobra.Command, args []string) {
		addresses, err := readAddresses(args, *addFile)
		if err != nil {
			serviceutil.Fatal("failed to read addresses", err)
		}
		client := createClient(cmd.Context())

		confirmed, err := client.AddMembers(cmd.Context(), addresses)
		if err != nil {
			serviceutil.Fatal("failed to add members", err)
		}
		renderResult(addresses, confirmed)
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove <address>... [--file <path>]",
	Short: "Unsubscribes addresses from the list.",
	Run: func(cmd *cobra.Command, args []string) {
		addresses, err := readAddresses(args, *removeFile)
		if err != nil {
			serviceutil.Fatal("failed to read addresses", err)
		}
		client := createClient(cmd.Context())

		confirmed, err := client.RemoveMembers(cmd.Context(), addresses)
		if err != nil {
			serviceutil.Fatal("failed to remove members", err)
		}
		renderResult(addresses, confirmed)
	},
}
