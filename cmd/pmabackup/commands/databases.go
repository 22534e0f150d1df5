package commands

import (
	"os"

	"pmabackup/lib/scrapers/phpmyadmin"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(databasesCmd)
}

var databasesCmd = &cobra.Command{
	Use:   "databases <url> <username> <password>",
	Short: "Lists the databases the console offers for export, for composing --exclude-dbs.",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		client := newClient(args[0])
		dbs, err := client.ListDatabases(cmd.Context(), phpmyadmin.BackupOptions{
			Username:   args[1],
			Password:   args[2],
			ServerName: serverName,
		})
		if err != nil {
			fatal(err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Database"})
		for _, db := range dbs {
			t.AppendRow(table.Row{db})
		}
		t.Render()
	},
}
