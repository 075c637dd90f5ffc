package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	sqliteadapter "github.com/lockfind/lockfind/internal/adapter/driven/sqlite"
)

var (
	logsLimit int
	logsClear bool
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show or clear recorded request logs",
	Long: `Shows the most recent request log entries the gateway persisted, oldest
first. Only populated when the server runs with LOCKFIND_PERSIST_LOGS=true.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := sqliteadapter.NewDB(dbPath)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
			return err
		}
		store := sqliteadapter.NewRequestLogRepo(db, 0)

		if logsClear {
			if err := store.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Println(color.GreenString("✓") + " Request logs cleared")
			return nil
		}

		entries, err := store.Recent(cmd.Context(), logsLimit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No request logs recorded.")
			return nil
		}

		for _, e := range entries {
			status := color.GreenString("%d", e.StatusCode)
			if e.StatusCode >= 400 {
				status = color.RedString("%d", e.StatusCode)
			}
			fmt.Printf("%s  %s  %-6s %-22s key=%s %s\n",
				e.Timestamp.Format(time.RFC3339), status, e.Method, e.Path, e.KeyID,
				e.Duration.Round(time.Microsecond))
			if e.Error != "" {
				fmt.Printf("    error: %s\n", e.Error)
			}
		}
		return nil
	},
}

func init() {
	logsCmd.Flags().IntVarP(&logsLimit, "limit", "n", 50, "maximum number of entries to show")
	logsCmd.Flags().BoolVar(&logsClear, "clear", false, "delete all recorded request logs")
}
