// lockfindctl administers a lockfind database from the command line: API
// key lifecycle, offline encrypt/decrypt, and request log inspection.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	sqliteadapter "github.com/lockfind/lockfind/internal/adapter/driven/sqlite"
	"github.com/lockfind/lockfind/internal/application"
)

var dbPath string

var rootCmd = &cobra.Command{
	Use:   "lockfindctl",
	Short: "Administer a lockfind gateway database",
	Long: `lockfindctl manages the lockfind API gateway from the command line.

It operates directly on the gateway's SQLite database, so key changes made
here are picked up by the server on its next restart.

Available Commands:
  keys       Manage API keys (issue, list, revoke, delete)
  encrypt    Encrypt text with a password
  decrypt    Decrypt an envelope with a password
  logs       Show or clear recorded request logs

Run 'lockfindctl help <command>' for details on a specific command.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "lockfind.db", "path to the lockfind database")

	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(encryptCmd)
	rootCmd.AddCommand(decryptCmd)
	rootCmd.AddCommand(logsCmd)
}

// openKeyManager opens the database and returns a key manager loaded with
// the persisted key set, plus a close func for the database.
func openKeyManager(cmd *cobra.Command) (*application.KeyManager, *sqliteadapter.DB, error) {
	db, err := sqliteadapter.NewDB(dbPath)
	if err != nil {
		return nil, nil, err
	}
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	store := sqliteadapter.NewKeyRepo(db)
	records, err := store.LoadAll(cmd.Context())
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	keys := application.NewKeyManager(store)
	keys.Load(records)
	return keys, db, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
