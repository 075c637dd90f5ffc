package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage API keys",
	Long:  `Issue, list, revoke, and delete the API keys the gateway accepts.`,
}

var keysIssueCmd = &cobra.Command{
	Use:   "issue <name>",
	Short: "Issue a new API key",
	Long: `Issues a new API key under the given name and prints the raw key.

The raw key is shown exactly once; only a hash is stored. Copy it now.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		keys, db, err := openKeyManager(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		raw, err := keys.Issue(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Println(color.GreenString("✓") + " Issued API key " + color.YellowString(args[0]))
		fmt.Println("  " + raw)
		fmt.Println(color.CyanString("→") + " This key is shown only once. Store it somewhere safe.")
		return nil
	},
}

var keysListCmd = &cobra.Command{
	Use:   "list",
	Short: "List API keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		keys, db, err := openKeyManager(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		records := keys.List()
		if len(records) == 0 {
			fmt.Println("No API keys found.")
			return nil
		}

		for _, k := range records {
			status := color.GreenString("enabled")
			if !k.Enabled {
				status = color.RedString("revoked")
			}
			lastUsed := "never"
			if k.LastUsedAt != nil {
				lastUsed = k.LastUsedAt.Format("2006-01-02 15:04:05")
			}
			fmt.Printf("%s  %s  %s\n", color.YellowString(k.ID), k.Name, status)
			fmt.Printf("    created %s, last used %s, %d requests\n",
				k.CreatedAt.Format("2006-01-02 15:04:05"), lastUsed, k.UsageCount)
		}
		return nil
	},
}

var keysRevokeCmd = &cobra.Command{
	Use:   "revoke <key-id>",
	Short: "Revoke an API key",
	Long: `Disables an API key without deleting its record.

Revoked keys fail authentication but stay visible in 'keys list'.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		keys, db, err := openKeyManager(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		ok, err := keys.Revoke(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no API key with id %q", args[0])
		}

		fmt.Println(color.GreenString("✓") + " Revoked " + color.YellowString(args[0]))
		return nil
	},
}

var keysDeleteCmd = &cobra.Command{
	Use:   "delete <key-id>",
	Short: "Delete an API key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		keys, db, err := openKeyManager(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		ok, err := keys.Delete(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no API key with id %q", args[0])
		}

		fmt.Println(color.GreenString("✓") + " Deleted " + color.YellowString(args[0]))
		return nil
	},
}

func init() {
	keysCmd.AddCommand(keysIssueCmd)
	keysCmd.AddCommand(keysListCmd)
	keysCmd.AddCommand(keysRevokeCmd)
	keysCmd.AddCommand(keysDeleteCmd)
}
