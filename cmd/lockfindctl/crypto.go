package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lockfind/lockfind/internal/application"
	"github.com/lockfind/lockfind/internal/vaultcrypto"
)

var cryptoPassword string

// readTextArg returns the single positional argument, or stdin when the
// argument is "-".
func readTextArg(args []string) (string, error) {
	if args[0] != "-" {
		return args[0], nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

var encryptCmd = &cobra.Command{
	Use:   "encrypt <text>",
	Short: "Encrypt text with a password",
	Long: `Encrypts text offline with the same AES-256-GCM scheme the gateway
uses, printing the envelope. Pass "-" to read the text from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readTextArg(args)
		if err != nil {
			return err
		}

		envelope, err := vaultcrypto.Encrypt(text, cryptoPassword)
		if err != nil {
			return err
		}

		fmt.Println(envelope)
		return nil
	},
}

var decryptCmd = &cobra.Command{
	Use:   "decrypt <envelope>",
	Short: "Decrypt an envelope with a password",
	Long: `Decrypts an envelope produced by 'encrypt' or the gateway's
/api/encrypt route. Pass "-" to read the envelope from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		envelope, err := readTextArg(args)
		if err != nil {
			return err
		}

		text, err := vaultcrypto.Decrypt(envelope, cryptoPassword)
		if errors.Is(err, vaultcrypto.ErrDecryptionFailed) {
			return fmt.Errorf("%s decryption failed: invalid password or corrupted data", color.RedString("✗"))
		}
		if err != nil {
			return err
		}

		fmt.Println(text)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{encryptCmd, decryptCmd} {
		c.Flags().StringVarP(&cryptoPassword, "password", "p", application.DefaultPassword, "encryption password")
	}
}
