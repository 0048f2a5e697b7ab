package cmd

import (
	"fmt"

	"github.com/vibast-solutions/ms-go-mentor-auth/app/security"
	"github.com/vibast-solutions/ms-go-mentor-auth/app/service"

	"github.com/spf13/cobra"
)

var (
	keygenPrivatePath string
	keygenPublicPath  string
	keygenBits        int
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate the RSA key pair used to sign tokens",
	Long:  `Generate an RSA key pair for RS256 token signing. The private key is written with mode 0600.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		pair, err := security.GenerateKeyPair(keygenBits)
		if err != nil {
			return err
		}
		if err := security.WriteKeyPair(pair, keygenPrivatePath, keygenPublicPath); err != nil {
			return err
		}

		fmt.Printf("private_key: %s\n", keygenPrivatePath)
		fmt.Printf("public_key: %s\n", keygenPublicPath)
		return nil
	},
}

var keygenAPIKeyCmd = &cobra.Command{
	Use:   "apikey <service_name>",
	Short: "Generate an internal API key for a calling service",
	Long:  `Print a new internal API key. Add "<service_name>=<api_key>" to INTERNAL_API_KEYS to enable it.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		key, err := service.GenerateInternalAPIKey()
		if err != nil {
			return err
		}

		fmt.Printf("service_name: %s\n", args[0])
		fmt.Printf("api_key: %s\n", key)
		fmt.Printf("env_entry: %s=%s\n", args[0], key)
		return nil
	},
}

func init() {
	keygenCmd.Flags().StringVar(&keygenPrivatePath, "private", "private.pem", "path of the private key file")
	keygenCmd.Flags().StringVar(&keygenPublicPath, "public", "public.pem", "path of the public key file")
	keygenCmd.Flags().IntVar(&keygenBits, "bits", 2048, "RSA key size in bits")
	keygenCmd.AddCommand(keygenAPIKeyCmd)
	rootCmd.AddCommand(keygenCmd)
}
