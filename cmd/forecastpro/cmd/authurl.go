package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var authState string

// authURLCmd represents the auth-url command
var authURLCmd = &cobra.Command{
	Use:   "auth-url",
	Short: "Print the bank account connection URL",
	Long: `Auth-url prints the Tink Link URL to open in a browser. After the bank
login completes, the redirect URI receives a one-time authorization code to
pass to "forecastpro sync --code".`,

	RunE: runAuthURL,
}

func init() {
	rootCmd.AddCommand(authURLCmd)

	authURLCmd.Flags().StringVar(&authState, "state", "", "opaque state echoed back on the redirect (default: random)")
}

func runAuthURL(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	client, err := a.tinkClient()
	if err != nil {
		return err
	}

	state := authState
	if state == "" {
		state = uuid.NewString()
	}

	fmt.Println(client.AuthURL(state))
	return nil
}
