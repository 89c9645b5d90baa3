package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"casewizard/internal/wizard/draft"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Obtain and store gateway tokens",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDeps()
		if err != nil {
			return err
		}
		username, _ := cmd.Flags().GetString("username")
		username = strings.TrimSpace(username)
		if username == "" {
			return fmt.Errorf("--username is required")
		}
		access, refresh, err := d.client.Login(cmd.Context(), username)
		if err != nil {
			return err
		}
		if err := d.store.SetCredential(draft.Credential{AccessToken: access, RefreshToken: refresh}); err != nil {
			return err
		}
		fmt.Printf("Logged in as %s\n", username)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget stored gateway tokens",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDeps()
		if err != nil {
			return err
		}
		if err := d.store.ClearCredential(); err != nil {
			return err
		}
		fmt.Println("Logged out")
		return nil
	},
}

func init() {
	loginCmd.Flags().String("username", "", "identity to log in as")
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}
