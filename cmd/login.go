package cmd

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/HaiFongPan/gdrive-picker/internal/config"
)

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with Google and cache the token",
	Long: `Sign in with your Google account through the browser consent page and
cache the token so the picker starts signed in.

Examples:
  gdrive-picker login`,
	Args: cobra.NoArgs,
	RunE: login,
}

func init() {
	rootCmd.AddCommand(loginCmd)
}

func login(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if !cfg.Picker.RememberToken {
		logrus.Warn("remember_token is disabled, the token will not be cached")
	}

	out := cmd.OutOrStdout()
	service := newService(cfg, cfg.Picker.MimeTypes, func(authURL string) {
		fmt.Fprintf(out, "Open this URL to sign in if no browser opened:\n\n  %s\n\n", authURL)
	})

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if err := service.Initialize(ctx); err != nil {
		return err
	}

	if service.Authenticated() {
		fmt.Fprintln(out, "Already signed in.")
		return nil
	}

	if err := service.SignIn(ctx); err != nil {
		return err
	}

	logrus.Infof("Signed in, token cached at %s", config.GetTokenPath())
	fmt.Fprintln(out, "Signed in.")
	return nil
}
