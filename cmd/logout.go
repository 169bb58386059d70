package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var logoutForce bool

// logoutCmd represents the logout command
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Revoke and remove the cached Google token",
	Long: `Revoke the cached Google token and delete it from disk.

Examples:
  gdrive-picker logout          # Asks for confirmation
  gdrive-picker logout --force  # Logout without confirmation`,
	Args: cobra.NoArgs,
	RunE: logout,
}

func init() {
	rootCmd.AddCommand(logoutCmd)

	logoutCmd.Flags().BoolVarP(&logoutForce, "force", "f", false, "logout without confirmation")
}

func logout(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	out := cmd.OutOrStdout()

	service := newService(cfg, cfg.Picker.MimeTypes, nil)
	if err := service.Initialize(cmd.Context()); err != nil {
		return err
	}

	if !service.Authenticated() {
		fmt.Fprintln(out, "Not signed in.")
		return nil
	}

	// Ask for confirmation unless --force is used
	if !logoutForce && !confirm(cmd.InOrStdin(), out, "Are you sure you want to sign out? (y/N): ") {
		fmt.Fprintln(out, "Logout cancelled.")
		return nil
	}

	logrus.Info("Signing out")
	service.SignOut(cmd.Context())

	fmt.Fprintln(out, "Signed out.")
	return nil
}

// confirm asks a yes/no question, defaulting to no
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprint(out, question)

	response, _ := bufio.NewReader(in).ReadString('\n')
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}
