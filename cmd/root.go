package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/HaiFongPan/gdrive-picker/internal/auth"
	"github.com/HaiFongPan/gdrive-picker/internal/config"
	"github.com/HaiFongPan/gdrive-picker/internal/drive"
	"github.com/HaiFongPan/gdrive-picker/internal/picker"
	"github.com/HaiFongPan/gdrive-picker/internal/tui"
	img "github.com/HaiFongPan/gdrive-picker/internal/tui/image"
	"github.com/HaiFongPan/gdrive-picker/internal/utils"
)

var (
	cfgFile      string
	verbose      bool
	quiet        bool
	globalConfig *config.Config

	outputFormat  string
	pickMultiple  bool
	pickMimeTypes []string
	pickView      string
	noToolbar     bool
	noBreadcrumb  bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gdrive-picker",
	Short: "Pick files from Google Drive in the terminal",
	Long: `gdrive-picker signs in with your Google account, lets you browse and
search "My Drive" and prints the files you pick.

Configuration comes from TOML files, GDPICKER_* environment variables and
CLI flags.

Example usage:
  gdrive-picker                          # Pick one file, print JSON
  gdrive-picker --multiple --output yaml # Pick several files
  gdrive-picker --mime image/png --view list
  gdrive-picker list                     # List My Drive as a table
  gdrive-picker logout`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	RunE: runPicker,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ~/.gdrive-picker/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "enable quiet mode")

	rootCmd.Flags().StringVarP(&outputFormat, "output", "o", "", "selection output format (json, yaml, text)")
	rootCmd.Flags().BoolVarP(&pickMultiple, "multiple", "m", false, "allow selecting several files")
	rootCmd.Flags().StringArrayVar(&pickMimeTypes, "mime", nil, "allowed MIME type (repeatable, overrides config)")
	rootCmd.Flags().StringVar(&pickView, "view", "", "initial view (grid, list)")
	rootCmd.Flags().BoolVar(&noToolbar, "no-toolbar", false, "hide the search toolbar")
	rootCmd.Flags().BoolVar(&noBreadcrumb, "no-breadcrumb", false, "hide the breadcrumb")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() error {
	var err error
	globalConfig, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Configure logging
	setupLogging()

	return nil
}

// setupLogging configures the global logger based on config and flags
func setupLogging() {
	level := globalConfig.Log.Level
	if verbose {
		level = "debug"
	} else if quiet {
		level = "error"
	}

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.Warnf("Invalid log level %s, using info", level)
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)

	// Redirect all logs to file to prevent UI interference
	logDir := filepath.Join(os.TempDir(), "gdrive-picker")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		logrus.Warnf("Failed to create log directory %s: %v", logDir, err)
	} else {
		logFile := filepath.Join(logDir, "app.log")
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			logrus.Warnf("Failed to open log file %s: %v", logFile, err)
		} else {
			logrus.SetOutput(file)
		}
	}

	if globalConfig.Log.Format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{
			DisableTimestamp: quiet,
			FullTimestamp:    verbose,
		})
	}
}

// GetConfig returns the global configuration
func GetConfig() *config.Config {
	return globalConfig
}

// newService builds the Drive service from config. prompt receives the
// consent URL during sign-in.
func newService(cfg *config.Config, mimeTypes []string, prompt func(string)) *picker.Service {
	httpClient := utils.NewHTTPClient(cfg.General.Timeout(), cfg.General.MaxRetries)

	var store auth.TokenStore
	if cfg.Picker.RememberToken {
		store = auth.NewFileTokenStore(config.GetTokenPath())
	}

	return picker.NewService(picker.ServiceOptions{
		Google: auth.GoogleConfig{
			ClientID:        cfg.Google.ClientID,
			ClientSecret:    cfg.Google.ClientSecret,
			CredentialsFile: cfg.Google.CredentialsFile,
			RedirectPort:    cfg.Google.RedirectPort,
			HTTPClient:      httpClient,
			Prompt:          prompt,
		},
		MimeTypes:  mimeTypes,
		HTTPClient: httpClient,
		Store:      store,
	})
}

// pickerOptions merges config, saved preferences and flags
func pickerOptions(cmd *cobra.Command, cfg *config.Config, userData *config.UserData) tui.Options {
	opts := tui.Options{
		Multiple:       cfg.Picker.Multiple,
		MimeTypes:      cfg.Picker.MimeTypes,
		DefaultView:    tui.ParseViewMode(cfg.Picker.DefaultView),
		ShowToolbar:    cfg.Picker.ShowToolbar,
		ShowBreadcrumb: cfg.Picker.ShowBreadcrumb,
		SearchDebounce: cfg.Picker.SearchDebounce(),
	}

	if userData != nil && userData.ViewMode != "" {
		opts.DefaultView = tui.ParseViewMode(userData.ViewMode)
	}

	flags := cmd.Flags()
	if flags.Changed("multiple") {
		opts.Multiple = pickMultiple
	}
	if len(pickMimeTypes) > 0 {
		opts.MimeTypes = pickMimeTypes
	}
	if pickView != "" {
		opts.DefaultView = tui.ParseViewMode(pickView)
	}
	if noToolbar {
		opts.ShowToolbar = false
	}
	if noBreadcrumb {
		opts.ShowBreadcrumb = false
	}

	return opts
}

// runPicker runs the picker full screen and prints the selection
func runPicker(cmd *cobra.Command, args []string) error {
	cfg := globalConfig

	format := strings.ToLower(cfg.Picker.OutputFormat)
	if outputFormat != "" {
		format = strings.ToLower(outputFormat)
	}
	if !isValidOutputFormat(format) {
		return fmt.Errorf("invalid output format: %s (must be json, yaml or text)", format)
	}
	if pickView != "" && pickView != string(tui.ViewGrid) && pickView != string(tui.ViewList) {
		return fmt.Errorf("invalid view: %s (must be grid or list)", pickView)
	}

	userData, err := config.LoadUserData()
	if err != nil {
		logrus.Warnf("Failed to load user data: %v", err)
	}

	opts := pickerOptions(cmd, cfg, userData)
	opts.OnViewChange = func(mode tui.ViewMode) {
		if userData == nil {
			return
		}
		if err := userData.SetViewMode(string(mode)); err != nil {
			logrus.Warnf("Failed to save view mode: %v", err)
		}
	}
	opts.OnNavigate = func(folder *drive.Folder) {
		if folder == nil {
			logrus.Debug("Navigated to My Drive")
			return
		}
		logrus.Debugf("Navigated to folder %s (%s)", folder.Name, folder.ID)
	}
	opts.OnError = func(err error) {
		logrus.Errorf("Picker error: %v", err)
	}

	thumbnails := img.NewThumbnailManager(
		config.GetThumbnailCacheDir(),
		int64(cfg.UI.ThumbnailCacheMB)*1024*1024,
		cfg.UI.ImagePreviewMethod,
		cfg.General.Timeout(),
	)
	defer thumbnails.Close()
	opts.Thumbnails = thumbnails

	var program *tea.Program
	service := newService(cfg, opts.MimeTypes, func(authURL string) {
		logrus.Infof("Consent URL: %s", authURL)
		if program != nil {
			program.Send(tui.ConsentPromptMsg{URL: authURL})
		}
	})

	model := tui.NewPickerModel(service, opts)

	program = tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	// Set program reference in model for direct messaging
	model.SetProgram(program)

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("picker failed: %w", err)
	}

	selection := model.Selection()
	if len(selection) == 0 {
		logrus.Info("Picker closed without a selection")
		return nil
	}

	return writeSelection(cmd.OutOrStdout(), selection, format)
}
