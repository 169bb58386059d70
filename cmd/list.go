package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/HaiFongPan/gdrive-picker/internal/drive"
	"github.com/HaiFongPan/gdrive-picker/internal/errs"
	"github.com/HaiFongPan/gdrive-picker/internal/utils"
)

var (
	listSearch    string
	listPageToken string
	listMimeTypes []string
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list [folder-id]",
	Short: "List Drive files as a table",
	Long: `List one page of a Drive folder (My Drive when omitted) or of a name
search, without the interactive picker. Requires a cached token, run
"gdrive-picker login" first.

Examples:
  gdrive-picker list                      # List My Drive
  gdrive-picker list 1AbCdEf              # List a folder by id
  gdrive-picker list --search beach       # Search by name
  gdrive-picker list --page-token <token> # Continue a previous listing`,
	Args: cobra.MaximumNArgs(1),
	RunE: listFiles,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "search file names instead of listing a folder")
	listCmd.Flags().StringVar(&listPageToken, "page-token", "", "continuation token printed by a previous listing")
	listCmd.Flags().StringArrayVar(&listMimeTypes, "mime", nil, "allowed MIME type (repeatable, overrides config)")
}

func listFiles(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	var folderID string
	if len(args) > 0 {
		folderID = args[0]
	}

	mimeTypes := cfg.Picker.MimeTypes
	if len(listMimeTypes) > 0 {
		mimeTypes = listMimeTypes
	}

	service := newService(cfg, mimeTypes, nil)

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.General.Timeout()*2)
	defer cancel()

	if err := service.Initialize(ctx); err != nil {
		return err
	}
	if !service.Authenticated() {
		return errs.Normalize(errs.KindNotAuthenticated, "list", fmt.Errorf("%w, run \"gdrive-picker login\" first", errs.ErrNotAuthenticated))
	}

	var (
		page *drive.ResultPage
		err  error
	)
	if query := strings.TrimSpace(listSearch); query != "" {
		logrus.Debugf("Searching Drive for %q", query)
		page, err = service.SearchFiles(ctx, query, listPageToken)
	} else {
		logrus.Debugf("Listing Drive folder %q", folderID)
		page, err = service.ListFiles(ctx, folderID, listPageToken)
	}
	if err != nil {
		return err
	}

	return outputTable(cmd.OutOrStdout(), page)
}

// outputTable prints folders first, then files, then the continuation token
func outputTable(w io.Writer, page *drive.ResultPage) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tSIZE\tMODIFIED")

	for _, folder := range page.Folders {
		fmt.Fprintf(tw, "%s\t%s/\tfolder\t-\t-\n", folder.ID, folder.Name)
	}

	for _, file := range page.Files {
		size := "-"
		if file.Size != nil {
			size = humanize.Bytes(uint64(*file.Size))
		}
		modified := "-"
		if file.ModifiedTime != nil {
			modified = humanize.Time(*file.ModifiedTime)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", file.ID, file.Name, utils.ShortType(file.MimeType), size, modified)
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	if len(page.Folders) == 0 && len(page.Files) == 0 {
		fmt.Fprintln(w, "No files found.")
	}

	if page.NextPageToken != "" {
		fmt.Fprintf(w, "\nMore results: --page-token %s\n", page.NextPageToken)
	}

	return nil
}
