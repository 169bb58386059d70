package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/HaiFongPan/gdrive-picker/internal/drive"
)

// selectedFile is one picked file as printed to stdout
type selectedFile struct {
	drive.File `yaml:",inline"`
	URL        string `json:"url" yaml:"url"`
}

func isValidOutputFormat(format string) bool {
	switch format {
	case "json", "yaml", "text":
		return true
	}
	return false
}

func toSelected(files []drive.File) []selectedFile {
	out := make([]selectedFile, 0, len(files))
	for _, f := range files {
		out = append(out, selectedFile{File: f, URL: drive.ViewLink(f.ID)})
	}
	return out
}

// writeSelection prints the picked files in the given format
func writeSelection(w io.Writer, files []drive.File, format string) error {
	selected := toSelected(files)

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(selected)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(selected); err != nil {
			return err
		}
		return enc.Close()
	case "text":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, f := range selected {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", f.ID, f.Name, f.URL)
		}
		return tw.Flush()
	}

	return fmt.Errorf("invalid output format: %s", format)
}
