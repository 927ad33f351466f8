package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"


	"github.com/rahulvramesh/appdata-cleaner/internal/history"
	"github.com/rahulvramesh/appdata-cleaner/internal/types"
	"github.com/rahulvramesh/appdata-cleaner/internal/utils"
)

const (
	// TabSpacing is the number of spaces between tabwriter columns.
	TabSpacing = 2
)

// PrintJSON writes one JSON object per report, one per line.
func PrintJSON(reports []Report, writer io.Writer) error {
	enc := json.NewEncoder(writer)
	for _, r := range reports {
		if r.Entries == nil {
			r.Entries = []types.FolderEntry{}
		}
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encoding JSON output: %w", err)
		}
	}
	return nil
}

// PrintTable outputs reports in human-readable table format.
func PrintTable(reports []Report, writer io.Writer) error {
	w := tabwriter.NewWriter(writer, 0, 4, TabSpacing, ' ', 0)

	for i, r := range reports {
		if i > 0 {
			fmt.Fprintln(w)
		}

		if !r.Outcome.RootFound {
			fmt.Fprintf(w, "%s: not found\n", r.Label)
			continue
		}

		total := utils.TotalSize(r.Entries)
		fmt.Fprintf(w, "%s (%s)\n", r.Label, r.Root)
		if len(r.Entries) == 0 {
			fmt.Fprintln(w, "  no folders")
		} else {
			fmt.Fprintln(w, "  NAME\tSIZE\tFILES\tSHARE\t")
			for _, e := range r.Entries {
				fmt.Fprintf(w, "  %s\t%s\t%d\t%.1f%%\t\n",
					e.Name, utils.FormatFileSize(e.SizeBytes), e.Files, utils.Percentage(e.SizeBytes, total))
			}
		}
		fmt.Fprintf(w, "Total:\t%s in %d folders\t\t\t\n", utils.FormatFileSize(total), len(r.Entries))
		fmt.Fprintf(w, "Elapsed:\t%v\t\t\t\n", r.Outcome.Elapsed)
	}

	return w.Flush()
}

// PrintHistoryJSON writes the operations as an indented JSON array.
func PrintHistoryJSON(ops []history.Operation, writer io.Writer) error {
	if ops == nil {
		ops = []history.Operation{}
	}
	enc := json.NewEncoder(writer)
	enc.SetIndent("", "  ")
	return enc.Encode(ops)
}

// PrintHistory lists operations one per line.
func PrintHistory(ops []history.Operation, writer io.Writer) error {
	if len(ops) == 0 {
		_, err := fmt.Fprintln(writer, "No operations found")
		return err
	}

	w := tabwriter.NewWriter(writer, 0, 4, TabSpacing, ' ', 0)
	for _, op := range ops {
		line := fmt.Sprintf("%d\t%s\t%s\t%s\t%s\t%s",
			op.ID,
			op.Timestamp.Local().Format("2006-01-02 15:04"),
			op.Type,
			op.Target,
			filepath.Base(op.SourcePath),
			utils.FormatFileSize(op.SizeBytes))
		if op.DestPath != "" {
			line += " -> " + op.DestPath
		}
		fmt.Fprintln(w, line)
	}
	return w.Flush()
}
