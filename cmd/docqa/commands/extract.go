package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func newExtractCmd(opts *options) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Extract plain text from a document",
		Long:  "Run ingestion on a document and print the validated text, or write it to a file.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, u, err := setup(cmd, opts, false)
			if err != nil {
				return err
			}

			upload, err := readUpload(args[0], a.Registry.MaxUploadBytes())
			if err != nil {
				return reportFailure(u, err)
			}
			u.Step("Extracting %s (%s, %d bytes)", upload.Filename, upload.Format, len(upload.Data))

			start := time.Now()
			spin := u.NewSpinner("Extracting " + upload.Filename + "...")
			spin.Start()
			doc, err := a.Graph.Ingest(cmdContext(cmd), upload)
			spin.Stop()
			if err != nil {
				return reportFailure(u, err)
			}

			if outputPath == "" {
				fmt.Fprintln(u.Out(), doc.Text)
				return nil
			}
			if err := os.WriteFile(outputPath, []byte(doc.Text+"\n"), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", outputPath, err)
			}
			u.Success("Extracted %d characters to %s", len([]rune(doc.Text)), outputPath)
			u.KeyValue("Format", doc.SourceFormat.Description())
			u.KeyValue("Duration", time.Since(start).Round(time.Millisecond).String())
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "write text to this file instead of stdout")
	return cmd
}
