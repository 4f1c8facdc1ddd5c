package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spherical/docqa/internal/workflow"
)

func newAskCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <file> <question>",
		Short: "Ask a question about a document",
		Long:  "Extract a document and answer a natural language question about its content.",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, u, err := setup(cmd, opts, true)
			if err != nil {
				return err
			}
			defer a.Close()

			upload, err := readUpload(args[0], a.Registry.MaxUploadBytes())
			if err != nil {
				return reportFailure(u, err)
			}
			question := strings.Join(args[1:], " ")
			u.Step("Asking %s with %s", upload.Filename, a.Completer.Name())

			spin := u.NewSpinner("Thinking...")
			spin.Start()
			res := a.Graph.Run(cmdContext(cmd), workflow.Input{Question: question, Upload: &upload})
			spin.Stop()
			if !res.OK() {
				u.Step("Run %s failed at %s", res.RunID, res.FailedAt)
				return reportFailure(u, res.Err)
			}

			fmt.Fprintln(u.Out(), res.Answer)
			return nil
		},
	}
}
