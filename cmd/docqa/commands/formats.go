package commands

import (
	"github.com/spf13/cobra"

	"github.com/spherical/docqa/internal/domain"
)

func newFormatsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List supported document formats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, u, err := setup(cmd, opts, false)
			if err != nil {
				return err
			}

			convErr := a.Converter.Available()
			rows := make([][]string, 0, len(domain.SupportedFormats))
			for _, f := range domain.SupportedFormats {
				status := "yes"
				if f.Legacy && convErr != nil {
					status = "needs soffice"
				}
				rows = append(rows, []string{string(f.Format), f.Extension, f.MediaType, status})
			}
			u.Table([]string{"FORMAT", "EXTENSION", "MEDIA TYPE", "AVAILABLE"}, rows)

			if convErr != nil {
				u.Warning("legacy formats unavailable: %v", convErr)
			} else {
				u.KeyValue("Converter", a.Converter.Binary())
			}
			return nil
		},
	}
}
