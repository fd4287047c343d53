package main

import (
	"fmt"
	"io"
	"os"

	"github.com/JonMunkholm/certvault/internal/core"
	"github.com/spf13/cobra"
)

func (a *app) importCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Bulk import certificates from a JSON file ('-' for stdin)",
		Long: `Reads a document shaped like the bulk API request,
{"certificates": [{"name": ..., "code": ..., "image_data": ...}, ...]},
and stores it with the same rules: malformed items and known codes are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			items, err := core.DecodeBatch(in)
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			service, backend, _, err := a.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer backend.Close()

			result, err := service.ImportCertificates(cmd.Context(), items)
			if err != nil {
				return fmt.Errorf("%s: %w", core.FormatUserError(err), err)
			}

			out := cmd.OutOrStdout()
			if result.Added == 0 {
				fmt.Fprintln(out, "No new certificates to add or data was invalid.")
			} else {
				fmt.Fprintf(out, "Successfully added %d certificates.\n", result.Added)
			}
			fmt.Fprintf(out, "received=%d skipped_invalid=%d skipped_duplicate=%d import_id=%s\n",
				result.Received, result.SkippedInvalid, result.SkippedDuplicate, result.ImportID)
			return nil
		},
	}
}
