package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// exampleFilename the file read by the example command when no other is given.
const exampleFilename = "example.csv"

func newExampleCmd() *cobra.Command {
	var src sourceFlags
	var rows int

	exampleCmd := &cobra.Command{
		Use:   "example",
		Short: "Read a file shared with the service account and print its first rows",
		Long: `Example of how to use the data-access library, primarily intended for developer use.
It identifies the file by name in Google Drive, reads it into a table and prints the first rows.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Info("Running example command")
			ds, closeSource, err := openSource(cmd.Context(), src.jobSource(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeSource()

			table, err := ds.Read(cmd.Context())
			if err != nil {
				return err
			}
			log.Debug("Read table", zap.Strings("columns", table.Columns), zap.Int("rows", table.Len()))
			return table.Head(rows).Format(cmd.OutOrStdout())
		},
	}

	src.bind(exampleCmd, exampleFilename)
	exampleCmd.Flags().IntVarP(&rows, "rows", "n", 5, "Number of rows to print")
	return exampleCmd
}
