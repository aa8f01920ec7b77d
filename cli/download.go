package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDownloadCmd() *cobra.Command {
	var src sourceFlags
	var dir string

	downloadCmd := &cobra.Command{
		Use:   "download",
		Short: "Save a file shared with the service account into a local directory",
		Long: `Download streams a Google Drive file in chunks and writes it under its Drive name.
An existing local file with the same name is overwritten.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := openDrive(cmd.Context(), src.jobSource(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer client.Close()

			path, err := client.Download(cmd.Context(), dir)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), path)
			return err
		},
	}

	src.bind(downloadCmd, "")
	downloadCmd.Flags().StringVarP(&dir, "dir", "d", "", "Target directory (default: the working directory)")
	return downloadCmd
}
