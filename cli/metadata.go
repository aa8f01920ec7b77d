package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"dataaccess/source"

	"github.com/spf13/cobra"
)

// absentValue is printed for metadata fields the provider has no value for.
const absentValue = "-"

func newMetadataCmd() *cobra.Command {
	var src sourceFlags

	metadataCmd := &cobra.Command{
		Use:   "metadata",
		Short: "Print the metadata and the ingest configuration of a data source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, closeSource, err := openSource(cmd.Context(), src.jobSource(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeSource()
			return printMetadata(cmd.Context(), cmd.OutOrStdout(), ds)
		},
	}

	src.bind(metadataCmd, "")
	return metadataCmd
}

// printMetadata writes one "name: value" line per metadata field of the data source.
func printMetadata(ctx context.Context, w io.Writer, ds source.DataSource) error {
	fields := []struct {
		name  string
		value func(ctx context.Context) (string, error)
	}{
		{"created_at", ds.SourceCreatedAt},
		{"updated_at", ds.SourceUpdatedAt},
		{"filename", ds.SourceFilename},
		{"uri", ds.SourceURI},
		{"ingest_configuration", func(context.Context) (string, error) { return ds.SourceIngestConfiguration() }},
	}

	for _, field := range fields {
		value, err := field.value(ctx)
		if errors.Is(err, source.ErrFieldAbsent) {
			value = absentValue
		} else if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s: %s\n", field.name, value); err != nil {
			return err
		}
	}
	return nil
}
