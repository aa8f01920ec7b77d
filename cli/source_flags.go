package cli

import (
	"context"
	"fmt"
	"io"

	"dataaccess/config"
	"dataaccess/source"

	"github.com/spf13/cobra"
)

// sourceFlags selects the data source of a command: a Drive file by name or id, or a local file.
type sourceFlags struct {
	filename  string
	fileID    string
	local     string
	format    string
	delimiter string
	noHeader  bool
	nrows     int
}

// bind registers the flags on the command; defaultFilename is used when neither a name nor an id is given.
func (f *sourceFlags) bind(cmd *cobra.Command, defaultFilename string) {
	flags := cmd.Flags()
	flags.StringVarP(&f.filename, "filename", "f", defaultFilename, "Name of the file shared with the service account")
	flags.StringVar(&f.fileID, "file-id", "", "Google Drive file id, skips the lookup by name")
	flags.StringVar(&f.local, "local", "", "Read a local file instead of Google Drive")
	flags.StringVar(&f.format, "format", source.FormatCSV, "Content format: csv, parquet or json")
	flags.StringVar(&f.delimiter, "delimiter", "", "CSV field delimiter (default \",\")")
	flags.BoolVar(&f.noHeader, "no-header", false, "The first CSV row is data")
	flags.IntVar(&f.nrows, "nrows", 0, "Read at most this many rows (0 reads all)")
}

func (f *sourceFlags) ioOptions() source.IOOptions {
	return source.IOOptions{
		Format:    f.format,
		Delimiter: f.delimiter,
		NoHeader:  f.noHeader,
		NRows:     f.nrows,
	}
}

// jobSource converts the flags into the source section of a job.
func (f *sourceFlags) jobSource() JobSource {
	return JobSource{
		Filename:  f.filename,
		FileID:    f.fileID,
		Local:     f.local,
		IOOptions: f.ioOptions(),
	}
}

// openSource returns the data source described by the job section and a function releasing it.
func openSource(ctx context.Context, spec JobSource, progressOut io.Writer) (source.DataSource, func(), error) {
	if spec.Local != "" {
		local, err := source.NewLocalSource(spec.Local, spec.IOOptions)
		if err != nil {
			return nil, nil, err
		}
		return local, func() {}, nil
	}

	client, err := openDrive(ctx, spec, progressOut)
	if err != nil {
		return nil, nil, err
	}
	return client, client.Close, nil
}

// openDrive connects to Google Drive with the service account from the environment and identifies the file.
func openDrive(ctx context.Context, spec JobSource, progressOut io.Writer) (*source.GoogleDriveClient, error) {
	if spec.FileID == "" && spec.Filename == "" {
		return nil, fmt.Errorf("either a file name or a file id is required")
	}
	settings, err := config.LoadGoogleServiceAccount()
	if err != nil {
		return nil, err
	}

	opts := []source.GoogleDriveOption{
		source.WithIOOptions(spec.IOOptions),
		source.WithProgress(source.NewBarProgress(progressOut, "Downloading")),
	}
	if spec.FileID != "" {
		opts = append(opts, source.WithFileID(spec.FileID))
	}
	if spec.ChunkSize > 0 {
		opts = append(opts, source.WithChunkSize(spec.ChunkSize))
	}
	client, err := source.NewGoogleDriveClient(ctx, settings, opts...)
	if err != nil {
		return nil, err
	}
	if spec.FileID == "" {
		if err := client.GetFileID(ctx, spec.Filename); err != nil {
			client.Close()
			return nil, err
		}
	}
	return client, nil
}
