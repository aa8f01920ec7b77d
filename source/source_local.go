package source

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// LocalSource implementation of a data source reading a file on the local filesystem.
type LocalSource struct {
	// path an absolute path to the file, normalized to the current OS format.
	path string
	// ioOptions the options used by Read to parse the content.
	ioOptions IOOptions
}

// NewLocalSource is a constructor for creating a new LocalSource.
//
// - path: the path to a regular file. It is normalized and made absolute;
// an error is returned if it does not exist or is a directory.
func NewLocalSource(path string, opts IOOptions) (*LocalSource, error) {
	absPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve the path %s: %w", path, err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to access the file %s: %w", absPath, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory, not a file", absPath)
	}
	opts.Columns = append([]string(nil), opts.Columns...)
	return &LocalSource{path: absPath, ioOptions: opts}, nil
}

func (l *LocalSource) stat() (os.FileInfo, error) {
	info, err := os.Stat(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to access the file %s: %w", l.path, err)
	}
	return info, nil
}

// SourceCreatedAt is not available portably for local files and always reports ErrFieldAbsent,
// unless the file is gone, in which case the stat error is returned.
func (l *LocalSource) SourceCreatedAt(_ context.Context) (string, error) {
	if _, err := l.stat(); err != nil {
		return "", err
	}
	return fieldValue("createdTime", "")
}

// SourceUpdatedAt returns the modification time of the file in RFC 3339 format.
func (l *LocalSource) SourceUpdatedAt(_ context.Context) (string, error) {
	info, err := l.stat()
	if err != nil {
		return "", err
	}
	return info.ModTime().UTC().Format(time.RFC3339), nil
}

// SourceFilename returns the base name of the file.
func (l *LocalSource) SourceFilename(_ context.Context) (string, error) {
	return filepath.Base(l.path), nil
}

// SourceURI returns the file:// URL of the file.
func (l *LocalSource) SourceURI(_ context.Context) (string, error) {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(l.path)}
	return u.String(), nil
}

// SourceIngestConfiguration returns the source configuration as JSON.
func (l *LocalSource) SourceIngestConfiguration() (string, error) {
	return IngestConfiguration(struct {
		Path      string    `json:"path"`
		IOOptions IOOptions `json:"io_options"`
	}{l.path, l.ioOptions})
}

// Read loads the whole file and parses it into a Table.
func (l *LocalSource) Read(_ context.Context) (*Table, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read the file %s: %w", l.path, err)
	}
	log.Debug("Read local file", zap.String("path", l.path), zap.Int("bytes", len(data)))
	return ParseTable(bytes.NewReader(data), l.ioOptions)
}

var _ DataSource = (*LocalSource)(nil)
