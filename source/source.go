package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"dataaccess/utils"
)

// log a convenience alias to shorten code lines
var log = utils.Logger

var (
	// ErrNoFileID is returned by every operation that needs an identified remote file when none is set.
	ErrNoFileID = errors.New("no file id set, use GetFileID to set it")

	// ErrNoFilesFound is returned when the provider reports no visible files at all.
	ErrNoFilesFound = errors.New("no files found")

	// ErrFileNotFound is returned when none of the visible files has the requested name.
	ErrFileNotFound = errors.New("file not found")

	// ErrFieldAbsent is returned when the provider has no value for a requested metadata field.
	ErrFieldAbsent = errors.New("metadata field absent")
)

// DataSource is the surface every concrete data source provides.
// Metadata is queried from the provider at call time and never cached.
type DataSource interface {

	// SourceCreatedAt returns the provider-reported creation timestamp of the resource.
	SourceCreatedAt(ctx context.Context) (string, error)

	// SourceUpdatedAt returns the provider-reported last modification timestamp of the resource.
	SourceUpdatedAt(ctx context.Context) (string, error)

	// SourceFilename returns the provider-reported display name of the resource.
	SourceFilename(ctx context.Context) (string, error)

	// SourceURI returns a dereferenceable locator of the resource, for example a web view link.
	SourceURI(ctx context.Context) (string, error)

	// SourceIngestConfiguration returns a serialized snapshot of the source's own configuration.
	// It is meant for audit logs, not for re-creating the source.
	SourceIngestConfiguration() (string, error)

	// Read fetches and parses the resource content. Every call fetches the content again.
	Read(ctx context.Context) (*Table, error)
}

// IngestConfiguration serializes the configuration of a source as JSON.
// Callers must pass a value that holds no credentials.
func IngestConfiguration(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to serialize the ingest configuration: %w", err)
	}
	return string(b), nil
}

// fieldValue turns an empty provider value into ErrFieldAbsent.
func fieldValue(field string, value string) (string, error) {
	if value == "" {
		return "", fmt.Errorf("%w: %s", ErrFieldAbsent, field)
	}
	return value, nil
}
