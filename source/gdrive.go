package source

import (
	"bytes"
	"context"
	"encoding/pem"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"dataaccess/config"
	"dataaccess/utils"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// driveAPI is the part of the Google Drive API used by GoogleDriveClient.
type driveAPI interface {
	mediaAPI

	// ListFiles returns one page of the files visible to the service account, with their ids and names.
	ListFiles(ctx context.Context, pageToken string) (*drive.FileList, error)

	// GetFile returns the metadata of a file projected on the given fields.
	GetFile(ctx context.Context, fileID string, fields string) (*drive.File, error)
}

// driveService implements driveAPI with the generated Drive v3 client.
type driveService struct {
	srv *drive.Service
}

func (s driveService) ListFiles(ctx context.Context, pageToken string) (*drive.FileList, error) {
	call := s.srv.Files.List().Fields("nextPageToken, files(id, name)").Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}
	return call.Do()
}

func (s driveService) GetFile(ctx context.Context, fileID string, fields string) (*drive.File, error) {
	return s.srv.Files.Get(fileID).Fields(googleapi.Field(fields)).Context(ctx).Do()
}

func (s driveService) DownloadRange(ctx context.Context, fileID string, start, end int64) (*http.Response, error) {
	call := s.srv.Files.Get(fileID).Context(ctx)
	call.Header().Set("Range", fmt.Sprintf("bytes=%d-%d", start, end))
	return call.Download()
}

// ConnectGoogleDrive builds a Drive service authenticated as the service account, scoped to full drive access.
// Requests and token refreshes go through a transport owned by the caller, who should release it
// with CloseIdleConnections.
func ConnectGoogleDrive(ctx context.Context, settings config.GoogleServiceAccount) (*drive.Service, *http.Transport, error) {
	// the key is only parsed on the first token request, fail early instead
	if block, _ := pem.Decode([]byte(settings.PrivateKey)); block == nil {
		return nil, nil, fmt.Errorf("the service account private key is not PEM encoded")
	}
	key, err := settings.JSON()
	if err != nil {
		return nil, nil, err
	}
	jwtConfig, err := google.JWTConfigFromJSON(key, drive.DriveScope)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid service account credentials: %w", err)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Transport: transport})
	httpClient := jwtConfig.Client(ctx)

	srv, err := drive.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		transport.CloseIdleConnections()
		return nil, nil, fmt.Errorf("couldn't create the Google Drive service: %w", err)
	}
	log.Info("Google Drive API client connected", zap.String("clientEmail", settings.ClientEmail))
	return srv, transport, nil
}

// idleCloser is the part of *http.Transport released by Close.
type idleCloser interface {
	CloseIdleConnections()
}

// GoogleDriveClient reads files shared with a service account from Google Drive.
//
// The file is identified either at construction (WithFileID) or by name with GetFileID.
// Once identified it stays identified; all metadata and content operations need it.
// A client is meant to be used by one goroutine at a time.
type GoogleDriveClient struct {
	fileID    string
	ioOptions IOOptions
	chunkSize int64
	progress  Progress

	api       driveAPI
	transport idleCloser
}

// GoogleDriveOption configures a GoogleDriveClient.
type GoogleDriveOption func(*GoogleDriveClient)

// WithFileID sets the file id, skipping the lookup by name.
func WithFileID(fileID string) GoogleDriveOption {
	return func(c *GoogleDriveClient) {
		c.fileID = fileID
	}
}

// WithIOOptions sets the options used by Read to parse the content.
func WithIOOptions(opts IOOptions) GoogleDriveOption {
	return func(c *GoogleDriveClient) {
		opts.Columns = append([]string(nil), opts.Columns...)
		c.ioOptions = opts
	}
}

// WithProgress sets the sink of the download progress, a terminal bar on stderr by default.
func WithProgress(p Progress) GoogleDriveOption {
	return func(c *GoogleDriveClient) {
		c.progress = p
	}
}

// WithChunkSize sets the size of one download request.
func WithChunkSize(size int64) GoogleDriveOption {
	return func(c *GoogleDriveClient) {
		c.chunkSize = size
	}
}

// NewGoogleDriveClient connects to Google Drive with the service account and returns a client.
func NewGoogleDriveClient(ctx context.Context, settings config.GoogleServiceAccount, opts ...GoogleDriveOption) (*GoogleDriveClient, error) {
	srv, transport, err := ConnectGoogleDrive(ctx, settings)
	if err != nil {
		return nil, err
	}
	c := newGoogleDriveClient(driveService{srv: srv}, opts...)
	c.transport = transport
	return c, nil
}

func newGoogleDriveClient(api driveAPI, opts ...GoogleDriveOption) *GoogleDriveClient {
	c := &GoogleDriveClient{api: api, chunkSize: DefaultChunkSize}
	for _, opt := range opts {
		opt(c)
	}
	if c.progress == nil {
		c.progress = NewBarProgress(os.Stderr, "downloading")
	}
	return c
}

// Close releases the idle connections of the transport owned by the client.
func (c *GoogleDriveClient) Close() {
	if c.transport != nil {
		c.transport.CloseIdleConnections()
	}
}

// FileID returns the identified file id, empty when not set yet.
func (c *GoogleDriveClient) FileID() string {
	return c.fileID
}

// GetFileID looks up a file by its exact name among the files shared with the service account
// and stores its id in the client. When several files share the name, the first one in the order
// returned by Drive wins. On failure the previously stored id is kept.
//
// Remember to share updated files with the service account email, otherwise they are not visible.
func (c *GoogleDriveClient) GetFileID(ctx context.Context, filename string) error {
	visible := 0
	pageToken := ""
	for {
		list, err := c.api.ListFiles(ctx, pageToken)
		if err != nil {
			return fmt.Errorf("failed to list Google Drive files: %w", err)
		}
		for _, f := range list.Files {
			visible++
			if f.Name == filename {
				log.Info("Found file in Google Drive", zap.String("filename", filename), zap.String("fileID", f.Id))
				c.fileID = f.Id
				return nil
			}
		}
		if list.NextPageToken == "" {
			break
		}
		pageToken = list.NextPageToken
	}

	if visible == 0 {
		log.Error("No files found, ensure access shared with service account.")
		return ErrNoFilesFound
	}
	log.Error("Could not find file in Google Drive", zap.String("filename", filename), zap.Int("visible", visible))
	return fmt.Errorf("%w: could not find file '%s'", ErrFileNotFound, filename)
}

// metadata fetches a single field of the identified file.
func (c *GoogleDriveClient) metadata(ctx context.Context, field string, pick func(f *drive.File) string) (string, error) {
	if c.fileID == "" {
		return "", ErrNoFileID
	}
	f, err := c.api.GetFile(ctx, c.fileID, field)
	if err != nil {
		return "", fmt.Errorf("failed to get %s of file %s: %w", field, c.fileID, err)
	}
	return fieldValue(field, pick(f))
}

// SourceCreatedAt returns the RFC 3339 creation time of the file in Google Drive.
func (c *GoogleDriveClient) SourceCreatedAt(ctx context.Context) (string, error) {
	return c.metadata(ctx, "createdTime", func(f *drive.File) string { return f.CreatedTime })
}

// SourceUpdatedAt returns the RFC 3339 modification time of the file in Google Drive.
func (c *GoogleDriveClient) SourceUpdatedAt(ctx context.Context) (string, error) {
	return c.metadata(ctx, "modifiedTime", func(f *drive.File) string { return f.ModifiedTime })
}

// SourceFilename returns the name of the file in Google Drive.
func (c *GoogleDriveClient) SourceFilename(ctx context.Context) (string, error) {
	return c.metadata(ctx, "name", func(f *drive.File) string { return f.Name })
}

// SourceURI returns the link to view the file in Google Drive.
func (c *GoogleDriveClient) SourceURI(ctx context.Context) (string, error) {
	return c.metadata(ctx, "webViewLink", func(f *drive.File) string { return f.WebViewLink })
}

// driveIngestConfiguration is the audit view of a GoogleDriveClient.
type driveIngestConfiguration struct {
	FileID    string    `json:"file_id,omitempty"`
	IOOptions IOOptions `json:"io_options"`
	ChunkSize int64     `json:"chunk_size"`
}

// SourceIngestConfiguration returns the client configuration as JSON.
func (c *GoogleDriveClient) SourceIngestConfiguration() (string, error) {
	return IngestConfiguration(driveIngestConfiguration{
		FileID:    c.fileID,
		IOOptions: c.ioOptions,
		ChunkSize: c.chunkSize,
	})
}

// Stream downloads the content of the identified file chunk by chunk, reporting the progress after every chunk.
func (c *GoogleDriveClient) Stream(ctx context.Context) ([]byte, error) {
	if c.fileID == "" {
		return nil, ErrNoFileID
	}

	var buf bytes.Buffer
	downloader := NewMediaDownloader(c.api, c.fileID, &buf, c.chunkSize)
	defer c.progress.Finish()
	for done := false; !done; {
		status, complete, err := downloader.NextChunk(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to download file %s: %w", c.fileID, err)
		}
		c.progress.Update(status.Percent())
		done = complete
	}
	log.Debug("Downloaded file content", zap.String("fileID", c.fileID), zap.Int("bytes", buf.Len()))
	return buf.Bytes(), nil
}

// Download saves the content of the file into dir (the working directory when empty) under its Drive name.
// An existing file with the same name is overwritten. It returns the path of the written file.
func (c *GoogleDriveClient) Download(ctx context.Context, dir string) (string, error) {
	filename, err := c.SourceFilename(ctx)
	if err != nil {
		return "", err
	}
	if !utils.IsPlainFileName(filename) {
		return "", fmt.Errorf("refusing to write the file with the name '%s'", filename)
	}

	data, err := c.Stream(ctx)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write the file %s: %w", path, err)
	}
	log.Info("File downloaded successfully", zap.String("path", path), zap.Int("bytes", len(data)))
	return path, nil
}

// Read downloads the file and parses it into a Table according to the client IOOptions.
func (c *GoogleDriveClient) Read(ctx context.Context) (*Table, error) {
	log.Info("Reading data from Google Drive into a table", zap.String("fileID", c.fileID))
	data, err := c.Stream(ctx)
	if err != nil {
		return nil, err
	}
	return ParseTable(bytes.NewReader(data), c.ioOptions)
}

var _ DataSource = (*GoogleDriveClient)(nil)
