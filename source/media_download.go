package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
)

// DefaultChunkSize the size of one download request, 100 MiB.
const DefaultChunkSize int64 = 100 * 1024 * 1024

// ErrEmptyChunk is returned when the provider sends no bytes although the download is not complete.
var ErrEmptyChunk = errors.New("empty chunk before the end of the content")

// mediaAPI fetches a byte range of the content of a file.
type mediaAPI interface {
	DownloadRange(ctx context.Context, fileID string, start, end int64) (*http.Response, error)
}

// DownloadStatus describes the progress of a chunked download.
type DownloadStatus struct {
	// Received the number of bytes received so far.
	Received int64
	// Total the content size reported by the provider, -1 while unknown.
	Total int64
}

// Percent returns the progress between 0 and 100.
func (s DownloadStatus) Percent() int {
	switch {
	case s.Total > 0:
		return int(min(s.Received*100/s.Total, 100))
	case s.Total == 0:
		return 100
	default:
		return 0
	}
}

// MediaDownloader downloads the content of a file in ranges of chunkSize bytes.
// The number of chunks is decided by the provider; the download ends only when the provider signals completion.
type MediaDownloader struct {
	api       mediaAPI
	fileID    string
	out       io.Writer
	chunkSize int64

	received int64
	total    int64
	done     bool
}

// NewMediaDownloader creates a downloader writing the content of fileID into out.
func NewMediaDownloader(api mediaAPI, fileID string, out io.Writer, chunkSize int64) *MediaDownloader {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &MediaDownloader{api: api, fileID: fileID, out: out, chunkSize: chunkSize, total: -1}
}

func (d *MediaDownloader) status() DownloadStatus {
	return DownloadStatus{Received: d.received, Total: d.total}
}

// NextChunk requests the next range and reports the status and whether the download is complete.
func (d *MediaDownloader) NextChunk(ctx context.Context) (DownloadStatus, bool, error) {
	if d.done {
		return d.status(), true, nil
	}

	start, end := d.received, d.received+d.chunkSize-1
	resp, err := d.api.DownloadRange(ctx, d.fileID, start, end)
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusRequestedRangeNotSatisfiable && d.total < 0 {
			// nothing left past the received bytes: an empty file, or a size that was never reported
			d.total, d.done = d.received, true
			return d.status(), true, nil
		}
		return d.status(), false, fmt.Errorf("failed to download the range %d-%d: %w", start, end, err)
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			log.Debug("Error closing the download body", zap.Error(err))
		}
	}(resp.Body)

	n, err := io.Copy(d.out, resp.Body)
	d.received += n
	if err != nil {
		return d.status(), false, fmt.Errorf("failed to read the range %d-%d: %w", start, end, err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		// the provider ignored the range and sent everything
		d.total, d.done = d.received, true
	case http.StatusPartialContent:
		total, err := parseContentRangeTotal(resp.Header.Get("Content-Range"))
		if err != nil {
			return d.status(), false, err
		}
		d.total = total
		switch {
		case total >= 0 && d.received >= total:
			d.done = true
		case total < 0 && n < d.chunkSize:
			d.done = true
		case n == 0:
			return d.status(), false, fmt.Errorf("%w: offset %d", ErrEmptyChunk, start)
		}
	default:
		return d.status(), false, fmt.Errorf("unexpected download status %q", resp.Status)
	}

	log.Trace("Downloaded chunk", zap.String("fileID", d.fileID), zap.Int64("bytes", n),
		zap.Int64("received", d.received), zap.Int64("total", d.total), zap.Bool("done", d.done))
	return d.status(), d.done, nil
}

// parseContentRangeTotal extracts the complete length from "bytes 0-99/1234", -1 for "bytes 0-99/*".
func parseContentRangeTotal(header string) (int64, error) {
	_, total, found := strings.Cut(header, "/")
	if !found {
		return 0, fmt.Errorf("malformed Content-Range header %q", header)
	}
	if total == "*" {
		return -1, nil
	}
	size, err := strconv.ParseInt(strings.TrimSpace(total), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed Content-Range header %q: %w", header, err)
	}
	return size, nil
}
