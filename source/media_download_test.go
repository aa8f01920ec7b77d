package source

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

func TestNextChunkReconstructsContent(t *testing.T) {
	const chunkSize = 10
	tests := []struct {
		name           string
		size           int
		expectedChunks int
	}{
		{name: "Test single chunk", size: 7, expectedChunks: 1},
		{name: "Test exact single chunk", size: 10, expectedChunks: 1},
		{name: "Test three chunks", size: 25, expectedChunks: 3},
		{name: "Test fifty chunks", size: 495, expectedChunks: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := makeContent(tt.size)
			api := &fakeDrive{content: map[string][]byte{"f1": content}}
			var out bytes.Buffer
			d := NewMediaDownloader(api, "f1", &out, chunkSize)

			chunks := 0
			var status DownloadStatus
			for done := false; !done; {
				var err error
				status, done, err = d.NextChunk(context.Background())
				require.NoError(t, err)
				chunks++
			}

			assert.Equal(t, tt.expectedChunks, chunks)
			assert.Equal(t, tt.expectedChunks, api.downloadCalls)
			assert.Equal(t, content, out.Bytes())
			assert.Equal(t, int64(tt.size), status.Total)
			assert.Equal(t, 100, status.Percent())
		})
	}
}

func TestNextChunkAfterDone(t *testing.T) {
	api := &fakeDrive{content: map[string][]byte{"f1": makeContent(5)}}
	d := NewMediaDownloader(api, "f1", io.Discard, 10)

	_, done, err := d.NextChunk(context.Background())
	require.NoError(t, err)
	require.True(t, done)

	_, done, err = d.NextChunk(context.Background())
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, 1, api.downloadCalls, "no request is sent once the download is complete")
}

func TestNextChunkFullContentResponse(t *testing.T) {
	content := makeContent(42)
	api := &fakeDrive{content: map[string][]byte{"f1": content}, fullContent: true}
	var out bytes.Buffer
	d := NewMediaDownloader(api, "f1", &out, 10)

	status, done, err := d.NextChunk(context.Background())
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, int64(42), status.Total)
	assert.Equal(t, content, out.Bytes())
}

func TestNextChunkUnknownTotal(t *testing.T) {
	content := makeContent(23)
	api := &fakeDrive{content: map[string][]byte{"f1": content}, unknownTotal: true}
	var out bytes.Buffer
	d := NewMediaDownloader(api, "f1", &out, 10)

	chunks := 0
	for done := false; !done; chunks++ {
		var err error
		_, done, err = d.NextChunk(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, 3, chunks)
	assert.Equal(t, content, out.Bytes())
}

func TestNextChunkUnknownTotalExactMultiple(t *testing.T) {
	content := makeContent(20)
	api := &fakeDrive{content: map[string][]byte{"f1": content}, unknownTotal: true}
	var out bytes.Buffer
	d := NewMediaDownloader(api, "f1", &out, 10)

	var status DownloadStatus
	for done := false; !done; {
		var err error
		status, done, err = d.NextChunk(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, 3, api.downloadCalls, "the last request finds nothing left")
	assert.Equal(t, int64(20), status.Total)
	assert.Equal(t, content, out.Bytes())
}

func TestNextChunkEmptyFile(t *testing.T) {
	api := &fakeDrive{content: map[string][]byte{"f1": {}}}
	var out bytes.Buffer
	d := NewMediaDownloader(api, "f1", &out, 10)

	status, done, err := d.NextChunk(context.Background())
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, 0, out.Len())
	assert.Equal(t, 100, status.Percent())
}

// stallingAPI always answers with an empty partial response.
type stallingAPI struct{}

func (stallingAPI) DownloadRange(context.Context, string, int64, int64) (*http.Response, error) {
	return rangeResponse(makeContent(100), 0, -1, false)
}

func TestNextChunkEmptyChunk(t *testing.T) {
	d := NewMediaDownloader(stallingAPI{}, "f1", io.Discard, 10)

	_, done, err := d.NextChunk(context.Background())
	assert.False(t, done)
	assert.True(t, errors.Is(err, ErrEmptyChunk), "got %v", err)
}

func TestNextChunkProviderError(t *testing.T) {
	api := &fakeDrive{content: map[string][]byte{}}
	d := NewMediaDownloader(api, "missing", io.Discard, 10)

	_, done, err := d.NextChunk(context.Background())
	assert.False(t, done)
	var apiErr *googleapi.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Code)
}

func TestParseContentRangeTotal(t *testing.T) {
	tests := []struct {
		name           string
		input          string
		expectedResult int64
		expectedError  bool
	}{
		{name: "Test total", input: "bytes 0-9/1234", expectedResult: 1234},
		{name: "Test unknown total", input: "bytes 0-9/*", expectedResult: -1},
		{name: "Test unsatisfied range", input: "bytes */0", expectedResult: 0},
		{name: "Test missing total", input: "bytes 0-9", expectedError: true},
		{name: "Test garbage total", input: "bytes 0-9/abc", expectedError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseContentRangeTotal(tt.input)
			if tt.expectedError {
				if err == nil {
					t.Errorf("parseContentRangeTotal(%v) was supposed to return an error", tt.input)
				}
				return
			}
			if err != nil || result != tt.expectedResult {
				t.Errorf("parseContentRangeTotal(%v) = %v, %v; want %v", tt.input, result, err, tt.expectedResult)
			}
		})
	}
}

func TestDownloadStatusPercent(t *testing.T) {
	tests := []struct {
		name           string
		status         DownloadStatus
		expectedResult int
	}{
		{name: "Test unknown", status: DownloadStatus{Received: 5, Total: -1}, expectedResult: 0},
		{name: "Test empty", status: DownloadStatus{Received: 0, Total: 0}, expectedResult: 100},
		{name: "Test third", status: DownloadStatus{Received: 1, Total: 3}, expectedResult: 33},
		{name: "Test complete", status: DownloadStatus{Received: 3, Total: 3}, expectedResult: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := tt.status.Percent(); result != tt.expectedResult {
				t.Errorf("Percent(%v) = %v; want %v", tt.status, result, tt.expectedResult)
			}
		})
	}
}
