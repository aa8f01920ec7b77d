package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
)

// fakeDrive is an in-memory driveAPI.
type fakeDrive struct {
	// pages of the files listing, chained with page tokens "1", "2", ...
	pages [][]*drive.File
	// files metadata by id
	files map[string]*drive.File
	// content of every file by id
	content map[string][]byte
	// fullContent makes DownloadRange ignore the range and answer 200 with everything
	fullContent bool
	// unknownTotal answers "bytes a-b/*"
	unknownTotal bool

	listErr error
	getErr  error

	listCalls     int
	getCalls      int
	downloadCalls int
	getFields     []string
}

func (f *fakeDrive) remoteCalls() int {
	return f.listCalls + f.getCalls + f.downloadCalls
}

func (f *fakeDrive) ListFiles(_ context.Context, pageToken string) (*drive.FileList, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	page := 0
	if pageToken != "" {
		page, _ = strconv.Atoi(pageToken)
	}
	list := &drive.FileList{}
	if page < len(f.pages) {
		list.Files = f.pages[page]
	}
	if page+1 < len(f.pages) {
		list.NextPageToken = strconv.Itoa(page + 1)
	}
	return list, nil
}

func (f *fakeDrive) GetFile(_ context.Context, fileID string, fields string) (*drive.File, error) {
	f.getCalls++
	f.getFields = append(f.getFields, fields)
	if f.getErr != nil {
		return nil, f.getErr
	}
	file, ok := f.files[fileID]
	if !ok {
		return nil, &googleapi.Error{Code: http.StatusNotFound, Message: "File not found: " + fileID}
	}
	return file, nil
}

func (f *fakeDrive) DownloadRange(_ context.Context, fileID string, start, end int64) (*http.Response, error) {
	f.downloadCalls++
	content, ok := f.content[fileID]
	if !ok {
		return nil, &googleapi.Error{Code: http.StatusNotFound}
	}
	if f.fullContent {
		return &http.Response{
			StatusCode: http.StatusOK,
			Status:     "200 OK",
			Header:     http.Header{},
			Body:       io.NopCloser(bytes.NewReader(content)),
		}, nil
	}
	return rangeResponse(content, start, end, f.unknownTotal)
}

// rangeResponse answers a range request the way Drive does.
func rangeResponse(content []byte, start, end int64, unknownTotal bool) (*http.Response, error) {
	size := int64(len(content))
	if start >= size {
		return nil, &googleapi.Error{Code: http.StatusRequestedRangeNotSatisfiable}
	}
	end = min(end, size-1)
	total := strconv.FormatInt(size, 10)
	if unknownTotal {
		total = "*"
	}
	return &http.Response{
		StatusCode: http.StatusPartialContent,
		Status:     "206 Partial Content",
		Header:     http.Header{"Content-Range": []string{fmt.Sprintf("bytes %d-%d/%s", start, end, total)}},
		Body:       io.NopCloser(bytes.NewReader(content[start : end+1])),
	}, nil
}

// recordingProgress keeps every update.
type recordingProgress struct {
	updates  []int
	finished int
}

func (p *recordingProgress) Update(percent int) { p.updates = append(p.updates, percent) }
func (p *recordingProgress) Finish()            { p.finished++ }

// makeContent returns n bytes of printable data.
func makeContent(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte('a' + i%26)
	}
	return b
}
