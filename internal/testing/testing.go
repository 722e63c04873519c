// package testing contains shared testing utilities
package testing

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
)

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

// RecordedRequest is a request seen by [RecordingTransport] with its body already drained.
type RecordedRequest struct {
	*http.Request
	Body string
}

// RecordingTransport is an [http.RoundTripper] that records every request and answers with a canned response.
//
// A zero Status answers 200. When Err is set the round trip fails with it. When BodyReader is set it is
// used as the response body instead of Body.
type RecordingTransport struct {
	Status     int
	Body       string
	BodyReader io.ReadCloser
	Err        error
	Requests   []RecordedRequest
}

// NewRecordingTransport answers every request with status and body.
func NewRecordingTransport(status int, body string) *RecordingTransport {
	return &RecordingTransport{Status: status, Body: body}
}

func (rt *RecordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var body string
	if req.Body != nil {
		data, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		req.Body.Close()
		body = string(data)
	}
	rt.Requests = append(rt.Requests, RecordedRequest{Request: req, Body: body})

	if rt.Err != nil {
		return nil, rt.Err
	}

	status := rt.Status
	if status == 0 {
		status = http.StatusOK
	}

	respBody := rt.BodyReader
	if respBody == nil {
		respBody = io.NopCloser(strings.NewReader(rt.Body))
	}

	return &http.Response{
		StatusCode: status,
		Status:     fmt.Sprintf("%d %s", status, http.StatusText(status)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       respBody,
		Request:    req,
	}, nil
}

// Last returns the most recent recorded request, failing the test when there is none.
func (rt *RecordingTransport) Last(t *testing.T) RecordedRequest {
	t.Helper()
	if len(rt.Requests) == 0 {
		t.Fatal("expected at least one recorded request")
	}
	return rt.Requests[len(rt.Requests)-1]
}

// Client returns an [http.Client] that sends through rt.
func (rt *RecordingTransport) Client() *http.Client {
	return &http.Client{Transport: rt}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
