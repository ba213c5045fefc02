// Package http provides a tmod.ByteSource backed by HTTP range requests,
// so containers can be extracted from a web server without downloading
// them first.
package http //nolint:revive // intentional naming for domain clarity

import (
	"context"
	"errors"
	"fmt"
	"io"
	nethttp "net/http"
	"strconv"
	"strings"
)

// ErrRangeUnsupported is returned when the server ignores range requests.
var ErrRangeUnsupported = errors.New("tmod/http: range requests not supported")

// Source implements random access reads via HTTP range requests.
// It satisfies tmod.ByteSource (io.ReaderAt plus Size).
type Source struct {
	url          string
	ctx          context.Context
	client       *nethttp.Client
	headers      nethttp.Header
	conditional  bool
	size         int64
	etag         string
	lastModified string
}

// Option configures a Source.
type Option func(*Source)

// WithClient sets the HTTP client used for requests.
func WithClient(client *nethttp.Client) Option {
	return func(s *Source) {
		s.client = client
	}
}

// WithContext sets the context attached to every request.
// Cancelling it fails all further reads.
func WithContext(ctx context.Context) Option {
	return func(s *Source) {
		s.ctx = ctx
	}
}

// WithHeaders sets additional headers on each request.
func WithHeaders(headers nethttp.Header) Option {
	return func(s *Source) {
		if headers == nil {
			return
		}
		s.headers = headers.Clone()
	}
}

// WithHeader sets a single header on each request.
func WithHeader(key, value string) Option {
	return func(s *Source) {
		if s.headers == nil {
			s.headers = make(nethttp.Header)
		}
		s.headers.Set(key, value)
	}
}

// WithConditionalHeaders sends If-Match or If-Unmodified-Since with every
// range read, so a container replaced on the server mid-extraction is not
// mixed with the old one. A 412 response is retried once without them.
func WithConditionalHeaders() Option {
	return func(s *Source) {
		s.conditional = true
	}
}

// NewSource creates a Source for url.
// It probes the server to learn the content size and confirm range support.
func NewSource(url string, opts ...Option) (*Source, error) {
	s := &Source{
		url:    url,
		ctx:    context.Background(),
		client: nethttp.DefaultClient,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.client == nil {
		s.client = nethttp.DefaultClient
	}
	if err := s.probe(); err != nil {
		return nil, fmt.Errorf("probe %s: %w", url, err)
	}
	return s, nil
}

// Size returns the total size of the remote content.
func (s *Source) Size() int64 {
	return s.size
}

// ReadAt reads len(p) bytes at off with a single range request.
// It implements [io.ReaderAt]: fewer bytes than requested come with io.EOF.
func (s *Source) ReadAt(p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if off < 0 {
		return 0, fmt.Errorf("read at %d: negative offset", off)
	}
	if off >= s.size {
		return 0, io.EOF
	}

	want := min(int64(len(p)), s.size-off)
	end := off + want - 1

	resp, err := s.rangeRequest(off, end, s.conditional)
	if err != nil {
		return 0, err
	}
	if resp.StatusCode == nethttp.StatusPreconditionFailed && s.conditional {
		closeBody(resp)
		if resp, err = s.rangeRequest(off, end, false); err != nil {
			return 0, err
		}
	}
	defer closeBody(resp)

	switch resp.StatusCode {
	case nethttp.StatusPartialContent:
	case nethttp.StatusRequestedRangeNotSatisfiable:
		return 0, io.EOF
	case nethttp.StatusOK:
		return 0, ErrRangeUnsupported
	default:
		return 0, fmt.Errorf("range request bytes=%d-%d failed: %s", off, end, resp.Status)
	}

	n, err := io.ReadFull(resp.Body, p[:want])
	if err != nil {
		return n, err
	}
	if want < int64(len(p)) {
		return n, io.EOF
	}
	return n, nil
}

// probe learns the size from a one-byte range request, cross-checked with
// HEAD when the server answers it.
func (s *Source) probe() error {
	headSize := int64(-1)
	if resp, err := s.do(nethttp.MethodHead, "", false); err == nil {
		headSize = resp.ContentLength
		s.etag = resp.Header.Get("ETag")
		s.lastModified = resp.Header.Get("Last-Modified")
		closeBody(resp)
	}

	resp, err := s.do(nethttp.MethodGet, "bytes=0-0", false)
	if err != nil {
		return err
	}
	defer closeBody(resp)

	switch resp.StatusCode {
	case nethttp.StatusPartialContent:
	case nethttp.StatusOK:
		return ErrRangeUnsupported
	default:
		return fmt.Errorf("range probe failed: %s", resp.Status)
	}

	crange := resp.Header.Get("Content-Range")
	if crange == "" {
		return errors.New("range probe missing Content-Range")
	}
	size, err := parseContentRange(crange)
	if err != nil {
		return err
	}
	if headSize > 0 && headSize != size {
		return fmt.Errorf("content size mismatch: head=%d range=%d", headSize, size)
	}
	s.size = size
	if s.etag == "" {
		s.etag = resp.Header.Get("ETag")
	}
	if s.lastModified == "" {
		s.lastModified = resp.Header.Get("Last-Modified")
	}
	return nil
}

// rangeRequest performs a GET for bytes off through end inclusive.
func (s *Source) rangeRequest(off, end int64, withConditions bool) (*nethttp.Response, error) {
	return s.do(nethttp.MethodGet, fmt.Sprintf("bytes=%d-%d", off, end), withConditions)
}

// do sends a request with the configured headers.
func (s *Source) do(method, byteRange string, withConditions bool) (*nethttp.Response, error) {
	req, err := nethttp.NewRequestWithContext(s.ctx, method, s.url, nethttp.NoBody)
	if err != nil {
		return nil, err
	}
	for key, values := range s.headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	if req.Header.Get("Accept-Encoding") == "" {
		req.Header.Set("Accept-Encoding", "identity")
	}
	if byteRange != "" {
		req.Header.Set("Range", byteRange)
	}
	if withConditions {
		if s.etag != "" && req.Header.Get("If-Match") == "" {
			req.Header.Set("If-Match", s.etag)
		}
		if s.lastModified != "" && req.Header.Get("If-Unmodified-Since") == "" {
			req.Header.Set("If-Unmodified-Since", s.lastModified)
		}
	}
	return s.client.Do(req)
}

// closeBody drains and closes a response body so the connection can be reused.
func closeBody(resp *nethttp.Response) {
	_, _ = io.Copy(io.Discard, resp.Body) //nolint:errcheck // best-effort drain for connection reuse
	_ = resp.Body.Close()
}

// parseContentRange extracts the total size from "bytes start-end/size".
func parseContentRange(value string) (int64, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(value), "bytes ")
	if !ok {
		return 0, fmt.Errorf("invalid Content-Range %q", value)
	}
	_, total, ok := strings.Cut(rest, "/")
	if !ok || total == "*" {
		return 0, fmt.Errorf("invalid Content-Range %q", value)
	}
	size, err := strconv.ParseInt(total, 10, 64)
	if err != nil || size < 0 {
		return 0, fmt.Errorf("invalid Content-Range %q", value)
	}
	return size, nil
}
