package yahoo

import (
	"bufio"
	"bytes"
	"crypto/sha1"
	"fmt"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"

	"github.com/etnz/tracker/date"
	"go.uber.org/zap"
)

// diskCache is an http.RoundTripper caching successful responses on disk.
// Keys include the current day, so cached responses expire every day.
type diskCache struct {
	base  http.RoundTripper
	dir   string
	today func() date.Date
}

// Daily returns a client whose successful responses are cached in dir for the
// rest of the day. An empty dir uses a folder in os.TempDir().
func Daily(dir string) *http.Client {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "ptrack-http")
	}
	return &http.Client{Transport: &diskCache{base: http.DefaultTransport, dir: dir, today: date.Today}}
}

func (c *diskCache) key(req *http.Request) string {
	key := fmt.Sprintf("%s %s %s", c.today(), req.Method, req.URL.String())
	return fmt.Sprintf("%x", sha1.Sum([]byte(key)))
}

func (c *diskCache) RoundTrip(req *http.Request) (*http.Response, error) {
	key := c.key(req)
	if cached, err := c.get(key, req); err == nil {
		logger.Debug("http cache hit", zap.String("url", req.URL.Redacted()))
		return cached, nil
	}

	resp, err := c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	logger.Debug("http request",
		zap.String("method", req.Method),
		zap.String("host", req.URL.Host),
		zap.String("path", req.URL.Path),
		zap.String("status", resp.Status),
	)
	if resp.StatusCode >= 300 {
		return resp, nil
	}
	if err := c.put(key, resp); err != nil {
		logger.Warn("http cache write failed (ignored)", zap.Error(err))
	}
	return resp, nil
}

// get retrieves a cached response from disk.
func (c *diskCache) get(key string, req *http.Request) (*http.Response, error) {
	content, err := os.ReadFile(filepath.Join(c.dir, key))
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewReader(content)), req)
}

// put stores a response on disk. The response body remains readable.
func (c *diskCache) put(key string, resp *http.Response) error {
	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.dir, key), content, 0o644)
}
