package coingecko

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/cryptofolio/metrics"
)

// diskCache implements a simple disk cache for HTTP responses
type diskCache struct {
	base http.RoundTripper
	ttl  time.Duration
	dir  string // os.TempDir() when empty
	now  func() time.Time
}

// RoundTrip implements the http.RoundTripper interface. It checks for a cached
// response on disk first. If a fresh cached response is not found, it proceeds
// with the actual HTTP request and caches the new response if it's successful.
func (c *diskCache) RoundTrip(req *http.Request) (resp *http.Response, err error) {
	// the key embeds the current ttl bucket, so entries expire when the
	// bucket changes.
	now := time.Now
	if c.now != nil {
		now = c.now
	}
	bucket := now().UnixNano() / int64(c.ttl)
	key := fmt.Sprintf("%d %s %s %s", bucket, req.Method, req.URL.String(), req.Header.Get(demoKeyHeader)+req.Header.Get(proKeyHeader))
	key = fmt.Sprintf("coingecko-%x", sha1.Sum([]byte(key)))

	cachedResp, err := c.get(key, req)
	if err == nil { // Cache hit
		return cachedResp, nil
	}

	resp, err = c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	log.Printf("%v %v%v %v", resp.Request.Method, resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	if resp.StatusCode >= 300 {
		return resp, nil
	}
	// otherwise attempt to store it in cache

	err = c.put(key, resp)
	if err != nil {
		log.Printf("cache write err (ignored): %v\n", err)
	}
	return resp, nil
}

func (c *diskCache) file(key string) string {
	dir := c.dir
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, key)
}

// get retrieves a cached response from disk
func (c *diskCache) get(key string, req *http.Request) (resp *http.Response, err error) {
	content, err := os.ReadFile(c.file(key))
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewBuffer(content)), req)
}

// put stores a response to disk cache
func (c *diskCache) put(key string, resp *http.Response) (err error) {
	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}

	f, err := os.Create(c.file(key))
	if err != nil {
		return err
	}

	_, err = f.Write(content)
	f.Close()
	return err
}

// newCachingClient returns an http.Client whose responses are kept on disk
// for ttl. A ttl <= 0 disables the cache.
func newCachingClient(ttl time.Duration, dir string) *http.Client {
	client := new(http.Client)
	if ttl <= 0 {
		return client
	}
	client.Transport = &diskCache{base: http.DefaultTransport, ttl: ttl, dir: dir}
	return client
}

// jwget performs an HTTP GET request to the given address and unmarshals the
// JSON response body into the provided data structure. endpoint labels the
// request in metrics.
func jwget(ctx context.Context, client *http.Client, endpoint string, req *http.Request, data interface{}) error {
	start := time.Now()
	resp, err := client.Do(req.WithContext(ctx))
	if err != nil {
		metrics.RecordProviderRequest(endpoint, 0, time.Since(start).Seconds())
		return err
	}
	defer resp.Body.Close()
	metrics.RecordProviderRequest(endpoint, resp.StatusCode, time.Since(start).Seconds())

	var buf bytes.Buffer
	_, err = io.Copy(&buf, resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != 200 {
		if msg := errorMessage(buf.Bytes()); msg != "" {
			return fmt.Errorf("cannot http GET %v%v: %v: %s", req.URL.Host, req.URL.Path, resp.Status, msg)
		}
		return fmt.Errorf("cannot http GET %v%v: %v", req.URL.Host, req.URL.Path, resp.Status)
	}
	return json.Unmarshal(buf.Bytes(), data)
}

// errorPaths are the places the provider puts its error message, depending
// on the endpoint and plan.
var errorPaths = []string{"$.status.error_message", "$.error"}

// errorMessage extracts the provider's message from an error body, or ""
func errorMessage(body []byte) string {
	var jobj interface{}
	if err := json.Unmarshal(body, &jobj); err != nil {
		return ""
	}
	for _, path := range errorPaths {
		jval, err := jsonpath.Get(path, jobj)
		if err != nil {
			continue
		}
		// "error" is sometimes an object holding the status.
		switch v := jval.(type) {
		case string:
			if v != "" {
				return v
			}
		case map[string]interface{}:
			if msg, ok := v["error_message"].(string); ok && msg != "" {
				return msg
			}
		}
	}
	return ""
}
