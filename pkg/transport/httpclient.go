package transport

import (
	"compress/flate"
	"compress/gzip"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/richard-senior/refstats/internal/logger"
)

// CABundleEnv names an optional PEM bundle appended to the system roots,
// for corporate proxies that re-sign TLS
const CABundleEnv = "REFSTATS_CA_BUNDLE"

var (
	httpClient *http.Client
	clientMu   sync.Mutex
)

func getCABundle() ([]byte, error) {
	bundlePath := os.Getenv(CABundleEnv)
	if bundlePath == "" {
		return nil, nil
	}
	caCert, err := os.ReadFile(bundlePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA bundle %s: %w", bundlePath, err)
	}
	return caCert, nil
}

// GetCustomHTTPClient returns the shared HTTP client with the custom TLS configuration
func GetCustomHTTPClient() *http.Client {
	clientMu.Lock()
	defer clientMu.Unlock()
	if httpClient != nil {
		return httpClient
	}
	rootCAs, err := x509.SystemCertPool()
	if err != nil {
		logger.Warn("Failed to get system cert pool", err)
		rootCAs = x509.NewCertPool()
	}

	bundle, err := getCABundle()
	if err != nil {
		logger.Warn("Proceeding without extra CA bundle", err)
	} else if bundle != nil {
		if ok := rootCAs.AppendCertsFromPEM(bundle); !ok {
			logger.Warn("Failed to append CA bundle")
		} else {
			logger.Info("Added CA bundle to root CAs")
		}
	}

	httpClient = &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{RootCAs: rootCAs},
			Proxy:           http.ProxyFromEnvironment,
		},
		Timeout: 30 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("stopped after 10 redirects")
			}
			return nil
		},
	}
	return httpClient
}

// GetBytes fetches url and returns the decoded body.
// gzip, deflate and brotli content encodings are handled.
func GetBytes(url string) ([]byte, error) {
	return GetBytesWith(GetCustomHTTPClient(), url)
}

// GetBytesWith is GetBytes with an explicit client
func GetBytesWith(client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/csv,text/html,application/xhtml+xml,*/*;q=0.8")
	// setting this ourselves disables the transport's transparent gzip
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	req.Header.Set("Accept-Language", "en-GB,en;q=0.9")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request to %s returned error status %d", url, resp.StatusCode)
	}

	reader, err := NewDecodingReader(resp.Header.Get("Content-Encoding"), resp.Body)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}
	logger.Debug("Fetched", url, len(data))
	return data, nil
}

// NewDecodingReader wraps r according to a Content-Encoding header value
func NewDecodingReader(contentEncoding string, r io.ReadCloser) (io.ReadCloser, error) {
	switch contentEncoding {
	case "gzip":
		gz, err := NewGzipReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return gz, nil
	case "deflate":
		return NewDeflateReader(r)
	case "br":
		return NewBrotliReader(r)
	case "", "identity":
		return io.NopCloser(r), nil
	default:
		logger.Warn("Unknown content encoding:", contentEncoding)
		return io.NopCloser(r), nil
	}
}

// NewGzipReader creates a gzip reader from the provided io.ReadCloser
func NewGzipReader(r io.ReadCloser) (io.ReadCloser, error) {
	return gzip.NewReader(r)
}

// NewDeflateReader creates a deflate reader from the provided io.ReadCloser
func NewDeflateReader(r io.ReadCloser) (io.ReadCloser, error) {
	return flate.NewReader(r), nil
}

// NewBrotliReader creates a brotli reader from the provided io.ReadCloser
func NewBrotliReader(r io.ReadCloser) (io.ReadCloser, error) {
	return io.NopCloser(brotli.NewReader(r)), nil
}
