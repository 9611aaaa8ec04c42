package middleware

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strings"
	"sync"
)

// minGzipBytes is the smallest body worth compressing; single-entity JSON is usually below it.
const minGzipBytes = 1024

// Compression gzips GET responses of at least minGzipBytes for clients that accept it
func Compression(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}

		buf := &bufferedResponse{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(buf, r)

		w.Header().Add("Vary", "Accept-Encoding")
		if buf.body.Len() < minGzipBytes || buf.statusCode == http.StatusNoContent {
			buf.flush(w)
			return
		}

		gz := gzipWriterPool.Get().(*gzip.Writer)
		defer gzipWriterPool.Put(gz)
		gz.Reset(w)

		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Del("Content-Length")
		w.WriteHeader(buf.statusCode)
		_, _ = gz.Write(buf.body.Bytes())
		_ = gz.Close()
	})
}

var gzipWriterPool = sync.Pool{
	New: func() interface{} {
		gz, _ := gzip.NewWriterLevel(io.Discard, 5)
		return gz
	},
}

// ETag answers conditional GET requests with 304 when the body is unchanged
func ETag(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}

		buf := &bufferedResponse{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(buf, r)

		if buf.statusCode == http.StatusOK {
			sum := sha256.Sum256(buf.body.Bytes())
			etag := `"` + hex.EncodeToString(sum[:16]) + `"`
			w.Header().Set("ETag", etag)
			if etagMatches(r.Header.Get("If-None-Match"), etag) {
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
		buf.flush(w)
	})
}

// etagMatches handles the list and wildcard forms of If-None-Match, ignoring weak prefixes.
func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == "*" || candidate == etag {
			return true
		}
	}
	return false
}

// bufferedResponse holds status and body until the wrapping middleware decides how to send them
type bufferedResponse struct {
	http.ResponseWriter
	body       bytes.Buffer
	statusCode int
}

func (b *bufferedResponse) Write(p []byte) (int, error) {
	return b.body.Write(p)
}

func (b *bufferedResponse) WriteHeader(statusCode int) {
	b.statusCode = statusCode
}

func (b *bufferedResponse) flush(w http.ResponseWriter) {
	w.WriteHeader(b.statusCode)
	_, _ = w.Write(b.body.Bytes())
}

// CacheControl sets browser caching per endpoint family under apiPrefix. Authentication
// responses and every write are never stored; amenities change rarely, the rest briefly.
func CacheControl(apiPrefix string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			switch {
			case r.Method != http.MethodGet, strings.HasPrefix(path, apiPrefix+"/auth"):
				w.Header().Set("Cache-Control", "no-store")
			case strings.HasPrefix(path, apiPrefix+"/amenities"):
				w.Header().Set("Cache-Control", "public, max-age=300, must-revalidate")
			case strings.HasPrefix(path, apiPrefix+"/"):
				w.Header().Set("Cache-Control", "public, max-age=30, must-revalidate")
			default:
				w.Header().Set("Cache-Control", "no-cache")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ResponseOptimization combines cache headers, ETags and compression
func ResponseOptimization(apiPrefix string) func(http.Handler) http.Handler {
	cacheControl := CacheControl(apiPrefix)
	return func(next http.Handler) http.Handler {
		return cacheControl(ETag(Compression(next)))
	}
}
