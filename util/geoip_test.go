package util

import (
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
)

func resetGeoIP() {
	CloseGeoIP()
	geoipCache = nil
}

func TestInitGeoIP_EmptyPathIsNoop(t *testing.T) {
	t.Setenv("GEOIP_DB_PATH", "")
	assert.NoError(t, InitGeoIP(""))
}

func TestInitGeoIP_NonExistentFile(t *testing.T) {
	assert.Error(t, InitGeoIP("/nonexistent/path/to/geoip.mmdb"))
}

func TestGetIPLocation_LocalAndInvalid(t *testing.T) {
	resetGeoIP()
	for _, ip := range []string{"", "not-an-ip", "127.0.0.1", "::1", "10.1.2.3", "192.168.0.7", "172.16.4.4", "::"} {
		assert.Equal(t, IPLocation{}, GetIPLocation(ip), ip)
	}
}

func TestGetIPLocation_NoDB(t *testing.T) {
	resetGeoIP()
	assert.Equal(t, IPLocation{}, GetIPLocation("8.8.8.8"))
	_, _, size := GetGeoIPCacheMetrics()
	assert.Equal(t, 0, size)
}

func TestGetIPLocation_CacheHit(t *testing.T) {
	resetGeoIP()
	geoipCache = cache.New(time.Hour, time.Hour)
	defer resetGeoIP()

	geoipCache.Set("8.8.4.4", IPLocation{City: "Mountain View", Country: "United States"}, 0)
	hitsBefore, _, _ := GetGeoIPCacheMetrics()

	loc := GetIPLocation("8.8.4.4")
	assert.Equal(t, "Mountain View/United States", loc.String())
	hitsAfter, _, _ := GetGeoIPCacheMetrics()
	assert.Equal(t, hitsBefore+1, hitsAfter)
}

func TestIPLocationString(t *testing.T) {
	assert.Equal(t, "India", IPLocation{Country: "India"}.String())
	assert.Equal(t, "Pune", IPLocation{City: "Pune"}.String())
	assert.Equal(t, "", IPLocation{}.String())
}

func TestDownloadGeoIP_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "geoip.mmdb")
	_, err := DownloadGeoIPWithRequest(context.Background(), DownloadRequest{URL: server.URL, DestPath: dest})
	assert.Error(t, err)
	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr))
}

func TestDownloadGeoIP_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("mock geoip database content"))
	}))
	defer server.Close()

	dir := t.TempDir()
	dest := filepath.Join(dir, "nested", "geoip.mmdb")
	got, err := DownloadGeoIPWithRequest(context.Background(), DownloadRequest{URL: server.URL, DestPath: dest})
	assert.NoError(t, err)
	assert.Equal(t, dest, got)

	data, err := os.ReadFile(dest)
	assert.NoError(t, err)
	assert.Equal(t, "mock geoip database content", string(data))

	leftovers, _ := filepath.Glob(filepath.Join(dir, "nested", "geoip-*.tmp"))
	assert.Empty(t, leftovers)
}

func TestDownloadGeoIP_Gzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, _ = zw.Write([]byte("compressed db"))
	_ = zw.Close()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(buf.Bytes())
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "geoip.mmdb")
	_, err := DownloadGeoIPWithRequest(context.Background(), DownloadRequest{URL: server.URL + "/db.mmdb.gz", DestPath: dest})
	assert.NoError(t, err)
	data, _ := os.ReadFile(dest)
	assert.Equal(t, "compressed db", string(data))
}

func TestDownloadGeoIP_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := DownloadGeoIPWithRequest(ctx, DownloadRequest{URL: server.URL, DestPath: filepath.Join(t.TempDir(), "geoip.mmdb")})
	assert.Error(t, err)
}

func TestEnsureGeoIP_DownloadsMissingFile(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte("not a real mmdb"))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "geoip.mmdb")
	err := EnsureGeoIP(context.Background(), dest, server.URL)
	// the downloaded bytes are not a valid database, so opening fails after the fetch
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.FileExists(t, dest)
}

func TestEnsureGeoIP_EmptyPath(t *testing.T) {
	assert.NoError(t, EnsureGeoIP(context.Background(), "", "http://unused.invalid"))
}
