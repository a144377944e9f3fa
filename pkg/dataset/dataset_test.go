package dataset

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
)

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(data); err != nil {
		t.Fatalf("Failed to gzip test data: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("Failed to close gzip writer: %v", err)
	}
	return buf.Bytes()
}

func TestEnsure_DownloadsAndDecompresses(t *testing.T) {
	content := []byte("0\t1\n1\t2\n")
	var requests atomic.Int64

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Write(gzipBytes(t, content))
	}))
	defer srv.Close()

	dir := t.TempDir()
	src := Source{
		URL:  srv.URL + "/edges.txt.gz",
		Path: filepath.Join(dir, "edges.txt"),
	}

	if err := Ensure(context.Background(), src); err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}

	got, err := os.ReadFile(src.Path)
	if err != nil {
		t.Fatalf("Decompressed file missing: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("Decompressed content mismatch: %q", got)
	}

	// Compressed artifact must be gone after successful decompression
	if _, err := os.Stat(src.compressedPath()); !os.IsNotExist(err) {
		t.Errorf("Expected compressed artifact removed, stat err = %v", err)
	}

	if requests.Load() != 1 {
		t.Errorf("Expected 1 download request, got %d", requests.Load())
	}
}

func TestEnsure_CachedFileSkipsNetwork(t *testing.T) {
	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))
	defer srv.Close()

	dir := t.TempDir()
	src := Source{
		URL:  srv.URL + "/edges.txt.gz",
		Path: filepath.Join(dir, "edges.txt"),
	}
	if err := os.WriteFile(src.Path, []byte("0\t1\n"), 0o644); err != nil {
		t.Fatalf("Failed to seed cached file: %v", err)
	}

	if err := Ensure(context.Background(), src); err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	if requests.Load() != 0 {
		t.Errorf("Expected no network requests with cached file, got %d", requests.Load())
	}
}

func TestEnsure_LocalCompressedArtifactSkipsDownload(t *testing.T) {
	content := []byte("5\t6\n")
	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))
	defer srv.Close()

	dir := t.TempDir()
	src := Source{
		URL:  srv.URL + "/edges.txt.gz",
		Path: filepath.Join(dir, "edges.txt"),
	}
	if err := os.WriteFile(src.compressedPath(), gzipBytes(t, content), 0o644); err != nil {
		t.Fatalf("Failed to seed compressed artifact: %v", err)
	}

	if err := Ensure(context.Background(), src); err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	if requests.Load() != 0 {
		t.Errorf("Expected no network requests with local artifact, got %d", requests.Load())
	}

	got, err := os.ReadFile(src.Path)
	if err != nil || !bytes.Equal(got, content) {
		t.Errorf("Decompressed content mismatch: %q, err=%v", got, err)
	}
}

func TestEnsure_UncompressedURL(t *testing.T) {
	content := []byte("7\t8\n")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(content)
	}))
	defer srv.Close()

	dir := t.TempDir()
	src := Source{
		URL:  srv.URL + "/edges.txt",
		Path: filepath.Join(dir, "edges.txt"),
	}
	if err := Ensure(context.Background(), src); err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	got, _ := os.ReadFile(src.Path)
	if !bytes.Equal(got, content) {
		t.Errorf("Content mismatch: %q", got)
	}
}

func TestEnsure_HTTPErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	src := Source{
		URL:  srv.URL + "/missing.txt.gz",
		Path: filepath.Join(t.TempDir(), "edges.txt"),
	}
	if err := Ensure(context.Background(), src); err == nil {
		t.Error("Expected error for 404 response")
	}
}

func TestEnsure_UnsupportedScheme(t *testing.T) {
	src := Source{
		URL:  "ftp://example.com/edges.txt",
		Path: filepath.Join(t.TempDir(), "edges.txt"),
	}
	if err := Ensure(context.Background(), src); !errors.Is(err, ErrUnsupportedScheme) {
		t.Errorf("Expected ErrUnsupportedScheme, got %v", err)
	}
}

func TestSplitS3URL(t *testing.T) {
	bucket, key, err := splitS3URL("s3://datasets/graphs/soc-LiveJournal1.txt.gz")
	if err != nil {
		t.Fatalf("splitS3URL failed: %v", err)
	}
	if bucket != "datasets" || key != "graphs/soc-LiveJournal1.txt.gz" {
		t.Errorf("Got bucket=%q key=%q", bucket, key)
	}

	if _, _, err := splitS3URL("s3://bucket-only"); err == nil {
		t.Error("Expected error for missing key")
	}
}
