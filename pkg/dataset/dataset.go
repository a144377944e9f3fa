package dataset

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dd0wney/cluso-centrality/pkg/logging"
)

var (
	// ErrUnsupportedScheme indicates a dataset URL that is neither https nor s3
	ErrUnsupportedScheme = errors.New("unsupported dataset URL scheme")

	// ErrBadEdgeLine indicates an edge-list line that does not parse as two integers
	ErrBadEdgeLine = errors.New("malformed edge list line")
)

// Source describes where a dataset comes from and where it lives locally.
type Source struct {
	// URL is the fixed remote location, https:// or s3://bucket/key.
	// A ".gz" suffix marks the artifact as gzip-compressed.
	URL string

	// Path is the local decompressed edge-list file.
	Path string
}

// compressedPath is where the downloaded artifact is staged before decompression
func (s Source) compressedPath() string {
	return s.Path + ".gz"
}

func (s Source) compressed() bool {
	return strings.HasSuffix(s.URL, ".gz")
}

// Ensure makes sure the decompressed edge list exists at s.Path, doing as
// little work as possible: a present file short-cuts everything, a present
// compressed artifact skips the download, otherwise the artifact is fetched
// from s.URL. Decompression removes the compressed artifact on success so
// subsequent runs take the first short-cut.
func Ensure(ctx context.Context, s Source) error {
	log := logging.DefaultLogger().With(logging.Component("dataset"))

	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return fmt.Errorf("creating dataset directory: %w", err)
	}

	if _, err := os.Stat(s.Path); err == nil {
		log.Debug("dataset already present", logging.String("path", s.Path))
		return nil
	}

	if !s.compressed() {
		log.Info("downloading dataset", logging.String("url", s.URL))
		return fetch(ctx, s.URL, s.Path)
	}

	gzPath := s.compressedPath()
	if _, err := os.Stat(gzPath); err != nil {
		log.Info("downloading dataset", logging.String("url", s.URL))
		if err := fetch(ctx, s.URL, gzPath); err != nil {
			return err
		}
	}

	log.Info("decompressing dataset", logging.String("path", gzPath))
	if err := decompress(gzPath, s.Path); err != nil {
		return err
	}
	return os.Remove(gzPath)
}

// fetch routes to the http or s3 downloader by scheme
func fetch(ctx context.Context, url, dest string) error {
	switch {
	case strings.HasPrefix(url, "http://"), strings.HasPrefix(url, "https://"):
		return fetchHTTP(ctx, url, dest)
	case strings.HasPrefix(url, "s3://"):
		return fetchS3(ctx, url, dest)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedScheme, url)
	}
}

// decompress gunzips src into dest, writing through a temp file so a partial
// decompress never masquerades as a complete dataset.
func decompress(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening compressed dataset: %w", err)
	}
	defer in.Close()

	gz, err := gzip.NewReader(in)
	if err != nil {
		return fmt.Errorf("reading gzip header: %w", err)
	}
	defer gz.Close()

	return writeAtomically(dest, gz)
}

// writeAtomically streams r into dest via a temp file in the same directory
func writeAtomically(dest string, r io.Reader) error {
	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("writing dataset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing dataset file: %w", err)
	}
	return os.Rename(tmp.Name(), dest)
}
