package audio

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"codeberg.org/snonux/forvodl/internal/forvo"
)

// Source opens the audio behind a URL
type Source interface {
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}

// DownloadOptions configures where pronunciations are written
type DownloadOptions struct {
	OutputDir string // Directory to save clips in
}

// DefaultDownloadOptions saves into the current working directory
func DefaultDownloadOptions() *DownloadOptions {
	return &DownloadOptions{
		OutputDir: ".",
	}
}

// FileSystemError is returned when the clip cannot be written locally
type FileSystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileSystemError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileSystemError) Unwrap() error {
	return e.Err
}

// Downloader streams pronunciations to local files
type Downloader struct {
	source  Source
	options *DownloadOptions
	log     logrus.FieldLogger
}

// NewDownloader creates a new pronunciation downloader
func NewDownloader(source Source, options *DownloadOptions, log logrus.FieldLogger) *Downloader {
	if options == nil {
		options = DefaultDownloadOptions()
	}
	return &Downloader{
		source:  source,
		options: options,
		log:     log,
	}
}

// FileName is the name a result is saved under. The original word text is
// used as is.
func FileName(result forvo.SearchResult) string {
	return result.Original + ".mp3"
}

// Save writes the result's audio to <OutputDir>/<original>.mp3, replacing
// an existing file, and returns the file name relative to OutputDir
func (d *Downloader) Save(ctx context.Context, result forvo.SearchResult) (string, error) {
	if result.Pronunciation == nil || result.Pronunciation.AudioURL == "" {
		return "", fmt.Errorf("no audio URL for %q", result.Original)
	}

	filename := FileName(result)
	outputPath := filepath.Join(d.options.OutputDir, filename)

	reader, err := d.source.Download(ctx, result.Pronunciation.AudioURL)
	if err != nil {
		return "", fmt.Errorf("failed to download pronunciation: %w", err)
	}
	defer reader.Close()

	file, err := os.Create(outputPath)
	if err != nil {
		return "", &FileSystemError{Op: "create", Path: outputPath, Err: err}
	}

	src := &trackingReader{r: reader}
	written, err := io.Copy(file, src)
	if err != nil {
		file.Close()
		os.Remove(outputPath) // Clean up on error
		if src.err != nil {
			return "", &forvo.NetworkError{Op: "download", Err: src.err}
		}
		return "", &FileSystemError{Op: "write", Path: outputPath, Err: err}
	}

	if err := file.Close(); err != nil {
		return "", &FileSystemError{Op: "close", Path: outputPath, Err: err}
	}

	d.log.WithFields(logrus.Fields{
		"file": outputPath,
		"size": humanize.Bytes(uint64(written)),
	}).Debug("Saved pronunciation")

	return filename, nil
}

// trackingReader remembers read errors so they can be told apart from
// write errors after io.Copy
type trackingReader struct {
	r   io.Reader
	err error
}

func (t *trackingReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err != nil && err != io.EOF {
		t.err = err
	}
	return n, err
}
