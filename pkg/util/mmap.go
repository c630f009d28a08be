package util

import (
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/edsrzf/mmap-go"
)

// ReaderStats counts how stylesheet reads were served.
type ReaderStats struct {
	FilesRead    int64
	BytesRead    int64
	MmapFailures int64
}

// MappedReader reads whole files through a read-only memory mapping and
// copies the bytes into a string, so the mapping never outlives the call.
// Stylesheets change on disk while the watcher is running, and a retained
// mapping of a truncated file faults on access.
//
// When mmap fails (special files, some network filesystems) it falls back
// to os.ReadFile.
//
// MappedReader is safe for concurrent use.
type MappedReader struct {
	logger *slog.Logger

	filesRead    atomic.Int64
	bytesRead    atomic.Int64
	mmapFailures atomic.Int64
}

// NewMappedReader creates a reader. A nil logger uses slog.Default().
func NewMappedReader(logger *slog.Logger) *MappedReader {
	if logger == nil {
		logger = slog.Default()
	}
	return &MappedReader{logger: logger}
}

// ReadString returns the full content of path.
func (r *MappedReader) ReadString(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file %q: %w", path, err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat file %q: %w", path, err)
	}
	if stat.IsDir() {
		return "", fmt.Errorf("%q is a directory", path)
	}

	r.filesRead.Add(1)

	// Zero-length files cannot be mapped.
	if stat.Size() == 0 {
		return "", nil
	}

	data, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		r.mmapFailures.Add(1)
		r.logger.Warn("mmap failed, using fallback",
			"file", path,
			"size", stat.Size(),
			"error", err)

		content, readErr := os.ReadFile(path)
		if readErr != nil {
			return "", fmt.Errorf("mmap failed and fallback failed for %q: mmap error: %v, read error: %w",
				path, err, readErr)
		}
		r.bytesRead.Add(int64(len(content)))
		return string(content), nil
	}

	content := string(data)
	if err := data.Unmap(); err != nil {
		r.logger.Warn("failed to unmap file", "file", path, "error", err)
	}

	r.bytesRead.Add(int64(len(content)))
	return content, nil
}

// Stats returns a snapshot of the read counters.
func (r *MappedReader) Stats() ReaderStats {
	return ReaderStats{
		FilesRead:    r.filesRead.Load(),
		BytesRead:    r.bytesRead.Load(),
		MmapFailures: r.mmapFailures.Load(),
	}
}
