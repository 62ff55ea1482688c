package gen

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Writer writes finalized artifacts to disk. Writes are synchronous and
// overwrite existing files.
type Writer struct {
	logger  *slog.Logger
	written map[*Artifact]struct{}
	metrics WriterMetrics
}

// WriterMetrics tracks write performance.
type WriterMetrics struct {
	FilesWritten int
	TotalBytes   int64
	WriteTime    int64 // nanoseconds
}

// NewWriter creates a writer logging to the given logger.
func NewWriter(logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{
		logger:  logger,
		written: make(map[*Artifact]struct{}),
	}
}

// Metrics returns the write metrics.
func (w *Writer) Metrics() WriterMetrics {
	return w.metrics
}

// Write writes a ready artifact to its path. Each artifact is written at
// most once per writer.
func (w *Writer) Write(a *Artifact) error {
	switch {
	case !a.Ready():
		return NewGenerationError("write", a.Path, fmt.Sprintf("artifact %s is not finalized", a.Key), nil)
	case a.Path == "":
		return NewGenerationError("write", "", fmt.Sprintf("artifact %s has no path", a.Key), nil)
	}
	if _, ok := w.written[a]; ok {
		return NewGenerationError("write", a.Path, fmt.Sprintf("artifact %s already written", a.Key), nil)
	}
	start := time.Now()
	if err := os.MkdirAll(filepath.Dir(a.Path), 0o755); err != nil {
		return NewGenerationError("write", a.Path, "create directory", err)
	}
	if err := os.WriteFile(a.Path, a.Content, 0o644); err != nil {
		return NewGenerationError("write", a.Path, "write file", err)
	}
	w.written[a] = struct{}{}

	w.metrics.FilesWritten++
	w.metrics.TotalBytes += int64(len(a.Content))
	w.metrics.WriteTime += time.Since(start).Nanoseconds()
	w.logger.Info("artifact written", "role", a.Role().String(), "target", a.Key.Target, "path", a.Path, "bytes", len(a.Content))
	return nil
}
