package writer

import (
	"archive/zip"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ghgrab/cli/logger"
	"github.com/ghgrab/cli/resolver"
	"github.com/ghgrab/cli/retriever"
)

// WriteToArchive downloads every descriptor in order and streams each into a
// zip archive at archivePath, entry names following the same relative-path
// rule as directory writes.
//
// A failed download is recorded in the summary and simply left out of the
// archive; the archive itself is finalized once, after every descriptor has
// been attempted. The returned error covers only creating or finalizing the
// archive file.
func WriteToArchive(ctx context.Context, dl Downloader, descs []retriever.FileDescriptor, a resolver.Address, archivePath string, p Progress) (Summary, error) {
	var summary Summary

	if err := os.MkdirAll(filepath.Dir(archivePath), 0755); err != nil {
		return summary, fmt.Errorf("creating directory for %s: %w", archivePath, err)
	}
	f, err := os.Create(archivePath)
	if err != nil {
		return summary, fmt.Errorf("creating archive %s: %w", archivePath, err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	total := len(descs)

	for _, desc := range descs {
		rel := RelativePath(a, desc.Path)
		outcome := fetchIntoArchive(ctx, dl, zw, desc, rel)
		summary.record(outcome)
		if p != nil {
			p(summary.Attempted, total, outcome, summary.TotalBytes)
		}
	}

	if err := zw.Close(); err != nil {
		return summary, fmt.Errorf("finalizing archive %s: %w", archivePath, err)
	}
	logger.Debug("archive written", "path", archivePath, "entries", summary.Succeeded)
	return summary, nil
}

func fetchIntoArchive(ctx context.Context, dl Downloader, zw *zip.Writer, desc retriever.FileDescriptor, rel string) Outcome {
	data, err := dl.DownloadBytes(ctx, desc.DownloadURL)
	if err != nil {
		logger.Debug("download failed", "path", desc.Path, "error", err)
		return Outcome{RelPath: rel, Err: err}
	}

	w, err := zw.Create(rel)
	if err != nil {
		return Outcome{RelPath: rel, Err: fmt.Errorf("adding %s to archive: %w", rel, err)}
	}
	if _, err := w.Write(data); err != nil {
		return Outcome{RelPath: rel, Err: fmt.Errorf("writing %s to archive: %w", rel, err)}
	}

	return Outcome{RelPath: rel, Bytes: int64(len(data))}
}
