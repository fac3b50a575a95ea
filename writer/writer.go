package writer

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/ghgrab/cli/logger"
	"github.com/ghgrab/cli/resolver"
	"github.com/ghgrab/cli/retriever"
)

// maxListedFailures caps how many failure descriptions a Summary carries;
// anything beyond it is only counted.
const maxListedFailures = 5

// Downloader fetches one file's raw bytes. *retriever.Client satisfies it.
type Downloader interface {
	DownloadBytes(ctx context.Context, url string) ([]byte, error)
}

// Outcome is the result of one materialization attempt. Err non-nil marks
// the attempt as failed; Bytes is 0 in that case.
type Outcome struct {
	RelPath string
	Bytes   int64
	Err     error
}

// Progress observes each attempt as it completes. done counts attempts so
// far, totalBytes is the cumulative byte count across successful files.
type Progress func(done, total int, o Outcome, totalBytes int64)

// Summary aggregates a whole materialization batch
type Summary struct {
	Attempted  int
	Succeeded  int
	Failed     int
	TotalBytes int64
	Failures   []string // first maxListedFailures descriptions only
}

func (s *Summary) record(o Outcome) {
	s.Attempted++
	if o.Err != nil {
		s.Failed++
		if len(s.Failures) < maxListedFailures {
			s.Failures = append(s.Failures, fmt.Sprintf("%s: %v", o.RelPath, o.Err))
		}
		return
	}
	s.Succeeded++
	s.TotalBytes += o.Bytes
}

// RelativePath derives the output path for a descriptor's repository path.
//
// A folder download strips the folder prefix so the output mirrors the
// subtree, not the whole repository. A single-file download keeps only the
// basename and never recreates directory structure. Everything else keeps
// the repository path as-is.
func RelativePath(a resolver.Address, fullPath string) string {
	switch {
	case a.Kind == resolver.KindTree && a.Path != "":
		if rest, ok := strings.CutPrefix(fullPath, a.Path+"/"); ok {
			return rest
		}
		return fullPath
	case a.Kind == resolver.KindBlob && a.Path != "":
		return path.Base(fullPath)
	default:
		return fullPath
	}
}

// WriteToDirectory downloads every descriptor in order and writes each under
// outDir at its relative path. exactFile, when non-empty, is an explicit
// output file path for a single-file download and is used verbatim for the
// first (only) descriptor.
//
// Individual download or filesystem failures are recorded and the batch
// keeps going; the summary reports both sides.
func WriteToDirectory(ctx context.Context, dl Downloader, descs []retriever.FileDescriptor, a resolver.Address, outDir string, exactFile string, p Progress) Summary {
	var summary Summary
	total := len(descs)

	for _, desc := range descs {
		rel := RelativePath(a, desc.Path)
		dest := filepath.Join(outDir, filepath.FromSlash(rel))
		if exactFile != "" {
			dest = exactFile
		}

		outcome := fetchAndWrite(ctx, dl, desc, rel, dest)
		summary.record(outcome)
		if p != nil {
			p(summary.Attempted, total, outcome, summary.TotalBytes)
		}
	}
	return summary
}

func fetchAndWrite(ctx context.Context, dl Downloader, desc retriever.FileDescriptor, rel, dest string) Outcome {
	data, err := dl.DownloadBytes(ctx, desc.DownloadURL)
	if err != nil {
		logger.Debug("download failed", "path", desc.Path, "error", err)
		return Outcome{RelPath: rel, Err: err}
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return Outcome{RelPath: rel, Err: fmt.Errorf("creating directory for %s: %w", dest, err)}
	}
	if err := os.WriteFile(dest, data, 0644); err != nil {
		return Outcome{RelPath: rel, Err: fmt.Errorf("writing %s: %w", dest, err)}
	}

	return Outcome{RelPath: rel, Bytes: int64(len(data))}
}
