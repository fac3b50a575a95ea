package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ghgrab/cli/logger"
	"github.com/ghgrab/cli/resolver"
	"github.com/ghgrab/cli/retriever"
	"github.com/ghgrab/cli/ui"
	"github.com/ghgrab/cli/writer"
)

// Version information set by goreleaser
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	outputPath  string
	archivePath string
	tokenFlag   string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "ghgrab <github-url>",
	Short: "Download a GitHub repository, folder, or single file",
	Long: `ghgrab resolves a GitHub web URL to the files behind it and downloads
them one by one, either into a local directory or into a zip archive.

Accepted URL shapes:
  https://github.com/owner/repo              whole repository (default branch)
  https://github.com/owner/repo/tree/ref/dir one folder at a branch, tag, or commit
  https://github.com/owner/repo/blob/ref/f   a single file`,
	Args:         cobra.ExactArgs(1),
	RunE:         run,
	SilenceUsage: true,
}

func init() {
	rootCmd.Version = version
	rootCmd.SetVersionTemplate("ghgrab {{.Version}} (" + commit + ", " + date + ")\n")

	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output directory (default: repository name); for file URLs, a path without a trailing slash names the output file")
	rootCmd.Flags().StringVarP(&archivePath, "zip", "z", "", "write a zip archive to this path instead of individual files")
	rootCmd.Flags().StringVar(&tokenFlag, "token", "", "GitHub token (default: GITHUB_TOKEN, config file, then gh auth token)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show verbose output")
}

// Execute runs the root command
func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	start := time.Now()
	ui.SetVerbose(verbose)
	logger.Init(verbose)
	ctx := cmd.Context()

	cfg := loadConfig()

	ui.Step(1, 3, "Resolving URL")
	addr, err := resolver.Resolve(args[0])
	if err != nil {
		ui.ErrorMsg("Could not resolve URL", err,
			"Expected https://github.com/owner/repo, .../tree/ref[/dir], or .../blob/ref/file")
		return err
	}
	ui.Detail(addr.String())

	client := retriever.New(resolveToken(tokenFlag, cfg))

	ui.Step(2, 3, "Discovering files")
	var descs []retriever.FileDescriptor
	err = ui.RunWithSpinner("Listing repository files...", func() error {
		var discoverErr error
		descs, discoverErr = client.Discover(ctx, addr, func(n int) {
			ui.Verbosef("found %d files", n)
		})
		return discoverErr
	})
	if err != nil {
		ui.ErrorMsg("Discovery failed", err, discoveryHint(err)...)
		return err
	}
	if len(descs) == 0 {
		ui.WarnMsg("No files found at " + addr.String())
		return nil
	}
	ui.Detail(fmt.Sprintf("%d files to download", len(descs)))

	ui.Step(3, 3, "Downloading")
	progress := func(done, total int, o writer.Outcome, totalBytes int64) {
		ui.FileLine(done, total, o.RelPath, o.Bytes, o.Err != nil)
	}

	var summary writer.Summary
	if archivePath != "" {
		summary, err = writer.WriteToArchive(ctx, client, descs, addr, archivePath, progress)
		if err != nil {
			ui.ErrorMsg("Could not write archive", err)
			return err
		}
	} else {
		outDir, exactFile := outputTarget(addr, outputPath, cfg.Output)
		summary = writer.WriteToDirectory(ctx, client, descs, addr, outDir, exactFile, progress)
	}

	printSummary(summary, time.Since(start))

	if summary.Succeeded == 0 {
		return fmt.Errorf("all %d files failed", summary.Failed)
	}
	return nil
}

// outputTarget applies the trailing-separator convention: a file URL with an
// output path that does not end in a separator names the output file itself.
// Without a flag the repository name becomes the output directory, under the
// configured base directory when one is set.
func outputTarget(a resolver.Address, flag, configuredBase string) (outDir, exactFile string) {
	if flag == "" {
		if configuredBase != "" {
			return filepath.Join(configuredBase, a.Repo), ""
		}
		return a.Repo, ""
	}
	if a.Kind == resolver.KindBlob && !strings.HasSuffix(flag, "/") && !strings.HasSuffix(flag, string(os.PathSeparator)) {
		return "", flag
	}
	return flag, ""
}

// discoveryHint maps well-known API failures to a usable suggestion
func discoveryHint(err error) []string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "status 404"):
		return []string{"Check the URL, or pass --token for a private repository"}
	case strings.Contains(msg, "status 403"), strings.Contains(msg, "rate limit"):
		return []string{"Unauthenticated requests are rate limited; pass --token or run gh auth login"}
	default:
		return nil
	}
}

func printSummary(s writer.Summary, elapsed time.Duration) {
	ui.Println()
	if s.Failed == 0 {
		ui.SuccessMsg(fmt.Sprintf("Downloaded %d files, %s (%s)",
			s.Succeeded, ui.FormatBytes(s.TotalBytes), ui.FormatDuration(elapsed)))
		return
	}

	ui.WarnMsg(fmt.Sprintf("Downloaded %d of %d files, %s (%s)",
		s.Succeeded, s.Attempted, ui.FormatBytes(s.TotalBytes), ui.FormatDuration(elapsed)))
	for _, f := range s.Failures {
		ui.Detail(ui.Error.Render(f))
	}
	if extra := s.Failed - len(s.Failures); extra > 0 {
		ui.Detail(ui.Dim.Render(fmt.Sprintf("and %d more failures", extra)))
	}
}
