// Package edirect runs PubMed searches through the local NCBI Entrez Direct
// tools and provisions their installation. Unlike the web API path this path
// has no result-count ceiling: the esearch|efetch pipeline streams the full
// result set in one invocation.
package edirect

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/diogomachado-bioinfo/pubmedtools/internal/medline"
	"github.com/diogomachado-bioinfo/pubmedtools/pkg/types"
)

var (
	// ErrToolNotInstalled indicates the EDirect executables are missing
	// from the install directory. Run EnsureInstalled first.
	ErrToolNotInstalled = errors.New("edirect tools not installed")

	// ErrUnsupportedPlatform indicates a host platform that can run
	// EDirect neither natively nor through WSL.
	ErrUnsupportedPlatform = errors.New("unsupported operating system")
)

// executor abstracts shell execution for testing.
type executor interface {
	// RunShell runs command through the platform shell. When env is
	// non-nil it replaces the process environment. Standard output is
	// streamed to stdout.
	RunShell(ctx context.Context, command string, env []string, stdout io.Writer) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) RunShell(ctx context.Context, command string, env []string, stdout io.Writer) error {
	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.CommandContext(ctx, "cmd", "/C", command)
	} else {
		cmd = exec.CommandContext(ctx, "sh", "-c", command)
	}
	cmd.Env = env
	cmd.Stdout = stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

var defaultExec executor = &osExecutor{}

// Runner executes EDirect search pipelines.
type Runner struct {
	Config types.EDirectConfig
	Creds  types.Credentials

	exec executor
	goos string
}

// NewRunner returns a Runner for the current platform.
func NewRunner(cfg types.EDirectConfig, creds types.Credentials) *Runner {
	return &Runner{Config: cfg, Creds: creds, exec: defaultExec, goos: runtime.GOOS}
}

// RunQuery searches PubMed with the local esearch|efetch pipeline and parses
// the medline output. The call blocks for the full run of the external
// process. Abstract whitespace is kept exactly as the tool emitted it; only
// the title is collapsed (see internal/medline for the path discrepancy).
func (r *Runner) RunQuery(ctx context.Context, query string, w io.Writer) ([]types.Article, error) {
	if _, err := os.Stat(filepath.Join(r.Config.InstallDir, "esearch")); err != nil {
		return nil, fmt.Errorf("%w: %s not found in %s (run setup first)",
			ErrToolNotInstalled, "esearch", r.Config.InstallDir)
	}

	command, env, err := r.buildCommand(query)
	if err != nil {
		return nil, err
	}

	fmt.Fprintln(w, "Downloading data from PubMed...")
	fmt.Fprintln(w, command)

	var out bytes.Buffer
	if err := r.exec.RunShell(ctx, command, env, &out); err != nil {
		return nil, fmt.Errorf("running edirect pipeline: %w", err)
	}

	fmt.Fprintln(w, "Extracting data...")
	records, err := medline.Parse(&out)
	if err != nil {
		return nil, err
	}

	articles, err := medline.ParseArticles(records, false)
	if err != nil {
		return nil, err
	}

	fmt.Fprintln(w, "Done!")
	return articles, nil
}

// buildCommand assembles the platform-specific shell pipeline and its
// environment.
func (r *Runner) buildCommand(query string) (command string, env []string, err error) {
	switch r.goos {
	case "linux":
		command = fmt.Sprintf(`esearch -db pubmed -query "%s" | efetch -format medline`, query)
		env = []string{"PATH=" + r.Config.InstallDir + ":" + os.Getenv("PATH")}
		if r.Creds.APIKey != "" {
			env = append(env, "NCBI_API_KEY="+r.Creds.APIKey)
		}
		return command, env, nil

	case "windows":
		// Native Windows cannot run the EDirect perl scripts; delegate
		// to WSL with the install path translated to its mount point.
		dir := wslPath(r.Config.InstallDir)
		prefix := "wsl "
		if r.Creds.APIKey != "" {
			prefix = fmt.Sprintf("wsl export NCBI_API_KEY=%s; ", r.Creds.APIKey)
		}
		command = fmt.Sprintf(`%s%s/esearch -db pubmed -query "%s" | %s%s/efetch -format medline`,
			prefix, dir, query, prefix, dir)
		return command, nil, nil

	default:
		return "", nil, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, r.goos)
	}
}

var driveLetterRe = regexp.MustCompile(`^([A-Za-z]):\\`)

// wslPath converts a Windows path to its WSL mount point
// (C:\tools\edirect -> /mnt/c/tools/edirect).
func wslPath(p string) string {
	p = driveLetterRe.ReplaceAllStringFunc(p, func(m string) string {
		return "/mnt/" + strings.ToLower(m[:1]) + "/"
	})
	return strings.ReplaceAll(p, `\`, "/")
}
