package edirect

import (
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/diogomachado-bioinfo/pubmedtools/pkg/types"
)

// Archive locations on the NCBI FTP mirror. Declared as vars so tests can
// substitute an httptest server.
var (
	edirectArchiveURL = "https://ftp.ncbi.nlm.nih.gov/entrez/entrezdirect/edirect.zip"
	xtractArchiveURL  = "https://ftp.ncbi.nlm.nih.gov/entrez/entrezdirect/xtract.Linux.gz"
)

// EnsureInstalled makes sure the EDirect executables exist in the install
// directory, downloading and unpacking the archives if absent. The step is
// idempotent: when esearch is already present it only prints a status line.
// Temporary download artifacts are removed on every exit path.
func EnsureInstalled(client *http.Client, cfg types.EDirectConfig, w io.Writer) error {
	dir := cfg.InstallDir

	if _, err := os.Stat(filepath.Join(dir, "esearch")); err == nil {
		fmt.Fprintln(w, "EDirect already ready!")
		return nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating install directory %s: %w", dir, err)
	}

	fmt.Fprintln(w, "Downloading and extracting edirect...")

	if err := installZip(client, edirectArchiveURL, dir); err != nil {
		return fmt.Errorf("installing edirect archive: %w", err)
	}

	if err := installGzip(client, xtractArchiveURL, filepath.Join(dir, "xtract")); err != nil {
		return fmt.Errorf("installing xtract: %w", err)
	}

	fmt.Fprintln(w, "EDirect ready!")
	return nil
}

// installZip downloads a zip archive and extracts its contents into dir. The
// archive nests everything under a top-level edirect/ directory, which is
// flattened away.
func installZip(client *http.Client, url, dir string) error {
	tmpPath, err := downloadTemp(client, url, dir, ".edirect-*.zip")
	if err != nil {
		return err
	}
	defer os.Remove(tmpPath)

	zr, err := zip.OpenReader(tmpPath)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if err := extractZipEntry(f, dir); err != nil {
			return err
		}
	}
	return nil
}

// extractZipEntry writes one archive entry under dir, stripping the leading
// edirect/ path component and preserving file modes.
func extractZipEntry(f *zip.File, dir string) error {
	name := strings.TrimPrefix(f.Name, "edirect/")
	if name == "" || strings.Contains(name, "..") {
		return nil
	}
	dest := filepath.Join(dir, filepath.FromSlash(name))

	if f.FileInfo().IsDir() {
		return os.MkdirAll(dest, 0o755)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(dest), err)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("opening archive entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
	if err != nil {
		return fmt.Errorf("creating %s: %w", dest, err)
	}

	_, copyErr := io.Copy(out, rc)
	closeErr := out.Close()
	if copyErr != nil {
		os.Remove(dest)
		return fmt.Errorf("extracting %s: %w", f.Name, copyErr)
	}
	if closeErr != nil {
		os.Remove(dest)
		return fmt.Errorf("closing %s: %w", dest, closeErr)
	}
	return nil
}

// installGzip downloads a gzip'd single file and decompresses it to dest
// with the executable bit set.
func installGzip(client *http.Client, url, dest string) error {
	tmpPath, err := downloadTemp(client, url, filepath.Dir(dest), ".xtract-*.gz")
	if err != nil {
		return err
	}
	defer os.Remove(tmpPath)

	in, err := os.Open(tmpPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", tmpPath, err)
	}
	defer in.Close()

	gz, err := gzip.NewReader(in)
	if err != nil {
		return fmt.Errorf("reading gzip: %w", err)
	}
	defer gz.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o755)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dest, err)
	}

	_, copyErr := io.Copy(out, gz)
	closeErr := out.Close()
	if copyErr != nil {
		os.Remove(dest)
		return fmt.Errorf("decompressing to %s: %w", dest, copyErr)
	}
	if closeErr != nil {
		os.Remove(dest)
		return fmt.Errorf("closing %s: %w", dest, closeErr)
	}
	return nil
}

// downloadTemp fetches url into a temporary file inside dir and returns its
// path. The caller removes the file when done.
func downloadTemp(client *http.Client, url, dir, pattern string) (string, error) {
	resp, err := client.Get(url)
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	tmpFile, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("closing temp file: %w", closeErr)
	}
	return tmpPath, nil
}
