package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
)

// Fetch downloads a remote media file into a temp file that keeps the URL's
// extension, so the decoder can be picked by name. cleanup removes the file.
func Fetch(ctx context.Context, client *http.Client, url string) (string, func(), error) {
	ext := urlExt(url)
	if !IsSupportedExt(ext) {
		return "", nil, fmt.Errorf("unsupported format %q (supported: %s)", ext, SupportedExtsList())
	}
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", nil, fmt.Errorf("building request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("fetching %s: %s", url, resp.Status)
	}

	tmpFile, err := os.CreateTemp("", "sonoscope-*"+ext)
	if err != nil {
		return "", nil, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	cleanup := func() {
		os.Remove(tmpPath)
	}

	if _, err := io.Copy(tmpFile, resp.Body); err != nil {
		tmpFile.Close()
		cleanup()
		return "", nil, fmt.Errorf("downloading %s: %w", url, err)
	}
	if err := tmpFile.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("writing temp file: %w", err)
	}
	return tmpPath, cleanup, nil
}
