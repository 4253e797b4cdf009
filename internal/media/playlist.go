package media

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

var playlistExts = map[string]bool{
	".m3u":  true,
	".m3u8": true,
	".pls":  true,
}

// ErrEmptyPlaylist is returned when no playlist entry can be played.
var ErrEmptyPlaylist = errors.New("playlist has no playable entries")

// IsPlaylistExt returns true for .m3u, .m3u8 and .pls.
func IsPlaylistExt(ext string) bool {
	return playlistExts[strings.ToLower(ext)]
}

// Resolve turns a sample media argument into a file path or URL a decoder can
// open. Playlists resolve to their first playable entry.
func Resolve(arg string) (string, error) {
	if IsURL(arg) || !IsPlaylistExt(filepath.Ext(arg)) {
		return arg, nil
	}
	entries, err := readPlaylist(arg)
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		if playable(e) {
			return e, nil
		}
	}
	return "", fmt.Errorf("%s: %w", filepath.Base(arg), ErrEmptyPlaylist)
}

// readPlaylist returns the entries of a local playlist. Relative paths are resolved
// against the playlist's directory; URLs are kept as is.
func readPlaylist(path string) ([]string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("reading playlist: %w", err)
	}
	if !utf8.Valid(data) {
		return nil, errors.New("playlist is not valid UTF-8")
	}
	text := strings.TrimPrefix(string(data), "\uFEFF")

	baseDir := filepath.Dir(abs)
	pls := strings.EqualFold(filepath.Ext(abs), ".pls")

	var entries []string
	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if pls {
			line = plsValue(line)
		} else if strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.Trim(line, `"`)
		if line == "" {
			continue
		}
		entries = append(entries, resolveEntry(line, baseDir))
	}
	return entries, scanner.Err()
}

// plsValue returns the value of a FileN= line, or "".
func plsValue(line string) string {
	key, val, ok := strings.Cut(line, "=")
	if !ok {
		return ""
	}
	key = strings.ToLower(strings.TrimSpace(key))
	num, found := strings.CutPrefix(key, "file")
	if !found || num == "" || strings.Trim(num, "0123456789") != "" {
		return ""
	}
	return strings.TrimSpace(val)
}

func resolveEntry(raw, baseDir string) string {
	if IsURL(raw) {
		return raw
	}
	p := filepath.Clean(raw)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(baseDir, p)
}

func playable(entry string) bool {
	if IsURL(entry) {
		return IsSupportedExt(urlExt(entry))
	}
	info, err := os.Stat(entry)
	if err != nil || info.IsDir() {
		return false
	}
	return IsSupportedExt(filepath.Ext(entry))
}
