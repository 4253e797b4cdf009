package media

import (
	"path"
	"strings"
)

var audioExts = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".flac": true,
	".ogg":  true,
}

// IsSupportedExt returns true if the extension has a decoder.
func IsSupportedExt(ext string) bool {
	return audioExts[strings.ToLower(ext)]
}

// SupportedExtsList returns a human-readable list of decodable formats.
func SupportedExtsList() string {
	return ".mp3, .wav, .flac, .ogg"
}

// IsURL returns true if the argument looks like an http(s) URL.
func IsURL(arg string) bool {
	return strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://")
}

// urlExt returns the extension of the URL path, ignoring any query or fragment.
func urlExt(rawURL string) string {
	s := rawURL
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	return strings.ToLower(path.Ext(s))
}
