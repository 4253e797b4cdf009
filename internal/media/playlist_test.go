package media

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestReadPlaylistM3U(t *testing.T) {
	dir := t.TempDir()
	playlist := filepath.Join(dir, "list.m3u")
	content := "\uFEFF#EXTM3U\n\nsong1.mp3\n#comment\n\"https://example.com/stream.ogg\"\nsub/song2.wav\n"
	if err := os.WriteFile(playlist, []byte(content), 0o644); err != nil {
		t.Fatalf("write playlist: %v", err)
	}

	got, err := readPlaylist(playlist)
	if err != nil {
		t.Fatalf("readPlaylist() error = %v", err)
	}
	want := []string{
		filepath.Join(dir, "song1.mp3"),
		"https://example.com/stream.ogg",
		filepath.Join(dir, "sub", "song2.wav"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("readPlaylist() = %#v, want %#v", got, want)
	}
}

func TestReadPlaylistPLS(t *testing.T) {
	dir := t.TempDir()
	playlist := filepath.Join(dir, "list.pls")
	content := "[playlist]\n file1 = one.flac \nTitle1=One\nLength1=120\nFile2=https://example.com/live.mp3\nFileX=bad.mp3\nFile3=\n"
	if err := os.WriteFile(playlist, []byte(content), 0o644); err != nil {
		t.Fatalf("write playlist: %v", err)
	}

	got, err := readPlaylist(playlist)
	if err != nil {
		t.Fatalf("readPlaylist() error = %v", err)
	}
	want := []string{
		filepath.Join(dir, "one.flac"),
		"https://example.com/live.mp3",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("readPlaylist() = %#v, want %#v", got, want)
	}
}

func TestResolvePicksFirstPlayableEntry(t *testing.T) {
	dir := t.TempDir()
	valid := filepath.Join(dir, "ok.wav")
	if err := os.WriteFile(valid, []byte("x"), 0o644); err != nil {
		t.Fatalf("write valid file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write unsupported file: %v", err)
	}
	if err := os.Mkdir(filepath.Join(dir, "folder.mp3"), 0o755); err != nil {
		t.Fatalf("create dir: %v", err)
	}
	playlist := filepath.Join(dir, "list.m3u8")
	content := "missing.mp3\nnotes.txt\nfolder.mp3\nok.wav\n"
	if err := os.WriteFile(playlist, []byte(content), 0o644); err != nil {
		t.Fatalf("write playlist: %v", err)
	}

	got, err := Resolve(playlist)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != valid {
		t.Fatalf("Resolve() = %q, want %q", got, valid)
	}
}

func TestResolveEmptyPlaylist(t *testing.T) {
	dir := t.TempDir()
	playlist := filepath.Join(dir, "empty.pls")
	if err := os.WriteFile(playlist, []byte("[playlist]\nNumberOfEntries=0\n"), 0o644); err != nil {
		t.Fatalf("write playlist: %v", err)
	}
	if _, err := Resolve(playlist); !errors.Is(err, ErrEmptyPlaylist) {
		t.Fatalf("Resolve() error = %v, want ErrEmptyPlaylist", err)
	}
}

func TestResolvePassesThroughFilesAndURLs(t *testing.T) {
	for _, arg := range []string{"song.mp3", "https://example.com/list.m3u"} {
		got, err := Resolve(arg)
		if err != nil || got != arg {
			t.Fatalf("Resolve(%q) = %q, %v", arg, got, err)
		}
	}
}
