package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/olivier-w/sonoscope/internal/media"
	"github.com/olivier-w/sonoscope/internal/player"
)

const fetchTimeout = 60 * time.Second

// mediaSource plays a decoded file and feeds it to the sink.
type mediaSource struct {
	path    string
	cleanup func()
	meta    player.Metadata
	volume  float64
	file    *player.File
	out     *player.Player

	stopOnce sync.Once
	stopErr  error
}

// MediaInfo is implemented by sources that know what they are playing.
type MediaInfo interface {
	Metadata() player.Metadata
	Position() time.Duration
}

func newMedia(ctx context.Context, p Params) (Source, error) {
	if p.MediaPath == "" {
		return nil, errors.New("no sample media configured (use -media or [media] path)")
	}

	path, err := media.Resolve(p.MediaPath)
	if err != nil {
		return nil, err
	}
	var cleanup func()
	origin := path
	if media.IsURL(path) {
		ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
		defer cancel()
		fetched, c, err := media.Fetch(ctx, nil, path)
		if err != nil {
			return nil, err
		}
		path, cleanup = fetched, c
	} else {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%s is a directory", path)
		}
		if ext := filepath.Ext(path); !media.IsSupportedExt(ext) {
			return nil, fmt.Errorf("unsupported format %s (supported: %s)", ext, media.SupportedExtsList())
		}
	}

	meta := player.ReadMetadata(path)
	if cleanup != nil && meta.Artist == "" {
		// Temp file names say nothing useful.
		meta.Title = filepath.Base(strings.SplitN(origin, "?", 2)[0])
	}

	return &mediaSource{
		path:    path,
		cleanup: cleanup,
		meta:    meta,
		volume:  p.Volume,
	}, nil
}

func (m *mediaSource) Start(sink Sink) error {
	f, err := player.Open(m.path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", filepath.Base(m.path), err)
	}
	pcm, err := player.Resample(f)
	if err != nil {
		f.Close()
		return err
	}
	out, err := player.New(player.NewTee(pcm, sink), m.volume, nil)
	if err != nil {
		f.Close()
		return err
	}
	m.file = f
	m.out = out
	return nil
}

func (m *mediaSource) Stop() error {
	m.stopOnce.Do(func() {
		if m.out != nil {
			m.stopErr = m.out.Close()
		}
		if m.file != nil {
			if err := m.file.Close(); err != nil && m.stopErr == nil {
				m.stopErr = err
			}
		}
		if m.cleanup != nil {
			m.cleanup()
		}
	})
	return m.stopErr
}

func (m *mediaSource) Done() <-chan struct{} {
	if m.out == nil {
		return nil
	}
	return m.out.Done()
}

func (m *mediaSource) Metadata() player.Metadata { return m.meta }

func (m *mediaSource) Position() time.Duration {
	if m.out == nil {
		return 0
	}
	return m.out.Position()
}
