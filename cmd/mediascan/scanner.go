package main

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dhowden/tag"
	"github.com/rs/zerolog/log"

	"github.com/edumarques81/stellar-media-library/internal/domain/media"
	"github.com/edumarques81/stellar-media-library/internal/infra/contentdb"
)

// scanJob is a unit of work sent to tag readers.
type scanJob struct {
	fullPath string
	root     string
	info     os.FileInfo
}

type scanResult struct {
	Items    []contentdb.Item
	Untagged int
	Errors   int
	Duration time.Duration
}

// scanner walks directories and produces content rows.
type scanner struct {
	roots   []string
	prefix  string
	workers int
}

func (s *scanner) scan(ctx context.Context) (*scanResult, error) {
	start := time.Now()
	if s.workers < 1 {
		s.workers = 1
	}

	jobs := make(chan scanJob, s.workers*2)
	items := make(chan contentdb.Item, s.workers*2)

	var wg sync.WaitGroup
	var mu sync.Mutex
	result := &scanResult{}

	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				item, tagged := s.readItem(job)
				if !tagged && item.Kind == media.KindAudio {
					mu.Lock()
					result.Untagged++
					mu.Unlock()
				}
				items <- item
			}
		}()
	}

	var collect sync.WaitGroup
	collect.Add(1)
	go func() {
		defer collect.Done()
		for it := range items {
			result.Items = append(result.Items, it)
		}
	}()

	var walkErr error
	for _, root := range s.roots {
		err := filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				log.Warn().Err(err).Str("path", p).Msg("Cannot read path")
				mu.Lock()
				result.Errors++
				mu.Unlock()
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if info.IsDir() {
				if p != root && strings.HasPrefix(info.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			switch media.KindForPath(info.Name()) {
			case media.KindAudio, media.KindVideo:
				jobs <- scanJob{fullPath: p, root: root, info: info}
			}
			return nil
		})
		if err != nil {
			walkErr = err
			break
		}
	}

	close(jobs)
	wg.Wait()
	close(items)
	collect.Wait()

	result.Duration = time.Since(start)
	if walkErr != nil && walkErr != context.Canceled {
		return nil, walkErr
	}
	return result, nil
}

// readItem builds a content row for one file. tagged reports whether audio
// tags could be read.
func (s *scanner) readItem(job scanJob) (contentdb.Item, bool) {
	name := filepath.Base(job.fullPath)
	kind := media.KindForPath(name)

	item := contentdb.Item{
		URI:        s.uriFor(job),
		Kind:       kind,
		Title:      strings.TrimSuffix(name, filepath.Ext(name)),
		MimeType:   media.MimeTypeForPath(name),
		ModifiedAt: job.info.ModTime().UTC(),
	}
	if kind != media.KindAudio {
		return item, false
	}

	f, err := os.Open(job.fullPath)
	if err != nil {
		log.Warn().Err(err).Str("path", job.fullPath).Msg("Cannot open file")
		return item, false
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		log.Debug().Err(err).Str("path", job.fullPath).Msg("No readable tags")
		return item, false
	}

	if t := strings.TrimSpace(m.Title()); t != "" {
		item.Title = t
	}
	item.Artist = strings.TrimSpace(m.Artist())
	if item.Artist == "" {
		item.Artist = strings.TrimSpace(m.AlbumArtist())
	}
	item.Album = strings.TrimSpace(m.Album())
	item.TrackNumber, _ = m.Track()
	return item, true
}

// uriFor returns the slash-separated path of job relative to its root,
// under the configured prefix.
func (s *scanner) uriFor(job scanJob) string {
	rel, err := filepath.Rel(job.root, job.fullPath)
	if err != nil {
		rel = filepath.Base(job.fullPath)
	}
	rel = filepath.ToSlash(rel)
	if s.prefix == "" {
		return rel
	}
	return path.Join(strings.Trim(s.prefix, "/"), rel)
}
