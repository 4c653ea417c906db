package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/theirongolddev/opdusage/internal/source"
	"github.com/theirongolddev/opdusage/internal/store"
)

// CachedLoadResult extends LoadResult with cache metadata.
type CachedLoadResult struct {
	LoadResult
	CacheHit bool
}

// LoadWithCache returns the cached table for location when its mtime, size,
// sheet and delimiter are unchanged, and otherwise parses it and refreshes the
// cache. A stale entry is evicted before reparsing so a failed parse leaves
// nothing behind. Remote sources bypass the cache.
func LoadWithCache(ctx context.Context, location string, opts source.Options, cache *store.Cache) (*CachedLoadResult, error) {
	if source.IsRemote(location) {
		lr, err := Load(ctx, location, opts)
		if err != nil {
			return nil, err
		}
		return &CachedLoadResult{LoadResult: *lr}, nil
	}

	key, err := filepath.Abs(location)
	if err != nil {
		key = location
	}

	info, err := os.Stat(location)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", location, err)
	}

	tracked, ok, err := cache.LookupSource(key)
	if err != nil {
		return nil, fmt.Errorf("reading cache: %w", err)
	}
	delim := string(opts.Delimiter)
	if opts.Delimiter == 0 {
		delim = ","
	}

	if ok && tracked.Fresh(info.ModTime().UnixNano(), info.Size(), opts.Sheet, delim) {
		records, err := cache.LoadRecords(key)
		if err != nil {
			return nil, fmt.Errorf("loading cached records: %w", err)
		}
		return &CachedLoadResult{
			LoadResult: LoadResult{
				Records:          records,
				TotalRows:        tracked.TotalRows,
				ParseErrors:      tracked.ParseErrors,
				DroppedZeroLimit: tracked.DroppedZeroLimit,
			},
			CacheHit: true,
		}, nil
	}
	if ok {
		if err := cache.DeleteSource(key); err != nil {
			log.WithError(err).WithField("source", location).Warn("could not evict stale cache entry")
		}
	}

	tbl, err := source.Open(ctx, location, opts)
	if err != nil {
		return nil, err
	}
	lr := FromTable(tbl)

	err = cache.SaveRecords(store.SourceInfo{
		Location:         key,
		MtimeNs:          tbl.ModTime.UnixNano(),
		SizeBytes:        tbl.Size,
		Sheet:            opts.Sheet,
		Delimiter:        delim,
		TotalRows:        lr.TotalRows,
		ParseErrors:      lr.ParseErrors,
		DroppedZeroLimit: lr.DroppedZeroLimit,
	}, lr.Records)
	if err != nil {
		log.WithError(err).WithField("source", location).Warn("could not update cache")
	}

	return &CachedLoadResult{LoadResult: *lr}, nil
}

// OpenSession loads location into a Session. With useCache set it goes
// through the record cache and falls back to a direct parse when the cache
// database cannot be opened.
func OpenSession(ctx context.Context, location string, opts source.Options, useCache bool) (*Session, error) {
	if useCache {
		cache, err := store.Open(CachePath())
		if err == nil {
			defer func() { _ = cache.Close() }()
			cr, err := LoadWithCache(ctx, location, opts, cache)
			if err != nil {
				return nil, err
			}
			s := NewSession(location, &cr.LoadResult)
			s.Stats.FromCache = cr.CacheHit
			return s, nil
		}
		log.WithError(err).Debug("cache unavailable, parsing directly")
	}

	lr, err := Load(ctx, location, opts)
	if err != nil {
		return nil, err
	}
	return NewSession(location, lr), nil
}

// CacheDir returns the platform-appropriate cache directory.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "opdusage")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "opdusage")
}

// CachePath returns the full path to the cache database.
func CachePath() string {
	return filepath.Join(CacheDir(), "records.db")
}
