// Package kvscan drives paginated prefix scans over the key-value store with
// a hard cap on total keys so a scan always terminates, even when the key
// space keeps growing underneath it.
package kvscan

import (
	"context"

	"chat-stats-service/internal/kvstore"
)

const (
	DefaultPageSize = 1000
	DefaultMaxKeys  = 10000
)

type Scanner struct {
	store    kvstore.Store
	pageSize int
	maxKeys  int
}

// ScanResult holds the keys observed by a single logical scan. Truncated is
// set when the cap cut the scan short; callers treat the result as
// best-effort either way because the underlying store is only eventually
// consistent.
type ScanResult struct {
	Keys      []string
	Truncated bool
}

func New(store kvstore.Store) *Scanner {
	return &Scanner{store: store, pageSize: DefaultPageSize, maxKeys: DefaultMaxKeys}
}

// WithLimits overrides page size and the total-key cap. Zero or negative
// values keep the defaults.
func (s *Scanner) WithLimits(pageSize, maxKeys int) *Scanner {
	out := *s
	if pageSize > 0 {
		out.pageSize = pageSize
	}
	if maxKeys > 0 {
		out.maxKeys = maxKeys
	}
	return &out
}

// ScanAll loops List pages until the empty-cursor sentinel or the cap.
func (s *Scanner) ScanAll(ctx context.Context, prefix string) (*ScanResult, error) {
	res := &ScanResult{}
	cursor := ""

	for {
		remaining := s.maxKeys - len(res.Keys)
		if remaining <= 0 {
			res.Truncated = true
			return res, nil
		}

		page := s.pageSize
		if page > remaining {
			page = remaining
		}

		keys, next, err := s.store.List(ctx, prefix, cursor, page)
		if err != nil {
			return nil, err
		}
		res.Keys = append(res.Keys, keys...)

		if next == "" {
			return res, nil
		}
		cursor = next
	}
}
