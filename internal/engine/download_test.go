package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bianoble/mcstarter/internal/cache"
	"github.com/bianoble/mcstarter/internal/lock"
)

func TestDownloadFetchesThenHits(t *testing.T) {
	p := newTestProject(t)
	e := &DownloadEngine{Cache: p.cache, Jobs: 3}

	first, err := e.Download(context.Background(), p.cfg, p.lf)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if strings.Join(first.Fetched, ",") != "core,chat,economy" || len(first.Hits) != 0 {
		t.Errorf("first run fetched = %v, hits = %v", first.Fetched, first.Hits)
	}
	if first.Bytes != 33 {
		t.Errorf("bytes = %d, want 33", first.Bytes)
	}

	second, err := e.Download(context.Background(), p.cfg, p.lf)
	if err != nil {
		t.Fatalf("second Download: %v", err)
	}
	if len(second.Fetched) != 0 || len(second.Hits) != 3 {
		t.Errorf("second run fetched = %v, hits = %v", second.Fetched, second.Hits)
	}
	if p.fetcher.total() != 3 {
		t.Errorf("total fetches = %d, want 3", p.fetcher.total())
	}
}

func TestDownloadMissingLockEntry(t *testing.T) {
	p := newTestProject(t)
	delete(p.lf.Entries, "core")

	_, err := (&DownloadEngine{Cache: p.cache}).Download(context.Background(), p.cfg, p.lf)
	var missing *lock.MissingEntryError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingEntryError, got %v", err)
	}
	if p.fetcher.total() != 0 {
		t.Errorf("no fetch expected, got %d", p.fetcher.total())
	}
}

func TestDownloadHashMismatch(t *testing.T) {
	p := newTestProject(t)
	p.fetcher.set("mem://economy", "changed upstream")

	_, err := (&DownloadEngine{Cache: p.cache}).Download(context.Background(), p.cfg, p.lf)
	var mismatch *cache.HashMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected HashMismatchError, got %v", err)
	}
	if mismatch.Expected != p.lf.Entries["economy"] {
		t.Errorf("expected digest = %s", mismatch.Expected)
	}
}
