package state

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/sdllogs/sdllogs/internal/buffer"
)

func TestStore_UpdateAndSnapshot(t *testing.T) {
	var s Store

	if s.Snapshot().HasBuffer() {
		t.Fatalf("zero store has a buffer")
	}

	before := time.Now()
	s.Update("/tmp/core.log", buffer.New("a\n"), nil)

	snap := s.Snapshot()
	if !snap.HasBuffer() || snap.Buffer.String() != "a\n" {
		t.Fatalf("snapshot buffer = %v, want a", snap.Buffer)
	}
	if snap.Path != "/tmp/core.log" {
		t.Fatalf("Path = %q", snap.Path)
	}
	if snap.Version != 1 {
		t.Fatalf("Version = %d, want 1", snap.Version)
	}
	if snap.LoadedAt.Before(before) {
		t.Fatalf("LoadedAt = %v, want >= %v", snap.LoadedAt, before)
	}
	if snap.LastError != nil {
		t.Fatalf("LastError = %v, want nil", snap.LastError)
	}
}

func TestStore_VersionMovesOnlyOnChange(t *testing.T) {
	var s Store

	s.Update("x.log", buffer.New("a\n"), nil)
	s.Update("", buffer.New("a\n"), nil)
	if v := s.Snapshot().Version; v != 1 {
		t.Fatalf("Version after identical reload = %d, want 1", v)
	}
	s.Update("", buffer.New("a\nb\n"), nil)
	snap := s.Snapshot()
	if snap.Version != 2 {
		t.Fatalf("Version after change = %d, want 2", snap.Version)
	}
	if snap.Path != "x.log" {
		t.Fatalf("Path = %q, want it kept when update passes none", snap.Path)
	}
}

func TestStore_UpdateErrorKeepsPreviousBuffer(t *testing.T) {
	var s Store

	s.Update("x.log", buffer.New("kept\n"), nil)
	prev := s.Snapshot()

	before := time.Now()
	origErr := errors.New("boom")
	s.Update("", nil, origErr)

	snap := s.Snapshot()
	if snap.Buffer != prev.Buffer || snap.Version != prev.Version {
		t.Fatalf("buffer changed on error: got v%d want v%d", snap.Version, prev.Version)
	}
	if snap.LoadedAt.Before(before) {
		t.Fatalf("LoadedAt = %v, want >= %v", snap.LoadedAt, before)
	}
	if snap.LastError == nil || snap.LastError.Error() != "boom" {
		t.Fatalf("LastError = %v, want boom", snap.LastError)
	}
	if !errors.Is(snap.LastError, origErr) {
		t.Fatalf("LastError does not wrap the original error")
	}
	if reflect.ValueOf(snap.LastError).Pointer() == reflect.ValueOf(origErr).Pointer() {
		t.Fatalf("Snapshot should clone error instance")
	}
}

func TestStore_ConsecutiveFailures(t *testing.T) {
	var s Store

	if snap := s.Snapshot(); snap.ConsecutiveFailures != 0 || snap.IsStale() {
		t.Fatalf("zero store = %+v, want no failures", snap)
	}

	s.Update("", nil, errors.New("fail 1"))
	if snap := s.Snapshot(); snap.ConsecutiveFailures != 1 || snap.IsStale() {
		t.Fatalf("after one failure = %+v, want 1 and not stale", snap)
	}

	s.Update("", nil, errors.New("fail 2"))
	if snap := s.Snapshot(); snap.ConsecutiveFailures != 2 || !snap.IsStale() {
		t.Fatalf("after two failures = %+v, want 2 and stale", snap)
	}

	s.Update("", buffer.New("ok\n"), nil)
	if snap := s.Snapshot(); snap.ConsecutiveFailures != 0 || snap.IsStale() {
		t.Fatalf("after success = %+v, want reset", snap)
	}
}
