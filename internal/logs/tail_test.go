package logs_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"measuremap/internal/logs"
)

func TestTailLastLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "measuremap.log")
	if err := os.WriteFile(path, []byte("a\nb\nc\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	result, err := logs.Tail(context.Background(), path, logs.TailOptions{Offset: -1, Limit: 2})
	if err != nil {
		t.Fatalf("tail returned error: %v", err)
	}
	if len(result.Lines) != 2 || result.Lines[0] != "b" || result.Lines[1] != "c" {
		t.Fatalf("unexpected lines: %#v", result.Lines)
	}
	if result.Offset != 6 {
		t.Fatalf("expected offset at end of file, got %d", result.Offset)
	}

	missing, err := logs.Tail(context.Background(), filepath.Join(t.TempDir(), "none.log"), logs.TailOptions{Offset: -1, Limit: 5})
	if err != nil || len(missing.Lines) != 0 {
		t.Fatalf("expected empty result for missing file, got %+v err=%v", missing, err)
	}
}

func TestTailAppliesMatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "measuremap.log")
	if err := os.WriteFile(path, []byte("keep 1\ndrop\nkeep 2\nkeep 3\ndrop\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	match := func(line string) bool { return strings.HasPrefix(line, "keep") }

	result, err := logs.Tail(context.Background(), path, logs.TailOptions{Offset: -1, Limit: 2, Match: match})
	if err != nil {
		t.Fatalf("tail returned error: %v", err)
	}
	if len(result.Lines) != 2 || result.Lines[0] != "keep 2" || result.Lines[1] != "keep 3" {
		t.Fatalf("unexpected lines: %#v", result.Lines)
	}

	from, err := logs.Tail(context.Background(), path, logs.TailOptions{Offset: 0, Match: match})
	if err != nil {
		t.Fatalf("tail from offset: %v", err)
	}
	if len(from.Lines) != 3 {
		t.Fatalf("expected 3 matching lines, got %#v", from.Lines)
	}
}

func TestTailFollowWaits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "measuremap.log")
	if err := os.WriteFile(path, []byte("start\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	result, err := logs.Tail(ctx, path, logs.TailOptions{Offset: -1, Limit: 1})
	if err != nil {
		t.Fatalf("initial tail: %v", err)
	}

	done := make(chan logs.TailResult, 1)
	go func(offset int64) {
		res, err := logs.Tail(ctx, path, logs.TailOptions{Offset: offset, Follow: true, Wait: 5 * time.Second})
		if err != nil {
			t.Errorf("follow tail error: %v", err)
		}
		done <- res
	}(result.Offset)

	time.Sleep(200 * time.Millisecond)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open append: %v", err)
	}
	if _, err := f.WriteString("later\n"); err != nil {
		t.Fatalf("append log: %v", err)
	}
	_ = f.Close()

	select {
	case res := <-done:
		if len(res.Lines) != 1 || res.Lines[0] != "later" {
			t.Fatalf("unexpected follow lines: %#v", res.Lines)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("tail follow did not return")
	}
}

func TestTailHoldsBackPartialLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "measuremap.log")
	if err := os.WriteFile(path, []byte("done\n{\"msg\":\"half"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	first, err := logs.Tail(context.Background(), path, logs.TailOptions{Offset: -1, Limit: 5})
	if err != nil {
		t.Fatalf("tail: %v", err)
	}
	if len(first.Lines) != 1 || first.Lines[0] != "done" || first.Offset != 5 {
		t.Fatalf("expected only the complete line, got %#v offset=%d", first.Lines, first.Offset)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open append: %v", err)
	}
	if _, err := f.WriteString("way\"}\n"); err != nil {
		t.Fatalf("append log: %v", err)
	}
	_ = f.Close()

	next, err := logs.Tail(context.Background(), path, logs.TailOptions{Offset: first.Offset})
	if err != nil {
		t.Fatalf("tail from offset: %v", err)
	}
	if len(next.Lines) != 1 || next.Lines[0] != `{"msg":"halfway"}` {
		t.Fatalf("expected the finished line in one piece, got %#v", next.Lines)
	}
}
