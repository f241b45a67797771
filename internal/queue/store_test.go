package queue_test

import (
	"fmt"
	"sync"
	"testing"

	"filelink/internal/queue"
	"filelink/internal/transport"
)

func testJob(fileID string) queue.Job {
	origin := transport.MessageRef{ChatID: 100, MessageID: 1, UserID: 7}
	status := transport.MessageRef{ChatID: 100, MessageID: 2}
	return queue.NewJob(origin, status, queue.FileSource(fileID, ""))
}

func TestEnqueueReportsPosition(t *testing.T) {
	store := queue.NewStore()

	for i := 1; i <= 3; i++ {
		pos := store.Enqueue(testJob(fmt.Sprintf("F%d", i)))
		if pos != i {
			t.Fatalf("expected position %d, got %d", i, pos)
		}
	}
	if store.Len() != 3 {
		t.Fatalf("expected length 3, got %d", store.Len())
	}
}

func TestFIFOOrder(t *testing.T) {
	store := queue.NewStore()
	ids := []string{"a", "b", "c", "d"}
	for _, id := range ids {
		store.Enqueue(testJob(id))
	}

	for _, want := range ids {
		head, ok := store.PeekFront()
		if !ok {
			t.Fatal("expected a head job")
		}
		if head.Source.FileID != want {
			t.Fatalf("expected head %q, got %q", want, head.Source.FileID)
		}
		store.PopFront()
	}
	if _, ok := store.PeekFront(); ok {
		t.Fatal("expected empty queue")
	}
}

func TestPopFrontOnEmptyIsNoop(t *testing.T) {
	store := queue.NewStore()
	store.PopFront()
	if store.Len() != 0 {
		t.Fatalf("expected empty queue, got %d", store.Len())
	}
}

func TestConcurrentEnqueueLosesNothing(t *testing.T) {
	store := queue.NewStore()
	const n = 64

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			store.Enqueue(testJob(fmt.Sprintf("F%d", i)))
		}(i)
	}
	wg.Wait()

	if store.Len() != n {
		t.Fatalf("expected %d jobs, got %d", n, store.Len())
	}

	seen := make(map[string]bool, n)
	for {
		head, ok := store.PeekFront()
		if !ok {
			break
		}
		if seen[head.Source.FileID] {
			t.Fatalf("job %q dequeued twice", head.Source.FileID)
		}
		seen[head.Source.FileID] = true
		store.PopFront()
	}
	if len(seen) != n {
		t.Fatalf("expected %d unique jobs, got %d", n, len(seen))
	}
}

func TestSignalCoalescesWithoutBlocking(t *testing.T) {
	store := queue.NewStore()
	// More signals than channel capacity must not block the sender.
	for i := 0; i < 10; i++ {
		store.Signal()
	}
	select {
	case <-store.Wake():
	default:
		t.Fatal("expected a pending wake token")
	}
	select {
	case <-store.Wake():
		t.Fatal("expected tokens to coalesce into a single pending wake")
	default:
	}
}

func TestSnapshotCopies(t *testing.T) {
	store := queue.NewStore()
	store.Enqueue(testJob("x"))
	snap := store.Snapshot()
	if len(snap) != 1 || snap[0].Source.FileID != "x" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	store.PopFront()
	if len(snap) != 1 {
		t.Fatal("snapshot must be independent of later mutations")
	}
}

func TestSourceValidate(t *testing.T) {
	tests := []struct {
		name    string
		source  queue.Source
		wantErr bool
	}{
		{"file", queue.FileSource("F1", "report.pdf"), false},
		{"url", queue.URLSource("https://example.com/a.bin"), false},
		{"empty file id", queue.Source{Kind: queue.SourceFile}, true},
		{"empty url", queue.Source{Kind: queue.SourceURL}, true},
		{"both set", queue.Source{Kind: queue.SourceFile, FileID: "F1", Address: "https://x"}, true},
		{"unknown kind", queue.Source{}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.source.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
