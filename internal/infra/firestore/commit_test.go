package firestore

import (
	"context"
	"fmt"
	"testing"
)

func TestRunChunked_BatchSizes(t *testing.T) {
	items := make([]int, 950)

	var sizes []int
	var progressCalls [][3]int
	apply := func(_ context.Context, chunk []int) error {
		sizes = append(sizes, len(chunk))
		return nil
	}
	progress := func(batch, total, written int) {
		progressCalls = append(progressCalls, [3]int{batch, total, written})
	}

	if err := runChunked(context.Background(), items, 400, apply, progress); err != nil {
		t.Fatalf("runChunked: %v", err)
	}

	wantSizes := []int{400, 400, 150}
	if len(sizes) != len(wantSizes) {
		t.Fatalf("got %d batches, want %d", len(sizes), len(wantSizes))
	}
	for i, want := range wantSizes {
		if sizes[i] != want {
			t.Errorf("batch %d size = %d, want %d", i+1, sizes[i], want)
		}
	}

	wantProgress := [][3]int{{1, 3, 400}, {2, 3, 800}, {3, 3, 950}}
	for i, want := range wantProgress {
		if progressCalls[i] != want {
			t.Errorf("progress call %d = %v, want %v", i, progressCalls[i], want)
		}
	}
}

func TestRunChunked_FailureStopsLaterBatches(t *testing.T) {
	items := make([]int, 950)

	var attempted []int
	apply := func(_ context.Context, chunk []int) error {
		attempted = append(attempted, len(chunk))
		if len(attempted) == 2 {
			return fmt.Errorf("store unavailable")
		}
		return nil
	}

	err := runChunked(context.Background(), items, 400, apply, nil)
	if err == nil {
		t.Fatal("expected error from failing batch 2")
	}

	// Batch 1 was applied and stands; batch 2 failed; batch 3 never ran.
	if len(attempted) != 2 {
		t.Errorf("attempted %d batches, want 2 (batch after the failure must not run)", len(attempted))
	}
}

func TestRunChunked_Small(t *testing.T) {
	var batches int
	apply := func(_ context.Context, chunk []string) error {
		batches++
		if len(chunk) != 3 {
			t.Errorf("chunk size = %d, want 3", len(chunk))
		}
		return nil
	}

	if err := runChunked(context.Background(), []string{"a", "b", "c"}, 400, apply, nil); err != nil {
		t.Fatalf("runChunked: %v", err)
	}
	if batches != 1 {
		t.Errorf("batches = %d, want 1", batches)
	}
}

func TestRunChunked_Empty(t *testing.T) {
	apply := func(_ context.Context, chunk []int) error {
		t.Error("apply called for empty input")
		return nil
	}
	if err := runChunked(context.Background(), nil, 400, apply, nil); err != nil {
		t.Fatalf("runChunked: %v", err)
	}
}

func TestRunChunked_InvalidCeiling(t *testing.T) {
	err := runChunked(context.Background(), []int{1}, 0, func(context.Context, []int) error { return nil }, nil)
	if err == nil {
		t.Fatal("expected error for zero ceiling")
	}
}
