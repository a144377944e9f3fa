package parallel

import (
	"sync/atomic"
	"testing"
)

func TestWorkerPool_RunsAllTasks(t *testing.T) {
	pool, err := NewWorkerPool(4)
	if err != nil {
		t.Fatalf("NewWorkerPool failed: %v", err)
	}

	var counter atomic.Int64
	for i := 0; i < 100; i++ {
		if !pool.Submit(func() { counter.Add(1) }) {
			t.Fatal("Submit returned false on open pool")
		}
	}
	pool.Wait()

	if counter.Load() != 100 {
		t.Errorf("Expected 100 tasks run, got %d", counter.Load())
	}
}

func TestWorkerPool_SubmitAfterCloseFails(t *testing.T) {
	pool, err := NewWorkerPool(2)
	if err != nil {
		t.Fatalf("NewWorkerPool failed: %v", err)
	}
	pool.Close()

	if pool.Submit(func() {}) {
		t.Error("Submit succeeded on closed pool")
	}
}

func TestWorkerPool_NonPositiveWorkerCount(t *testing.T) {
	pool, err := NewWorkerPool(0)
	if err != nil {
		t.Fatalf("NewWorkerPool failed: %v", err)
	}
	defer pool.Close()

	if pool.Size() != 1 {
		t.Errorf("Expected fallback to 1 worker, got %d", pool.Size())
	}
}

func TestWorkerPool_PanicDoesNotKillPool(t *testing.T) {
	pool, err := NewWorkerPool(1)
	if err != nil {
		t.Fatalf("NewWorkerPool failed: %v", err)
	}

	var ran atomic.Bool
	pool.Submit(func() { panic("boom") })
	pool.Submit(func() { ran.Store(true) })
	pool.Wait()

	if !ran.Load() {
		t.Error("Task after panic did not run")
	}
}

func TestWorkerPool_DoubleCloseIsSafe(t *testing.T) {
	pool, err := NewWorkerPool(2)
	if err != nil {
		t.Fatalf("NewWorkerPool failed: %v", err)
	}
	pool.Close()
	pool.Close()
}
