package service

import (
	"sync"
	"testing"
)

func TestLedgerAdmitThenReject(t *testing.T) {
	l := NewLedger(500)

	if !l.Admit(42) {
		t.Fatal("first admission must succeed")
	}
	if l.Admit(42) {
		t.Fatal("second admission of the same id must be rejected")
	}
}

func TestLedgerNeverRejectsFirstSight(t *testing.T) {
	l := NewLedger(8)

	for id := int64(0); id < 1000; id++ {
		if !l.Admit(id) {
			t.Fatalf("id %d rejected on first admission", id)
		}
	}
}

func TestLedgerEvictsOldest(t *testing.T) {
	l := NewLedger(3)

	for id := int64(1); id <= 4; id++ {
		l.Admit(id)
	}

	// 1 was evicted when 4 came in, so it is admitted again.
	if !l.Admit(1) {
		t.Fatal("evicted id must be admitted again")
	}
	// 4 is still in the window.
	if l.Admit(4) {
		t.Fatal("id inside the window must stay rejected")
	}
}

func TestLedgerBoundedSize(t *testing.T) {
	l := NewLedger(100)

	for id := int64(0); id < 10000; id++ {
		l.Admit(id)
	}
	if got := l.Len(); got != 100 {
		t.Fatalf("ledger remembers %d ids, want 100", got)
	}
}

func TestLedgerConcurrentAdmit(t *testing.T) {
	l := NewLedger(500)

	var wg sync.WaitGroup
	admitted := make([]bool, 64)
	for i := range admitted {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			admitted[i] = l.Admit(7)
		}(i)
	}
	wg.Wait()

	count := 0
	for _, ok := range admitted {
		if ok {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("exactly one concurrent admission must win, got %d", count)
	}
}
