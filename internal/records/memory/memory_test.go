package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"salesreport/internal/core"
	"salesreport/internal/records"
)

func batch(category string, n int) []core.ProductRecord {
	out := make([]core.ProductRecord, n)
	for i := range out {
		out[i] = core.NewProductRecord(int64(i+1), "P", category, decimal.NewFromInt(1), 1, 4, 0)
	}
	return out
}

func TestReplaceAllAndScan(t *testing.T) {
	ctx := context.Background()
	s := New(batch("old", 2)...)

	if err := s.ReplaceAll(ctx, batch("new", 3)); err != nil {
		t.Fatalf("replace: %v", err)
	}
	got, err := s.ScanAll(ctx)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(got) != 3 || got[0].Category != "new" {
		t.Fatalf("unexpected snapshot %+v", got)
	}
	if n, _ := s.Count(ctx); n != 3 {
		t.Fatalf("count = %d, want 3", n)
	}
}

func TestReplaceAllRejectsWholeBatch(t *testing.T) {
	ctx := context.Background()
	s := New(batch("old", 2)...)

	bad := batch("new", 3)
	bad[2].Category = ""
	err := s.ReplaceAll(ctx, bad)
	if !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	var re *records.RecordError
	if !errors.As(err, &re) || re.Index != 2 {
		t.Fatalf("expected record error at index 2, got %v", err)
	}

	got, _ := s.ScanAll(ctx)
	if len(got) != 2 || got[0].Category != "old" {
		t.Fatalf("previous contents should survive a failed replace, got %+v", got)
	}
}

func TestReplaceAllRejectsExtraPricePrecision(t *testing.T) {
	ctx := context.Background()
	s := New(batch("old", 1)...)

	bad := batch("new", 2)
	bad[1].Price = decimal.NewNullDecimal(decimal.RequireFromString("9.999"))
	err := s.ReplaceAll(ctx, bad)
	var ve *core.ValidationError
	if !errors.As(err, &ve) || ve.Field != "price" {
		t.Fatalf("expected price validation error, got %v", err)
	}
	if n, _ := s.Count(ctx); n != 1 {
		t.Fatalf("count = %d, want the old single record", n)
	}
}

func TestScanReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := New(batch("a", 1)...)
	got, _ := s.ScanAll(ctx)
	got[0].Category = "mutated"
	again, _ := s.ScanAll(ctx)
	if again[0].Category != "a" {
		t.Fatalf("store contents changed through returned slice")
	}
}

func TestConcurrentReplaceNeverTears(t *testing.T) {
	ctx := context.Background()
	s := New(batch("a", 50)...)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			cat := "a"
			if i%2 == 0 {
				cat = "b"
			}
			_ = s.ReplaceAll(ctx, batch(cat, 50))
		}
		close(stop)
	}()

	for {
		select {
		case <-stop:
			wg.Wait()
			return
		default:
		}
		snap, _ := s.ScanAll(ctx)
		for _, r := range snap {
			if r.Category != snap[0].Category {
				t.Fatalf("torn snapshot: %s and %s", snap[0].Category, r.Category)
			}
		}
	}
}
