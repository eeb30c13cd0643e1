package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/yndnr/artifact-go/internal/core/domain"
	"github.com/yndnr/artifact-go/internal/core/service"
)

var (
	_ service.TokenStore    = (*Store)(nil)
	_ service.TokenUpserter = (*Store)(nil)
	_ service.TokenReader   = (*Store)(nil)
)

func TestStore_InsertAndGet(t *testing.T) {
	store := New()
	ctx := context.Background()

	if err := store.Insert(ctx, "AAA", domain.FlagLocked); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	rec, err := store.Get(ctx, "AAA")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.Name != "AAA" || rec.Flags != domain.FlagLocked {
		t.Fatalf("Get = %+v", rec)
	}

	exists, err := store.Exists(ctx, "AAA")
	if err != nil || !exists {
		t.Fatalf("Exists(AAA) = %v, %v", exists, err)
	}
	exists, err = store.Exists(ctx, "BBB")
	if err != nil || exists {
		t.Fatalf("Exists(BBB) = %v, %v", exists, err)
	}
}

func TestStore_InsertDuplicate(t *testing.T) {
	store := New()
	ctx := context.Background()

	if err := store.Insert(ctx, "AAA", 0); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := store.Insert(ctx, "AAA", domain.FlagLocked); !errors.Is(err, domain.ErrTokenExists) {
		t.Fatalf("second Insert = %v, want ErrTokenExists", err)
	}

	rec, _ := store.Get(ctx, "AAA")
	if rec.Flags != 0 {
		t.Errorf("duplicate insert changed flags to %v", rec.Flags)
	}
}

func TestStore_UpdateFlags(t *testing.T) {
	store := New()
	ctx := context.Background()

	if err := store.UpdateFlags(ctx, "AAA", domain.FlagLocked); !errors.Is(err, domain.ErrTokenNotFound) {
		t.Fatalf("UpdateFlags on missing = %v, want ErrTokenNotFound", err)
	}
	if store.Count() != 0 {
		t.Fatalf("UpdateFlags on missing created a record")
	}

	_ = store.Insert(ctx, "AAA", 0)
	if err := store.UpdateFlags(ctx, "AAA", domain.FlagLocked); err != nil {
		t.Fatalf("UpdateFlags: %v", err)
	}
	rec, _ := store.Get(ctx, "AAA")
	if rec.Flags != domain.FlagLocked {
		t.Errorf("Flags = %v, want locked", rec.Flags)
	}
}

func TestStore_Upsert(t *testing.T) {
	store := New()
	ctx := context.Background()

	created, err := store.Upsert(ctx, "AAA", 0)
	if err != nil || !created {
		t.Fatalf("first Upsert = %v, %v; want created", created, err)
	}
	created, err = store.Upsert(ctx, "AAA", domain.FlagLocked)
	if err != nil || created {
		t.Fatalf("second Upsert = %v, %v; want updated", created, err)
	}

	rec, _ := store.Get(ctx, "AAA")
	if rec.Flags != domain.FlagLocked {
		t.Errorf("Flags = %v, want locked", rec.Flags)
	}
	if store.Count() != 1 {
		t.Errorf("Count = %d, want 1", store.Count())
	}
}

func TestStore_GetNotFound(t *testing.T) {
	store := New()
	if _, err := store.Get(context.Background(), "NOPE"); !errors.Is(err, domain.ErrTokenNotFound) {
		t.Fatalf("Get = %v, want ErrTokenNotFound", err)
	}
}

func TestStore_List(t *testing.T) {
	store := New(WithShards(4))
	ctx := context.Background()

	for _, name := range []string{"BBB", "ABC.DEF", "ABC", "ABD", "XN--CQV902D"} {
		if err := store.Insert(ctx, name, 0); err != nil {
			t.Fatalf("Insert(%s): %v", name, err)
		}
	}

	tests := []struct {
		prefix string
		want   []string
	}{
		{"", []string{"ABC", "ABC.DEF", "ABD", "BBB", "XN--CQV902D"}},
		{"ABC", []string{"ABC", "ABC.DEF"}},
		{"AB", []string{"ABC", "ABC.DEF", "ABD"}},
		{"ZZ", nil},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("prefix=%q", tt.prefix), func(t *testing.T) {
			var got []string
			err := store.List(ctx, tt.prefix, func(rec domain.TokenRecord) bool {
				got = append(got, rec.Name)
				return true
			})
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if fmt.Sprint(got) != fmt.Sprint(tt.want) {
				t.Errorf("List(%q) = %v, want %v", tt.prefix, got, tt.want)
			}
		})
	}
}

func TestStore_ListStopsEarly(t *testing.T) {
	store := New()
	ctx := context.Background()
	for _, name := range []string{"AAA", "BBB", "CCC"} {
		_ = store.Insert(ctx, name, 0)
	}

	calls := 0
	_ = store.List(ctx, "", func(domain.TokenRecord) bool {
		calls++
		return false
	})
	if calls != 1 {
		t.Errorf("fn called %d times, want 1", calls)
	}
}

func TestStore_Closed(t *testing.T) {
	store := New()
	ctx := context.Background()
	_ = store.Insert(ctx, "AAA", 0)

	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	if _, err := store.Get(ctx, "AAA"); !errors.Is(err, ErrClosed) {
		t.Errorf("Get after Close = %v, want ErrClosed", err)
	}
	if _, err := store.Upsert(ctx, "AAA", 0); !errors.Is(err, ErrClosed) {
		t.Errorf("Upsert after Close = %v, want ErrClosed", err)
	}
}

func TestStore_CanceledContext(t *testing.T) {
	store := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := store.Insert(ctx, "AAA", 0); !errors.Is(err, context.Canceled) {
		t.Fatalf("Insert = %v, want context.Canceled", err)
	}
}

func TestStore_ConcurrentUpsert(t *testing.T) {
	store := New()
	ctx := context.Background()

	const workers = 32
	var created atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := store.Upsert(ctx, "AAA", domain.FlagLocked)
			if err != nil {
				t.Errorf("Upsert: %v", err)
				return
			}
			if ok {
				created.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := created.Load(); got != 1 {
		t.Errorf("created reported %d times, want exactly 1", got)
	}
}
