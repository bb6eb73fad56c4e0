package services

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"housesplit/internal/cache"
	"housesplit/internal/core"
	"housesplit/internal/ledger"
	"housesplit/internal/metrics"
	"housesplit/internal/slots"
)

type fakeStore struct {
	mu      sync.Mutex
	blocks  core.Blocks
	loadErr error
	saveErr error
	ref     string
	loads   int32
	saved   []core.Blocks
	block   chan struct{}
}

func (f *fakeStore) Load(ctx context.Context) (core.Blocks, error) {
	atomic.AddInt32(&f.loads, 1)
	if f.block != nil {
		<-f.block
	}
	return f.blocks, f.loadErr
}

func (f *fakeStore) Save(ctx context.Context, b core.Blocks) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, b)
	return f.ref, nil
}

type fakePublisher struct {
	ids []int64
	err error
}

func (p *fakePublisher) PublishSnapshotSync(ctx context.Context, id int64) error {
	p.ids = append(p.ids, id)
	return p.err
}

func TestSplitService_Calculate(t *testing.T) {
	svc := NewSplitService(&fakeStore{}, Options{Metrics: metrics.New(nil)})
	ctx := context.Background()

	res, err := svc.Calculate(ctx, core.DefaultBlocks())
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if len(res.Settlements) != 2 {
		t.Errorf("settlements = %v, want 2 transfers", res.Settlements)
	}

	tests := []struct {
		name   string
		blocks core.Blocks
		check  func(error) bool
	}{
		{
			name:   "incomplete input",
			blocks: core.Blocks{Families: "A: x", Stays: "x,1"},
			check:  func(err error) bool { return errors.Is(err, ErrIncompleteInput) },
		},
		{
			name:   "unknown member",
			blocks: core.Blocks{Families: "A: x", Stays: "y,1", Expenses: "A,Food,10"},
			check: func(err error) bool {
				var um *core.UnknownMemberError
				return errors.As(err, &um)
			},
		},
		{
			name:   "unknown family",
			blocks: core.Blocks{Families: "A: x", Stays: "x,1", Expenses: "B,Food,10"},
			check: func(err error) bool {
				var uf *core.UnknownFamilyError
				return errors.As(err, &uf)
			},
		},
		{
			name:   "no stays",
			blocks: core.Blocks{Families: "A: x", Stays: "x,0", Expenses: "A,Food,10"},
			check:  func(err error) bool { return errors.Is(err, core.ErrNoStays) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.Calculate(ctx, tt.blocks)
			if res != nil {
				t.Errorf("expected nil result, got %+v", res)
			}
			if !tt.check(err) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestSplitService_CalculateRecoversPanic(t *testing.T) {
	svc := NewSplitService(&fakeStore{}, Options{})
	svc.calculate = func(core.Blocks) (*ledger.Result, error) {
		panic("boom")
	}

	res, err := svc.Calculate(context.Background(), core.DefaultBlocks())
	if res != nil || !errors.Is(err, ErrInternal) {
		t.Fatalf("Calculate() = %v, %v; want nil, ErrInternal", res, err)
	}
}

func TestSplitService_CalculateHidesUnexpectedErrors(t *testing.T) {
	svc := NewSplitService(&fakeStore{}, Options{})
	svc.calculate = func(core.Blocks) (*ledger.Result, error) {
		return nil, errors.New("disk on fire")
	}

	if _, err := svc.Calculate(context.Background(), core.DefaultBlocks()); !errors.Is(err, ErrInternal) {
		t.Fatalf("err = %v, want ErrInternal", err)
	}
}

func TestSplitService_CalculateUsesCache(t *testing.T) {
	calls := 0
	svc := NewSplitService(&fakeStore{}, Options{Cache: cache.NewLRUCache[*ledger.Result](8, time.Minute)})
	svc.calculate = func(b core.Blocks) (*ledger.Result, error) {
		calls++
		return ledger.Calculate(b)
	}

	ctx := context.Background()
	first, err := svc.Calculate(ctx, core.DefaultBlocks())
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	second, err := svc.Calculate(ctx, core.DefaultBlocks())
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if first == second || !reflect.DeepEqual(first, second) {
		t.Fatalf("cached call should return an equal copy")
	}

	second.Balances["Adams"] = 0
	second.Settlements[0].Amount = 0
	third, err := svc.Calculate(ctx, core.DefaultBlocks())
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if calls != 1 || !reflect.DeepEqual(first, third) {
		t.Errorf("a caller's changes leaked into the cache: %+v", third.Balances)
	}
}

func TestSplitService_Load(t *testing.T) {
	saved := core.Blocks{Families: "A: x", Stays: "x,1", Expenses: "A,Food,10"}

	tests := []struct {
		name          string
		store         *fakeStore
		want          core.Blocks
		wantFromStore bool
		wantWarning   bool
	}{
		{"saved data", &fakeStore{blocks: saved}, saved, true, false},
		{"nothing saved", &fakeStore{loadErr: slots.ErrNoSavedData}, core.DefaultBlocks(), false, false},
		{"store unreachable", &fakeStore{loadErr: errors.New("timeout")}, core.DefaultBlocks(), false, true},
		{"blank save", &fakeStore{}, core.DefaultBlocks(), true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewSplitService(tt.store, Options{Backend: "fake"})
			got := svc.Load(context.Background())
			if got.Blocks != tt.want {
				t.Errorf("Blocks = %+v, want %+v", got.Blocks, tt.want)
			}
			if got.FromStore != tt.wantFromStore {
				t.Errorf("FromStore = %v, want %v", got.FromStore, tt.wantFromStore)
			}
			if (got.Warning != "") != tt.wantWarning {
				t.Errorf("Warning = %q", got.Warning)
			}
		})
	}
}

func TestSplitService_LoadCollapsesConcurrentCalls(t *testing.T) {
	store := &fakeStore{blocks: core.DefaultBlocks(), block: make(chan struct{})}
	svc := NewSplitService(store, Options{})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.Load(context.Background())
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(store.block)
	wg.Wait()

	if n := atomic.LoadInt32(&store.loads); n < 1 || n > 5 {
		t.Errorf("loads = %d", n)
	}
}

func TestSplitService_Save(t *testing.T) {
	b := core.DefaultBlocks()

	t.Run("sqlite ref publishes sync", func(t *testing.T) {
		pub := &fakePublisher{}
		store := &fakeStore{ref: "sqlite:42"}
		svc := NewSplitService(store, Options{Backend: "sqlite", Publisher: pub})

		ref, err := svc.Save(context.Background(), b)
		if err != nil || ref != "sqlite:42" {
			t.Fatalf("Save() = %q, %v", ref, err)
		}
		if len(pub.ids) != 1 || pub.ids[0] != 42 {
			t.Errorf("published = %v, want [42]", pub.ids)
		}
		if len(store.saved) != 1 || store.saved[0] != b {
			t.Errorf("saved = %+v", store.saved)
		}
	})

	t.Run("publish failure does not fail save", func(t *testing.T) {
		pub := &fakePublisher{err: errors.New("broker down")}
		svc := NewSplitService(&fakeStore{ref: "sqlite:7"}, Options{Publisher: pub})

		if _, err := svc.Save(context.Background(), b); err != nil {
			t.Fatalf("Save: %v", err)
		}
	})

	t.Run("non sqlite ref does not publish", func(t *testing.T) {
		pub := &fakePublisher{}
		svc := NewSplitService(&fakeStore{ref: "mem:1"}, Options{Publisher: pub})

		if _, err := svc.Save(context.Background(), b); err != nil {
			t.Fatalf("Save: %v", err)
		}
		if len(pub.ids) != 0 {
			t.Errorf("published = %v, want none", pub.ids)
		}
	})

	t.Run("store error", func(t *testing.T) {
		svc := NewSplitService(&fakeStore{saveErr: errors.New("quota")}, Options{})
		if _, err := svc.Save(context.Background(), b); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestSplitService_Ping(t *testing.T) {
	svc := NewSplitService(&fakeStore{}, Options{})
	if err := svc.Ping(context.Background()); err != nil {
		t.Errorf("Ping() = %v", err)
	}
}
