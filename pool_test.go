package imgkit

// Notes:
// - Pools are built with withRenderer so no renderer is ever spawned; all
//   pooled converters share the mock, which is fine since nothing renders
// - Size bounds depend on GOMAXPROCS; we test the clamping, not exact values

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"
)

func newTestPool(n int) *ConverterPool {
	return NewConverterPool(n, withRenderer(&mockRenderer{}), WithExecutable("wkhtmltoimage"))
}

// ---------------------------------------------------------------------------
// TestConverterPool - Acquire and release
// ---------------------------------------------------------------------------

func TestConverterPool_SizeClamped(t *testing.T) {
	t.Parallel()

	for _, n := range []int{-3, 0} {
		if got := NewConverterPool(n).Size(); got != 1 {
			t.Errorf("NewConverterPool(%d).Size() = %d, want 1", n, got)
		}
	}
	if got := NewConverterPool(4).Size(); got != 4 {
		t.Errorf("Size() = %d, want 4", got)
	}
}

func TestConverterPool_CreatesLazilyUpToSize(t *testing.T) {
	t.Parallel()

	pool := newTestPool(2)
	defer pool.Close()

	ctx := context.Background()
	a, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	b, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if a == b {
		t.Error("two acquires returned the same converter")
	}

	pool.Release(a)
	c, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if c != a {
		t.Error("Acquire() after Release() should reuse the released converter")
	}
}

func TestConverterPool_AcquireBlocksUntilRelease(t *testing.T) {
	t.Parallel()

	pool := newTestPool(1)
	defer pool.Close()

	ctx := context.Background()
	conv, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	got := make(chan *Converter, 1)
	go func() {
		c, _ := pool.Acquire(ctx)
		got <- c
	}()

	select {
	case <-got:
		t.Fatal("Acquire() returned while the only converter was held")
	case <-time.After(50 * time.Millisecond):
	}

	pool.Release(conv)
	select {
	case c := <-got:
		if c != conv {
			t.Error("waiter received a different converter")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Acquire() did not return after Release()")
	}
}

func TestConverterPool_AcquireHonorsContext(t *testing.T) {
	t.Parallel()

	pool := newTestPool(1)
	defer pool.Close()

	if _, err := pool.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := pool.Acquire(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Acquire() error = %v, want context.DeadlineExceeded", err)
	}
}

func TestConverterPool_CreationErrorFreesSlot(t *testing.T) {
	t.Parallel()

	pool := NewConverterPool(1, withRenderer(&mockRenderer{}), WithExecutable("x"), WithDefaultFormat("bmp"))
	defer pool.Close()

	for i := 0; i < 2; i++ {
		if _, err := pool.Acquire(context.Background()); !errors.Is(err, ErrUnknownFormat) {
			t.Fatalf("Acquire() #%d error = %v, want ErrUnknownFormat", i, err)
		}
	}
}

// ---------------------------------------------------------------------------
// TestConverterPool - Close
// ---------------------------------------------------------------------------

func TestConverterPool_Close(t *testing.T) {
	t.Parallel()

	r := &mockRenderer{}
	pool := NewConverterPool(2, withRenderer(r), WithExecutable("wkhtmltoimage"))

	conv, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if err := pool.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !r.closed {
		t.Error("Close() did not close created converters")
	}
	if err := pool.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	// Release after Close must not panic
	pool.Release(conv)

	if _, err := pool.Acquire(context.Background()); !errors.Is(err, ErrPoolClosed) {
		t.Errorf("Acquire() after Close() error = %v, want ErrPoolClosed", err)
	}
}

// ---------------------------------------------------------------------------
// TestResolvePoolSize
// ---------------------------------------------------------------------------

func TestResolvePoolSize(t *testing.T) {
	t.Parallel()

	if got := ResolvePoolSize(3); got != 3 {
		t.Errorf("ResolvePoolSize(3) = %d, want 3", got)
	}

	want := runtime.GOMAXPROCS(0) / cpuDivisor
	want = max(MinPoolSize, min(MaxPoolSize, want))
	for _, n := range []int{0, -1} {
		if got := ResolvePoolSize(n); got != want {
			t.Errorf("ResolvePoolSize(%d) = %d, want %d", n, got, want)
		}
	}
}
