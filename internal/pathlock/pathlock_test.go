package pathlock

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestLockPathIsStableAndOutsideDestination(t *testing.T) {
	lockDir := t.TempDir()
	dest := t.TempDir()
	l := New(lockDir)

	first, err := l.LockPath(dest)
	if err != nil {
		t.Fatal(err)
	}
	second, err := l.LockPath(dest + string(filepath.Separator) + ".")
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("equivalent paths map to different locks: %s vs %s", first, second)
	}
	if filepath.Dir(first) != lockDir {
		t.Errorf("lock file %s not in lock dir %s", first, lockDir)
	}

	other, _ := l.LockPath(t.TempDir())
	if other == first {
		t.Error("different destinations share a lock")
	}
}

func TestAcquireSerializes(t *testing.T) {
	l := New(t.TempDir())
	dest := t.TempDir()

	var active, maxActive int32
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			release, err := l.Acquire(ctx, dest)
			if err != nil {
				t.Errorf("acquire failed: %v", err)
				return
			}
			n := atomic.AddInt32(&active, 1)
			for {
				m := atomic.LoadInt32(&maxActive)
				if n <= m || atomic.CompareAndSwapInt32(&maxActive, m, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt32(&active, -1)
			if err := release(); err != nil {
				t.Errorf("release failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if maxActive != 1 {
		t.Errorf("expected exclusive access, saw %d holders", maxActive)
	}
}

func TestAcquireTimeout(t *testing.T) {
	l := New(t.TempDir())
	dest := t.TempDir()

	release, err := l.Acquire(context.Background(), dest)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = release() }()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if _, err := New(l.dir).Acquire(ctx, dest); !errors.Is(err, ErrTimeout) {
		t.Errorf("expected ErrTimeout, got %v", err)
	}
}

type stubLock struct {
	err error
}

func (s stubLock) TryLockContext(context.Context, time.Duration) (bool, error) { return false, s.err }
func (s stubLock) Unlock() error                                               { return nil }

type stubFactory struct {
	lock stubLock
}

func (f stubFactory) New(string) FileLock { return f.lock }

func TestAcquireLockError(t *testing.T) {
	failure := errors.New("lock failure")
	l := New(t.TempDir()).WithFactory(stubFactory{lock: stubLock{err: failure}})

	_, err := l.Acquire(context.Background(), t.TempDir())
	if !errors.Is(err, failure) {
		t.Errorf("expected lock failure, got %v", err)
	}
}

func TestDefaultDirHonorsXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/xdg")
	if got := DefaultDir(); got != filepath.Join("/xdg", "nanoexport", "locks") {
		t.Errorf("DefaultDir() = %s", got)
	}
}
