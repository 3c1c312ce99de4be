package cache

import (
	"errors"
	"sync"
	"testing"
)

func TestCacheGetSet(t *testing.T) {
	c := New[string, int](2)

	if _, ok := c.Get("a"); ok {
		t.Fatal("empty cache should miss")
	}
	c.Set("a", 1)
	c.Set("b", 2)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v", v, ok)
	}

	// "b" is now least recently used.
	c.Set("c", 3)
	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a should survive, it was used after b")
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}

	c.Set("a", 10)
	if v, _ := c.Get("a"); v != 10 {
		t.Errorf("updated value = %d, want 10", v)
	}
	if c.Len() != 2 {
		t.Errorf("update changed Len to %d", c.Len())
	}
}

func TestCacheGetOrCreate(t *testing.T) {
	c := New[int, string](4)
	calls := 0
	create := func() (string, error) {
		calls++
		return "v", nil
	}

	v, hit, err := c.GetOrCreate(1, create)
	if err != nil || hit || v != "v" {
		t.Fatalf("first GetOrCreate = %q, %v, %v", v, hit, err)
	}
	v, hit, err = c.GetOrCreate(1, create)
	if err != nil || !hit || v != "v" {
		t.Fatalf("second GetOrCreate = %q, %v, %v", v, hit, err)
	}
	if calls != 1 {
		t.Errorf("create called %d times, want 1", calls)
	}

	errBuild := errors.New("build failed")
	if _, _, err := c.GetOrCreate(2, func() (string, error) { return "", errBuild }); !errors.Is(err, errBuild) {
		t.Errorf("err = %v, want errBuild", err)
	}
	if _, ok := c.Get(2); ok {
		t.Error("failed create must not be cached")
	}

	s := c.Stats()
	if s.Hits != 1 || s.Misses != 3 || s.Len != 1 || s.Capacity != 4 {
		t.Errorf("Stats = %+v", s)
	}
	if got := s.HitRate(); got != 0.25 {
		t.Errorf("HitRate = %v, want 0.25", got)
	}
}

func TestCacheDeleteClear(t *testing.T) {
	c := New[int, int](0)
	if c.Stats().Capacity != 1 {
		t.Errorf("capacity = %d, want 1", c.Stats().Capacity)
	}
	c.Set(1, 1)
	c.Set(2, 2)
	if c.Stats().Evictions != 1 {
		t.Errorf("Evictions = %d, want 1", c.Stats().Evictions)
	}
	if !c.Delete(2) || c.Delete(2) {
		t.Error("Delete should report presence exactly once")
	}
	c.Set(3, 3)
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len after Clear = %d", c.Len())
	}
	c.Set(4, 4)
	if v, ok := c.Get(4); !ok || v != 4 {
		t.Error("cache unusable after Clear")
	}
}

func TestCacheConcurrent(t *testing.T) {
	c := New[int, int](8)
	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 200 {
				k := (g + i) % 16
				v, _, _ := c.GetOrCreate(k, func() (int, error) { return k * 2, nil })
				if v != k*2 {
					t.Errorf("value for %d = %d", k, v)
					return
				}
			}
		}()
	}
	wg.Wait()
	if c.Len() > 8 {
		t.Errorf("Len = %d exceeds capacity", c.Len())
	}
}
