package cache

import (
	"fmt"
	"sync"
	"testing"
)

func TestCacheGetSet(t *testing.T) {
	c := New[string, int](0)
	if _, ok := c.Get("a"); ok {
		t.Error("Get on empty cache should miss")
	}
	c.Set("a", 1)
	c.Set("b", 2)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %v, %v, want 1, true", v, ok)
	}
	c.Set("a", 3)
	if v, _ := c.Get("a"); v != 3 {
		t.Errorf("Get(a) after overwrite = %v, want 3", v)
	}
	st := c.Stats()
	if st.Len != 2 || st.Hits != 2 || st.Misses != 1 {
		t.Errorf("Stats() = %+v, want len 2, 2 hits, 1 miss", st)
	}
}

func TestCacheDelete(t *testing.T) {
	c := New[int, string](0)
	c.Set(1, "one")
	if !c.Delete(1) {
		t.Error("Delete(1) = false, want true")
	}
	if c.Delete(1) {
		t.Error("second Delete(1) = true, want false")
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := New[int, int](4)
	for i := 0; i < 4; i++ {
		c.Set(i, i)
	}
	// Touch 0 so 1 and 2 are the oldest.
	c.Get(0)
	c.Set(4, 4)

	if got := c.Len(); got != 3 {
		t.Fatalf("Len() after eviction = %d, want 3", got)
	}
	for _, k := range []int{0, 3, 4} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("Get(%d) missed, want kept", k)
		}
	}
	for _, k := range []int{1, 2} {
		if _, ok := c.Get(k); ok {
			t.Errorf("Get(%d) hit, want evicted", k)
		}
	}
}

func TestCacheConcurrent(t *testing.T) {
	c := New[string, int](32)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				key := fmt.Sprintf("k%d", (g*100+i)%50)
				c.Set(key, i)
				c.Get(key)
			}
		}(g)
	}
	wg.Wait()
	if got := c.Len(); got > 32 {
		t.Errorf("Len() = %d, want <= 32", got)
	}
}
