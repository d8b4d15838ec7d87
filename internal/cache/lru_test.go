package cache

import "testing"

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRU[int](2)
	c.Set("a", 1)
	c.Set("b", 2)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected a to be present")
	}
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatal("b should have been evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("a = %d, %v", v, ok)
	}
	if c.Size() != 2 {
		t.Fatalf("Size = %d, want 2", c.Size())
	}
}

func TestLRUOverwriteDeletePurge(t *testing.T) {
	c := NewLRU[string](0)
	c.Set("k", "v1")
	c.Set("k", "v2")
	if v, _ := c.Get("k"); v != "v2" {
		t.Fatalf("k = %q, want v2", v)
	}
	c.Delete("k")
	if c.Size() != 0 {
		t.Fatalf("Size after delete = %d", c.Size())
	}
	c.Set("x", "1")
	c.Purge()
	if _, ok := c.Get("x"); ok {
		t.Fatal("purge left entries behind")
	}
}

func TestMemoize(t *testing.T) {
	c := NewLRU[int](4)
	calls := 0
	compute := func() int { calls++; return 42 }

	for i := 0; i < 3; i++ {
		if v := Memoize[int](c, "answer", compute); v != 42 {
			t.Fatalf("Memoize = %d", v)
		}
	}
	if calls != 1 {
		t.Fatalf("compute called %d times, want 1", calls)
	}
	hits, misses := c.Stats()
	if hits != 2 || misses != 1 {
		t.Fatalf("stats = %d/%d, want 2/1", hits, misses)
	}
}
