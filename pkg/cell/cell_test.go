package cell

import "testing"

func TestDeriveMemoizesUntilDependencyChanges(t *testing.T) {
	base := New(2)
	runs := 0
	doubled := Derive(func(g *Getter) int {
		runs++
		return Read(g, base) * 2
	})

	if got := doubled.Get(); got != 4 {
		t.Fatalf("expected 4, got %d", got)
	}
	doubled.Get()
	if runs != 1 {
		t.Fatalf("expected one computation, got %d", runs)
	}

	base.Set(5)
	if got := doubled.Get(); got != 10 {
		t.Fatalf("expected 10, got %d", got)
	}
	if runs != 2 {
		t.Fatalf("expected recomputation after write, got %d runs", runs)
	}
}

func TestDeriveTracksDynamicDependencies(t *testing.T) {
	useLeft := New(true)
	left := New("left")
	right := New("right")
	pick := Derive(func(g *Getter) string {
		if Read(g, useLeft) {
			return Read(g, left)
		}
		return Read(g, right)
	})

	if pick.Get() != "left" {
		t.Fatalf("expected left")
	}
	before := pick.Version()
	right.Set("RIGHT")
	if pick.Version() != before {
		t.Fatalf("expected untracked source to leave derivation untouched")
	}
	useLeft.Set(false)
	if pick.Get() != "RIGHT" {
		t.Fatalf("expected RIGHT, got %q", pick.Get())
	}
}

func TestWithEqualStopsDownstreamRecomputation(t *testing.T) {
	n := New(1)
	positive := Derive(func(g *Getter) bool { return Read(g, n) > 0 }, WithEqual(Same[bool]))
	runs := 0
	label := Derive(func(g *Getter) string {
		runs++
		if Read(g, positive) {
			return "positive"
		}
		return "non-positive"
	})

	label.Get()
	n.Set(7)
	label.Get()
	if runs != 1 {
		t.Fatalf("expected downstream to skip recomputation, got %d runs", runs)
	}
	n.Set(-1)
	if label.Get() != "non-positive" {
		t.Fatalf("unexpected label %q", label.Get())
	}
}

func TestDeriveDetectsCycles(t *testing.T) {
	var self *Derived[int]
	self = Derive(func(g *Getter) int { return Read[int](g, self) + 1 })
	defer func() {
		if recover() == nil {
			t.Fatalf("expected cyclic derivation to panic")
		}
	}()
	self.Get()
}

func TestStoreBatchNotifiesOnce(t *testing.T) {
	store := NewStore()
	a := NewIn(store, 1)
	b := NewIn(store, 2)
	sum := Derive(func(g *Getter) int { return Read(g, a) + Read(g, b) })

	var seen []int
	unsubscribe := store.Subscribe(sum, func() { seen = append(seen, sum.Get()) })
	defer unsubscribe()

	store.Batch(func() {
		a.Set(10)
		b.Set(20)
		if len(seen) != 0 {
			t.Fatalf("expected no notification inside batch")
		}
	})
	if len(seen) != 1 || seen[0] != 30 {
		t.Fatalf("expected a single notification with 30, got %v", seen)
	}

	a.Set(11)
	if len(seen) != 2 || seen[1] != 31 {
		t.Fatalf("expected unbatched write to notify, got %v", seen)
	}
}

func TestStoreSkipsUnchangedSubscriptions(t *testing.T) {
	store := NewStore()
	a := NewIn(store, 1)
	other := NewIn(store, "x")
	calls := 0
	store.Subscribe(a, func() { calls++ })

	other.Set("y")
	if calls != 0 {
		t.Fatalf("expected no call for unrelated write, got %d", calls)
	}
}

func TestStoreUnsubscribe(t *testing.T) {
	store := NewStore()
	a := NewIn(store, 1)
	calls := 0
	unsubscribe := store.Subscribe(a, func() { calls++ })
	a.Set(2)
	unsubscribe()
	unsubscribe()
	a.Set(3)
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestStoreSubscriberWritesAreFlushed(t *testing.T) {
	store := NewStore()
	source := NewIn(store, 1)
	mirror := NewIn(store, 0)
	store.Subscribe(source, func() { mirror.Set(source.Get() * 100) })

	var mirrored []int
	store.Subscribe(mirror, func() { mirrored = append(mirrored, mirror.Get()) })

	source.Set(3)
	if len(mirrored) != 1 || mirrored[0] != 300 {
		t.Fatalf("expected write-back to reach second subscriber, got %v", mirrored)
	}
}

func TestNilStoreIsInert(t *testing.T) {
	var store *Store
	c := New(1)
	ran := false
	store.Batch(func() {
		ran = true
		c.Set(2)
	})
	if !ran || c.Get() != 2 {
		t.Fatalf("expected nil store batch to run fn")
	}
	store.Subscribe(c, func() {})()
}
