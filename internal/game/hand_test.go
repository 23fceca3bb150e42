package game

import "testing"

func TestHandCapacity(t *testing.T) {
	h := NewHand(3)
	cards := []*Card{
		plainCard("a", AttributeHope, Effect{}),
		plainCard("b", AttributeHope, Effect{}),
		plainCard("c", AttributeHope, Effect{}),
		plainCard("d", AttributeHope, Effect{}),
		plainCard("e", AttributeHope, Effect{}),
	}

	for i, c := range cards {
		added := h.TryAdd(c)
		if i < 3 && !added {
			t.Fatalf("TryAdd #%d should succeed", i)
		}
		if i >= 3 && added {
			t.Fatalf("TryAdd #%d should fail on a full hand", i)
		}
		if h.Len() > h.Max() {
			t.Fatalf("hand size %d exceeds max %d", h.Len(), h.Max())
		}
	}

	before := h.Cards()
	if h.TryAdd(cards[4]) {
		t.Fatal("full hand accepted a card")
	}
	after := h.Cards()
	for i := range before {
		if before[i] != after[i] {
			t.Fatal("failed TryAdd mutated the hand")
		}
	}
}

func TestHandTryAddMany(t *testing.T) {
	h := NewHand(2)
	a := plainCard("a", AttributeHope, Effect{})
	b := plainCard("b", AttributeHope, Effect{})
	c := plainCard("c", AttributeHope, Effect{})

	rest := h.TryAddMany([]*Card{a, b, c})
	if len(rest) != 1 || rest[0] != c {
		t.Fatalf("expected c left over, got %v", rest)
	}
	if !h.IsFull() {
		t.Error("hand should be full")
	}
}

func TestRemoveSelectedClearsSelection(t *testing.T) {
	a := plainCard("a", AttributeHope, Effect{})
	b := plainCard("b", AttributeHope, Effect{})
	h := NewHand(3)
	h.TryAdd(a)
	h.TryAdd(b)

	h.SelectByCard(b)
	if h.SelectedIndex() != 1 {
		t.Fatalf("expected selection 1, got %d", h.SelectedIndex())
	}
	if !h.TryRemove(b) {
		t.Fatal("TryRemove(b) failed")
	}
	if h.SelectedIndex() != -1 || h.Selected() != nil {
		t.Errorf("selection should reset, got %d", h.SelectedIndex())
	}
}

func TestRemoveBeforeSelectionShiftsIndex(t *testing.T) {
	a := plainCard("a", AttributeHope, Effect{})
	b := plainCard("b", AttributeHope, Effect{})
	c := plainCard("c", AttributeHope, Effect{})
	h := NewHand(3)
	h.TryAdd(a)
	h.TryAdd(b)
	h.TryAdd(c)

	h.SelectAt(2)
	if !h.TryRemove(a) {
		t.Fatal("TryRemove(a) failed")
	}
	if h.SelectedIndex() != 1 {
		t.Fatalf("expected selection to shift to 1, got %d", h.SelectedIndex())
	}
	if h.Selected() != c {
		t.Errorf("selection should still denote c, got %v", h.Selected())
	}

	// Removing after the selection leaves it alone.
	h.SelectAt(0)
	h.TryRemove(c)
	if h.SelectedIndex() != 0 || h.Selected() != b {
		t.Errorf("expected b still selected at 0, got %d (%v)", h.SelectedIndex(), h.Selected())
	}
}

func TestRemoveMissingCard(t *testing.T) {
	h := NewHand(3)
	h.TryAdd(plainCard("a", AttributeHope, Effect{}))
	if h.TryRemove(plainCard("x", AttributeHope, Effect{})) {
		t.Error("removing an absent card should fail")
	}
	if h.TryRemoveAt(5) {
		t.Error("removing an out-of-range index should fail")
	}
	if h.Len() != 1 {
		t.Errorf("hand changed: %d cards", h.Len())
	}
}

func TestSelectOutOfRangeDeselects(t *testing.T) {
	h := NewHand(3)
	h.TryAdd(plainCard("a", AttributeHope, Effect{}))
	h.SelectAt(0)

	h.SelectAt(3)
	if h.SelectedIndex() != -1 {
		t.Errorf("out-of-range select should deselect, got %d", h.SelectedIndex())
	}
	h.SelectAt(0)
	h.SelectAt(-2)
	if h.SelectedIndex() != -1 {
		t.Errorf("negative select should deselect, got %d", h.SelectedIndex())
	}
	h.SelectAt(0)
	h.SelectByCard(plainCard("x", AttributeHope, Effect{}))
	if h.Selected() != nil {
		t.Error("selecting an absent card should deselect")
	}
}

func TestClearResetsSelection(t *testing.T) {
	h := NewHand(3)
	h.TryAdd(plainCard("a", AttributeHope, Effect{}))
	h.SelectAt(0)

	h.Clear()
	if h.Len() != 0 || h.SelectedIndex() != -1 {
		t.Errorf("expected empty hand with no selection, got %d cards, selected %d", h.Len(), h.SelectedIndex())
	}
}

func TestTakeAll(t *testing.T) {
	a := plainCard("a", AttributeHope, Effect{})
	h := NewHand(3)
	h.TryAdd(a)
	h.SelectAt(0)

	cards := h.TakeAll()
	if len(cards) != 1 || cards[0] != a {
		t.Fatalf("unexpected TakeAll result %v", cards)
	}
	if !h.IsEmpty() || h.SelectedIndex() != -1 {
		t.Error("hand should be empty with no selection")
	}
}

func TestGetRandomCard(t *testing.T) {
	h := NewHand(3)
	if h.GetRandomCard(seeded()) != nil {
		t.Fatal("empty hand should return nil")
	}
	a := plainCard("a", AttributeHope, Effect{})
	b := plainCard("b", AttributeHope, Effect{})
	h.TryAdd(a)
	h.TryAdd(b)
	if got := h.GetRandomCard(&fixedRandom{ints: []int{1}}); got != b {
		t.Errorf("expected b, got %v", got)
	}
}

func TestMentalPowerBounds(t *testing.T) {
	mp := NewMentalPower(20)
	if mp.Value() != 20 {
		t.Fatalf("expected full pool, got %d", mp.Value())
	}
	if !mp.TryConsume(5) || mp.Value() != 15 {
		t.Fatalf("expected 15 after consuming 5, got %d", mp.Value())
	}
	if mp.TryConsume(16) {
		t.Fatal("consuming more than available should fail")
	}
	if mp.TryConsume(-1) {
		t.Fatal("consuming a negative amount should fail")
	}
	if got := mp.Restore(10); got != 5 || mp.Value() != 20 {
		t.Fatalf("restore should cap at max: restored %d, value %d", got, mp.Value())
	}
	mp.Set(-4)
	if mp.Value() != 0 {
		t.Errorf("Set should clamp to 0, got %d", mp.Value())
	}
	mp.Set(99)
	if mp.Value() != 20 {
		t.Errorf("Set should clamp to max, got %d", mp.Value())
	}
}
