package game

// Hand is a bounded list of drawn cards with at most one selection.
// Selected is -1 when nothing is selected.
type Hand struct {
	cards    []*Card
	selected int
	max      int
}

func NewHand(maxSize int) *Hand {
	return &Hand{selected: -1, max: maxSize}
}

// TryAdd appends a card. It fails without mutating if the hand is full.
func (h *Hand) TryAdd(card *Card) bool {
	if card == nil || len(h.cards) >= h.max {
		return false
	}
	h.cards = append(h.cards, card)
	return true
}

// TryAddMany adds cards until the hand fills and returns the ones that did
// not fit.
func (h *Hand) TryAddMany(cards []*Card) []*Card {
	for i, c := range cards {
		if !h.TryAdd(c) {
			return cards[i:]
		}
	}
	return nil
}

// TryRemove removes the first occurrence of card.
func (h *Hand) TryRemove(card *Card) bool {
	idx := h.IndexOf(card)
	if idx < 0 {
		return false
	}
	return h.TryRemoveAt(idx)
}

// TryRemoveAt removes the card at index, keeping the selection pointed at
// the same logical card.
func (h *Hand) TryRemoveAt(index int) bool {
	if index < 0 || index >= len(h.cards) {
		return false
	}
	h.cards = append(h.cards[:index], h.cards[index+1:]...)
	switch {
	case index == h.selected:
		h.selected = -1
	case index < h.selected:
		h.selected--
	}
	return true
}

// SelectAt selects the card at index. Out-of-range indices deselect.
func (h *Hand) SelectAt(index int) {
	if index < 0 || index >= len(h.cards) {
		h.selected = -1
		return
	}
	h.selected = index
}

// SelectByCard selects the first occurrence of card, or deselects if absent.
func (h *Hand) SelectByCard(card *Card) {
	h.SelectAt(h.IndexOf(card))
}

func (h *Hand) Deselect() {
	h.selected = -1
}

// SelectedIndex returns the selected index, or -1.
func (h *Hand) SelectedIndex() int {
	return h.selected
}

// Selected returns the selected card, or nil.
func (h *Hand) Selected() *Card {
	if h.selected < 0 || h.selected >= len(h.cards) {
		return nil
	}
	return h.cards[h.selected]
}

// GetRandomCard returns a uniformly chosen card, or nil if the hand is empty.
func (h *Hand) GetRandomCard(rng Random) *Card {
	if len(h.cards) == 0 {
		return nil
	}
	return h.cards[rng.Intn(len(h.cards))]
}

// CardAt returns the card at index, or nil.
func (h *Hand) CardAt(index int) *Card {
	if index < 0 || index >= len(h.cards) {
		return nil
	}
	return h.cards[index]
}

// IndexOf returns the index of the first occurrence of card, or -1.
func (h *Hand) IndexOf(card *Card) int {
	if card == nil {
		return -1
	}
	for i, c := range h.cards {
		if c == card {
			return i
		}
	}
	return -1
}

func (h *Hand) Contains(card *Card) bool {
	return h.IndexOf(card) >= 0
}

// Cards returns a copy of the hand in display order.
func (h *Hand) Cards() []*Card {
	return append([]*Card(nil), h.cards...)
}

func (h *Hand) Len() int {
	return len(h.cards)
}

func (h *Hand) Max() int {
	return h.max
}

func (h *Hand) IsFull() bool {
	return len(h.cards) >= h.max
}

func (h *Hand) IsEmpty() bool {
	return len(h.cards) == 0
}

// Clear empties the hand and the selection together.
func (h *Hand) Clear() {
	h.cards, h.selected = nil, -1
}

// TakeAll clears the hand and returns what it held.
func (h *Hand) TakeAll() []*Card {
	cards := h.cards
	h.Clear()
	return cards
}
