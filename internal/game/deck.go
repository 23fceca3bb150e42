package game

// Deck is one player's ordered draw pile. The front of the slice is the top
// of the deck. Draw on an empty deck returns nil; there is no capacity limit.
type Deck struct {
	cards []*Card
	rng   Random
}

func NewDeck(rng Random) *Deck {
	return &Deck{rng: rng}
}

// Initialize replaces the deck contents and shuffles.
func (d *Deck) Initialize(cards []*Card) {
	d.cards = make([]*Card, 0, len(cards))
	for _, c := range cards {
		if c != nil {
			d.cards = append(d.cards, c)
		}
	}
	d.Shuffle()
}

// Draw removes and returns the top card, or nil if the deck is empty.
func (d *Deck) Draw() *Card {
	if len(d.cards) == 0 {
		return nil
	}
	card := d.cards[0]
	d.cards[0] = nil
	d.cards = d.cards[1:]
	return card
}

// DrawMany draws up to n cards, stopping early if the deck runs out.
func (d *Deck) DrawMany(n int) []*Card {
	var drawn []*Card
	for i := 0; i < n; i++ {
		card := d.Draw()
		if card == nil {
			break
		}
		drawn = append(drawn, card)
	}
	return drawn
}

// Return puts a card back in the deck and reshuffles.
func (d *Deck) Return(card *Card) {
	if card == nil {
		return
	}
	d.cards = append(d.cards, card)
	d.Shuffle()
}

// ReturnMany puts cards back in the deck and reshuffles once.
func (d *Deck) ReturnMany(cards []*Card) {
	added := 0
	for _, c := range cards {
		if c != nil {
			d.cards = append(d.cards, c)
			added++
		}
	}
	if added > 0 {
		d.Shuffle()
	}
}

// Shuffle applies an in-place Fisher–Yates shuffle.
func (d *Deck) Shuffle() {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rng.Intn(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// ReplaceAt swaps the card at index without touching the rest of the order.
// Out-of-range indices and nil cards are ignored; the result reports
// whether a replacement happened.
func (d *Deck) ReplaceAt(index int, card *Card) bool {
	if index < 0 || index >= len(d.cards) || card == nil {
		return false
	}
	d.cards[index] = card
	return true
}

// Len returns the number of cards remaining in the deck.
func (d *Deck) Len() int {
	return len(d.cards)
}

func (d *Deck) IsEmpty() bool {
	return len(d.cards) == 0
}

// AllCards returns a copy of the deck contents, top first.
func (d *Deck) AllCards() []*Card {
	return append([]*Card(nil), d.cards...)
}

// Count returns how many copies of the card with id are in the deck.
func (d *Deck) Count(id string) int {
	n := 0
	for _, c := range d.cards {
		if c.ID == id {
			n++
		}
	}
	return n
}

// Clear empties the deck.
func (d *Deck) Clear() {
	d.cards = nil
}
