package game

// TransformKind distinguishes evolution from degradation.
type TransformKind int

const (
	TransformEvolve TransformKind = iota
	TransformDegrade
)

func (k TransformKind) String() string {
	if k == TransformDegrade {
		return "Degrade"
	}
	return "Evolve"
}

// Transformation records one in-place deck replacement.
type Transformation struct {
	Index int
	From  *Card
	To    *Card
	Kind  TransformKind
}

// EvolutionEngine replaces deck cards whose statistics meet their
// evolution or degradation conditions.
type EvolutionEngine struct {
	stats *StatsTracker
}

func NewEvolutionEngine(stats *StatsTracker) *EvolutionEngine {
	return &EvolutionEngine{stats: stats}
}

// Sweep checks every card in the deck and applies replacements in place.
// Evolution wins over degradation: a card that evolves is not considered
// for degradation in the same sweep. Decisions are made on the deck as it
// was before the sweep, so a freshly evolved card is not re-examined.
func (e *EvolutionEngine) Sweep(deck *Deck) []Transformation {
	cards := deck.AllCards()
	evolved := make([]bool, len(cards))
	var result []Transformation

	for i, c := range cards {
		if e.stats.CheckAllConditions(c) && deck.ReplaceAt(i, c.EvolvesTo) {
			evolved[i] = true
			result = append(result, Transformation{Index: i, From: c, To: c.EvolvesTo, Kind: TransformEvolve})
		}
	}
	for i, c := range cards {
		if evolved[i] {
			continue
		}
		if e.stats.CheckDegradation(c) && deck.ReplaceAt(i, c.DegradesTo) {
			result = append(result, Transformation{Index: i, From: c, To: c.DegradesTo, Kind: TransformDegrade})
		}
	}
	return result
}

// ProcessEvolutions sweeps the deck and reports whether anything changed.
func (e *EvolutionEngine) ProcessEvolutions(deck *Deck) bool {
	return len(e.Sweep(deck)) > 0
}
