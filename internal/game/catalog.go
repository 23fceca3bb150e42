package game

import (
	"fmt"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/peterkuimelis/voidred/data"
)

const (
	DefaultScoreMultiplier   = 1.0
	DefaultCollapseThreshold = 3
)

// CatalogFile represents the top-level YAML structure.
type CatalogFile struct {
	Cards  []CardEntry  `yaml:"cards"`
	Themes []ThemeEntry `yaml:"themes"`
	Decks  []DeckEntry  `yaml:"decks"`
}

// EffectEntry is an effect vector in the YAML file.
type EffectEntry struct {
	Forgiveness float64 `yaml:"forgiveness"`
	Rejection   float64 `yaml:"rejection"`
	Blank       float64 `yaml:"blank"`
}

func (e EffectEntry) effect() Effect {
	return Effect{Forgiveness: e.Forgiveness, Rejection: e.Rejection, Blank: e.Blank}
}

// validate requires every component to lie in [0,1].
func (e EffectEntry) validate() error {
	for _, c := range []struct {
		name string
		v    float64
	}{{"forgiveness", e.Forgiveness}, {"rejection", e.Rejection}, {"blank", e.Blank}} {
		if !(c.v >= 0 && c.v <= 1) {
			return fmt.Errorf("effect %s %v outside [0,1]", c.name, c.v)
		}
	}
	return nil
}

// CardEntry represents a single card definition in the YAML file.
type CardEntry struct {
	ID                string           `yaml:"id"`
	Name              string           `yaml:"name"`
	Description       string           `yaml:"description"`
	Attribute         string           `yaml:"attribute"`
	Effect            EffectEntry      `yaml:"effect"`
	ScoreMultiplier   *float64         `yaml:"score_multiplier"`
	CollapseThreshold *int             `yaml:"collapse_threshold"`
	EvolvesTo         string           `yaml:"evolves_to"`
	Evolution         []ConditionEntry `yaml:"evolution"`
	DegradesTo        string           `yaml:"degrades_to"`
	Degradation       []ConditionEntry `yaml:"degradation"`
}

// ConditionEntry represents one evolution or degradation condition.
type ConditionEntry struct {
	Type      string `yaml:"type"`
	PlayStyle string `yaml:"play_style"`
	Count     int    `yaml:"count"`
	Expr      string `yaml:"expr"`
}

// ThemeEntry represents a theme definition in the YAML file.
type ThemeEntry struct {
	Title       string             `yaml:"title"`
	Target      *EffectEntry       `yaml:"target"`
	Multipliers map[string]float64 `yaml:"multipliers"`
}

// DeckEntry represents a fixed starter deck in the YAML file.
type DeckEntry struct {
	Name  string          `yaml:"name"`
	Cards []DeckCardEntry `yaml:"cards"`
}

// DeckCardEntry represents a card and its count in a starter deck.
type DeckCardEntry struct {
	ID    string `yaml:"id"`
	Count int    `yaml:"count"`
}

// Theme is an immutable round theme. Depending on the scoring policy it is
// read either as a target vector or as an attribute multiplier table.
type Theme struct {
	Title       string
	Target      Effect
	HasTarget   bool
	Multipliers map[Attribute]float64
}

// Multiplier returns the theme's multiplier for a, defaulting to 1.0.
func (t *Theme) Multiplier(a Attribute) float64 {
	if m, ok := t.Multipliers[a]; ok {
		return m
	}
	return 1.0
}

func (t *Theme) String() string {
	if t == nil {
		return "<none>"
	}
	return t.Title
}

// Catalog bundles everything loaded from one catalog file.
type Catalog struct {
	Cards  *CardCatalog
	Themes *ThemeCatalog
	decks  []DeckEntry
}

// LoadCatalog reads and parses a catalog file. An empty path loads the
// catalog embedded in the binary.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(raw)
}

// DefaultCatalog parses the embedded catalog.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(data.Catalog)
}

// ParseCatalog parses catalog YAML, links evolution targets and compiles
// expression conditions. The returned catalog is immutable.
func ParseCatalog(raw []byte) (*Catalog, error) {
	var cf CatalogFile
	if err := yaml.Unmarshal(raw, &cf); err != nil {
		return nil, fmt.Errorf("parse catalog YAML: %w", err)
	}
	if len(cf.Cards) == 0 {
		return nil, fmt.Errorf("catalog has no cards")
	}
	if len(cf.Themes) == 0 {
		return nil, fmt.Errorf("catalog has no themes")
	}

	// First pass: build cards without links so targets can be forward references.
	byID := make(map[string]*Card, len(cf.Cards))
	cards := make([]*Card, 0, len(cf.Cards))
	for _, e := range cf.Cards {
		if e.ID == "" {
			return nil, fmt.Errorf("card %q: missing id", e.Name)
		}
		if _, dup := byID[e.ID]; dup {
			return nil, fmt.Errorf("card %q: duplicate id", e.ID)
		}
		attr, err := ParseAttribute(e.Attribute)
		if err != nil {
			return nil, fmt.Errorf("card %q: %w", e.ID, err)
		}
		if err := e.Effect.validate(); err != nil {
			return nil, fmt.Errorf("card %q: %w", e.ID, err)
		}
		c := &Card{
			ID:                e.ID,
			Name:              e.Name,
			Description:       e.Description,
			Attribute:         attr,
			Effect:            e.Effect.effect(),
			ScoreMultiplier:   DefaultScoreMultiplier,
			CollapseThreshold: DefaultCollapseThreshold,
		}
		if c.Name == "" {
			c.Name = e.ID
		}
		if e.ScoreMultiplier != nil {
			c.ScoreMultiplier = *e.ScoreMultiplier
		}
		if e.CollapseThreshold != nil {
			c.CollapseThreshold = *e.CollapseThreshold
		}
		if c.ScoreMultiplier < 0 {
			return nil, fmt.Errorf("card %q: negative score multiplier", e.ID)
		}
		byID[e.ID] = c
		cards = append(cards, c)
	}

	// Second pass: link targets and conditions.
	for i, e := range cf.Cards {
		c := cards[i]
		var err error
		if c.EvolvesTo, err = linkTarget(byID, c, e.EvolvesTo); err != nil {
			return nil, fmt.Errorf("card %q evolves_to: %w", c.ID, err)
		}
		if c.DegradesTo, err = linkTarget(byID, c, e.DegradesTo); err != nil {
			return nil, fmt.Errorf("card %q degrades_to: %w", c.ID, err)
		}
		if c.EvolutionConditions, err = buildConditions(e.Evolution); err != nil {
			return nil, fmt.Errorf("card %q evolution: %w", c.ID, err)
		}
		if c.DegradationConditions, err = buildConditions(e.Degradation); err != nil {
			return nil, fmt.Errorf("card %q degradation: %w", c.ID, err)
		}
	}

	themes := make([]*Theme, 0, len(cf.Themes))
	seen := make(map[string]bool, len(cf.Themes))
	for _, e := range cf.Themes {
		if e.Title == "" {
			return nil, fmt.Errorf("theme: missing title")
		}
		if seen[e.Title] {
			return nil, fmt.Errorf("theme %q: duplicate title", e.Title)
		}
		seen[e.Title] = true
		t := &Theme{Title: e.Title, Multipliers: make(map[Attribute]float64, len(e.Multipliers))}
		if e.Target != nil {
			if err := e.Target.validate(); err != nil {
				return nil, fmt.Errorf("theme %q target: %w", e.Title, err)
			}
			t.Target = e.Target.effect()
			t.HasTarget = true
		}
		for name, m := range e.Multipliers {
			attr, err := ParseAttribute(name)
			if err != nil {
				return nil, fmt.Errorf("theme %q: %w", e.Title, err)
			}
			if !(m >= 0) {
				return nil, fmt.Errorf("theme %q: negative multiplier %v for %s", e.Title, m, name)
			}
			t.Multipliers[attr] = m
		}
		themes = append(themes, t)
	}

	for _, d := range cf.Decks {
		for _, entry := range d.Cards {
			if _, ok := byID[entry.ID]; !ok {
				return nil, fmt.Errorf("deck %q: unknown card %q", d.Name, entry.ID)
			}
		}
	}

	return &Catalog{
		Cards:  NewCardCatalog(cards),
		Themes: NewThemeCatalog(themes),
		decks:  cf.Decks,
	}, nil
}

func linkTarget(byID map[string]*Card, self *Card, id string) (*Card, error) {
	if id == "" {
		return nil, nil
	}
	target, ok := byID[id]
	if !ok {
		return nil, fmt.Errorf("unknown card %q", id)
	}
	if target == self {
		return nil, fmt.Errorf("card cannot transform into itself")
	}
	return target, nil
}

func buildConditions(entries []ConditionEntry) ([]EvolutionCondition, error) {
	var conds []EvolutionCondition
	for _, e := range entries {
		ct, err := ParseConditionType(e.Type)
		if err != nil {
			return nil, err
		}
		cond := EvolutionCondition{Type: ct, Count: e.Count}
		switch ct {
		case ConditionPlayStyleWin, ConditionPlayStyleLose:
			if cond.PlayStyle, err = ParsePlayStyle(e.PlayStyle); err != nil {
				return nil, err
			}
		case ConditionExpr:
			if e.Expr == "" {
				return nil, fmt.Errorf("expr condition without expression")
			}
			cond.Expr = e.Expr
			if cond.program, err = compileCondition(e.Expr); err != nil {
				return nil, fmt.Errorf("compile %q: %w", e.Expr, err)
			}
		}
		conds = append(conds, cond)
	}
	return conds, nil
}

// DeckNames returns the names of the starter decks, in file order.
func (c *Catalog) DeckNames() []string {
	names := make([]string, len(c.decks))
	for i, d := range c.decks {
		names[i] = d.Name
	}
	return names
}

// DeckByNumber returns the Nth starter deck (1-indexed).
func (c *Catalog) DeckByNumber(n int) (string, []*Card, error) {
	if n < 1 || n > len(c.decks) {
		return "", nil, fmt.Errorf("deck %d not found (have %d decks)", n, len(c.decks))
	}
	deck := c.decks[n-1]
	var cards []*Card
	for _, entry := range deck.Cards {
		card := c.Cards.Lookup(entry.ID)
		for i := 0; i < entry.Count; i++ {
			cards = append(cards, card)
		}
	}
	return deck.Name, cards, nil
}

// --- CardCatalog ---

// CardCatalog is a read-only registry of card definitions.
type CardCatalog struct {
	cards []*Card
	byID  map[string]*Card
}

func NewCardCatalog(cards []*Card) *CardCatalog {
	cc := &CardCatalog{byID: make(map[string]*Card, len(cards))}
	for _, c := range cards {
		cc.cards = append(cc.cards, c)
		cc.byID[c.ID] = c
	}
	return cc
}

// Lookup returns the card with the given id, or nil.
func (cc *CardCatalog) Lookup(id string) *Card {
	return cc.byID[id]
}

// All returns every card in catalog order.
func (cc *CardCatalog) All() []*Card {
	return append([]*Card(nil), cc.cards...)
}

func (cc *CardCatalog) Len() int {
	return len(cc.cards)
}

// Where returns the cards matching pred, in catalog order.
func (cc *CardCatalog) Where(pred func(*Card) bool) []*Card {
	var result []*Card
	for _, c := range cc.cards {
		if pred(c) {
			result = append(result, c)
		}
	}
	return result
}

// RandomCards deals n cards uniformly from the catalog, with replacement.
func (cc *CardCatalog) RandomCards(rng Random, n int) []*Card {
	if len(cc.cards) == 0 || n <= 0 {
		return nil
	}
	result := make([]*Card, n)
	for i := range result {
		result[i] = cc.cards[rng.Intn(len(cc.cards))]
	}
	return result
}

// IDs returns all card ids sorted.
func (cc *CardCatalog) IDs() []string {
	ids := make([]string, 0, len(cc.byID))
	for id := range cc.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// --- ThemeCatalog ---

// ThemeCatalog is a read-only registry of themes.
type ThemeCatalog struct {
	themes  []*Theme
	byTitle map[string]*Theme
}

func NewThemeCatalog(themes []*Theme) *ThemeCatalog {
	tc := &ThemeCatalog{byTitle: make(map[string]*Theme, len(themes))}
	for _, t := range themes {
		tc.themes = append(tc.themes, t)
		tc.byTitle[t.Title] = t
	}
	return tc
}

// Random returns a uniformly chosen theme, or nil if the catalog is empty.
func (tc *ThemeCatalog) Random(rng Random) *Theme {
	if len(tc.themes) == 0 {
		return nil
	}
	return tc.themes[rng.Intn(len(tc.themes))]
}

// Lookup returns the theme with the given title, or nil.
func (tc *ThemeCatalog) Lookup(title string) *Theme {
	return tc.byTitle[title]
}

func (tc *ThemeCatalog) All() []*Theme {
	return append([]*Theme(nil), tc.themes...)
}

func (tc *ThemeCatalog) Len() int {
	return len(tc.themes)
}

// Closest returns the theme whose target vector is nearest to e. Themes
// without a target are skipped; nil if none has one.
func (tc *ThemeCatalog) Closest(e Effect) *Theme {
	var best *Theme
	bestDist := math.Inf(1)
	for _, t := range tc.themes {
		if !t.HasTarget {
			continue
		}
		if d := e.DistanceTo(t.Target); d < bestDist {
			best, bestDist = t, d
		}
	}
	return best
}

// AllHaveTargets reports whether every theme carries a target vector.
func (tc *ThemeCatalog) AllHaveTargets() bool {
	for _, t := range tc.themes {
		if !t.HasTarget {
			return false
		}
	}
	return true
}
