package web

import (
	"net/http"
	"sort"

	"github.com/peterkuimelis/voidred/internal/game"
)

// CardInfo is the JSON representation of a card for the /api/cards endpoint.
type CardInfo struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Description       string     `json:"description,omitempty"`
	Attribute         string     `json:"attribute"`
	Effect            [3]float64 `json:"effect"` // forgiveness, rejection, blank
	ScoreMultiplier   float64    `json:"scoreMultiplier"`
	CollapseThreshold int        `json:"collapseThreshold"`
	EvolvesTo         string     `json:"evolvesTo,omitempty"`
	Evolution         []string   `json:"evolution,omitempty"`
	DegradesTo        string     `json:"degradesTo,omitempty"`
	Degradation       []string   `json:"degradation,omitempty"`
}

// ThemeInfo is the JSON representation of a theme for /api/themes.
type ThemeInfo struct {
	Title       string             `json:"title"`
	Target      *[3]float64        `json:"target,omitempty"`
	Multipliers map[string]float64 `json:"multipliers,omitempty"`
}

// DeckInfo is the JSON representation of a starter deck for /api/decks.
type DeckInfo struct {
	Number int      `json:"number"`
	Name   string   `json:"name"`
	Cards  []string `json:"cards"`
}

func effectArray(e game.Effect) [3]float64 {
	return [3]float64{e.Forgiveness, e.Rejection, e.Blank}
}

func conditionStrings(conds []game.EvolutionCondition) []string {
	var out []string
	for _, c := range conds {
		out = append(out, c.String())
	}
	return out
}

func newCardInfo(c *game.Card) CardInfo {
	ci := CardInfo{
		ID:                c.ID,
		Name:              c.Name,
		Description:       c.Description,
		Attribute:         c.Attribute.String(),
		Effect:            effectArray(c.Effect),
		ScoreMultiplier:   c.ScoreMultiplier,
		CollapseThreshold: c.CollapseThreshold,
		Evolution:         conditionStrings(c.EvolutionConditions),
		Degradation:       conditionStrings(c.DegradationConditions),
	}
	if c.EvolvesTo != nil {
		ci.EvolvesTo = c.EvolvesTo.ID
	}
	if c.DegradesTo != nil {
		ci.DegradesTo = c.DegradesTo.ID
	}
	return ci
}

func (s *Server) handleCards(w http.ResponseWriter, r *http.Request) {
	cards := make([]CardInfo, 0, s.catalog.Cards.Len())
	for _, c := range s.catalog.Cards.All() {
		cards = append(cards, newCardInfo(c))
	}
	if attr := r.URL.Query().Get("attribute"); attr != "" {
		a, err := game.ParseAttribute(attr)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		filtered := cards[:0]
		for _, ci := range cards {
			if ci.Attribute == a.String() {
				filtered = append(filtered, ci)
			}
		}
		cards = filtered
	}
	writeJSON(w, http.StatusOK, cards)
}

func (s *Server) handleThemes(w http.ResponseWriter, r *http.Request) {
	themes := make([]ThemeInfo, 0, s.catalog.Themes.Len())
	for _, t := range s.catalog.Themes.All() {
		ti := ThemeInfo{Title: t.Title}
		if t.HasTarget {
			target := effectArray(t.Target)
			ti.Target = &target
		}
		if len(t.Multipliers) > 0 {
			ti.Multipliers = make(map[string]float64, len(t.Multipliers))
			for a, m := range t.Multipliers {
				ti.Multipliers[a.String()] = m
			}
		}
		themes = append(themes, ti)
	}
	writeJSON(w, http.StatusOK, themes)
}

// rulesInfo is the /api/rules payload.
type rulesInfo struct {
	game.Rules
	PlayStyles []playStyleInfo `json:"play_styles"`
	Attributes []string        `json:"attributes"`
}

type playStyleInfo struct {
	Name               string  `json:"name"`
	ScoreMultiplier    float64 `json:"score_multiplier"`
	CollapseMultiplier float64 `json:"collapse_multiplier"`
}

func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	info := rulesInfo{Rules: s.rules}
	for _, ps := range game.PlayStyles {
		info.PlayStyles = append(info.PlayStyles, playStyleInfo{
			Name:               ps.String(),
			ScoreMultiplier:    ps.ScoreMultiplier(),
			CollapseMultiplier: ps.CollapseMultiplier(),
		})
	}
	for _, a := range game.Attributes {
		info.Attributes = append(info.Attributes, a.String())
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleDecks(w http.ResponseWriter, r *http.Request) {
	decks := []DeckInfo{}
	for i, name := range s.catalog.DeckNames() {
		_, cards, err := s.catalog.DeckByNumber(i + 1)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		di := DeckInfo{Number: i + 1, Name: name}
		// Unique card names for display
		seen := make(map[string]bool)
		for _, c := range cards {
			if !seen[c.Name] {
				di.Cards = append(di.Cards, c.Name)
				seen[c.Name] = true
			}
		}
		sort.Strings(di.Cards)
		decks = append(decks, di)
	}
	writeJSON(w, http.StatusOK, decks)
}
