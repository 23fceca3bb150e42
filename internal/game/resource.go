package game

const DefaultMaxMentalPower = 20

// MentalPower is a player's bettable resource, always within [0, max].
type MentalPower struct {
	value int
	max   int
}

// NewMentalPower returns a full pool.
func NewMentalPower(max int) *MentalPower {
	if max < 0 {
		max = 0
	}
	return &MentalPower{value: max, max: max}
}

func (m *MentalPower) Value() int {
	return m.value
}

func (m *MentalPower) Max() int {
	return m.max
}

// CanAfford reports whether amount can be consumed.
func (m *MentalPower) CanAfford(amount int) bool {
	return amount >= 0 && amount <= m.value
}

// TryConsume spends amount. It fails without mutating when the pool is short.
func (m *MentalPower) TryConsume(amount int) bool {
	if !m.CanAfford(amount) {
		return false
	}
	m.value -= amount
	return true
}

// Restore adds amount, capped at max, and returns what was actually added.
func (m *MentalPower) Restore(amount int) int {
	if amount <= 0 {
		return 0
	}
	old := m.value
	m.value = min(m.value+amount, m.max)
	return m.value - old
}

// Set assigns v clamped to [0, max].
func (m *MentalPower) Set(v int) {
	m.value = max(0, min(v, m.max))
}

// Reset refills the pool.
func (m *MentalPower) Reset() {
	m.value = m.max
}
