package pricefeed

import (
	"context"
	"math/big"
	"sync"
	"time"
)

// Default values used for the mock feed on development networks.
const (
	DefaultDecimals = 8
)

// DefaultInitialAnswer is 2000.00000000 at 8 decimals.
var DefaultInitialAnswer = big.NewInt(2000_00000000)

// RoundData mirrors the values an AggregatorV3 returns for a round.
type RoundData struct {
	RoundID         uint64    `json:"round_id"`
	Answer          *big.Int  `json:"answer"`
	StartedAt       time.Time `json:"started_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	AnsweredInRound uint64    `json:"answered_in_round"`
}

// MockState is the persisted form of a mock feed.
type MockState struct {
	Decimals uint8       `json:"decimals"`
	Rounds   []RoundData `json:"rounds"`
}

// Mock is a deterministic aggregator for development networks. It returns
// whatever answer it was last given.
type Mock struct {
	mu       sync.RWMutex
	decimals uint8
	rounds   []RoundData
	now      func() time.Time
}

// NewMock constructs a mock feed with the initial answer as round 1.
func NewMock(decimals uint8, initialAnswer *big.Int) *Mock {
	m := Mock{
		decimals: decimals,
		now:      func() time.Time { return time.Now().UTC() },
	}
	m.UpdateAnswer(initialAnswer)

	return &m
}

// RestoreMock constructs a mock feed from a previously captured state.
func RestoreMock(state MockState) *Mock {
	m := Mock{
		decimals: state.Decimals,
		rounds:   make([]RoundData, len(state.Rounds)),
		now:      func() time.Time { return time.Now().UTC() },
	}

	for i, rd := range state.Rounds {
		rd.Answer = new(big.Int).Set(rd.Answer)
		m.rounds[i] = rd
	}

	return &m
}

// UpdateAnswer starts a new round with the specified answer.
func (m *Mock) UpdateAnswer(answer *big.Int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	id := uint64(len(m.rounds) + 1)

	m.rounds = append(m.rounds, RoundData{
		RoundID:         id,
		Answer:          new(big.Int).Set(answer),
		StartedAt:       now,
		UpdatedAt:       now,
		AnsweredInRound: id,
	})
}

// Decimals returns the precision of the answers.
func (m *Mock) Decimals() uint8 {
	return m.decimals
}

// LatestRoundData returns the most recent round.
func (m *Mock) LatestRoundData() (RoundData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.rounds) == 0 {
		return RoundData{}, ErrNoAnswer
	}

	rd := m.rounds[len(m.rounds)-1]
	rd.Answer = new(big.Int).Set(rd.Answer)

	return rd, nil
}

// GetRoundData returns the specified round.
func (m *Mock) GetRoundData(roundID uint64) (RoundData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if roundID == 0 || roundID > uint64(len(m.rounds)) {
		return RoundData{}, ErrNoAnswer
	}

	rd := m.rounds[roundID-1]
	rd.Answer = new(big.Int).Set(rd.Answer)

	return rd, nil
}

// LatestPrice implements the Feed interface.
func (m *Mock) LatestPrice(ctx context.Context) (Price, error) {
	rd, err := m.LatestRoundData()
	if err != nil {
		return Price{}, err
	}

	return Price{Answer: rd.Answer, Decimals: m.decimals}, nil
}

// State captures the mock so it can be persisted.
func (m *Mock) State() MockState {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rounds := make([]RoundData, len(m.rounds))
	for i, rd := range m.rounds {
		rd.Answer = new(big.Int).Set(rd.Answer)
		rounds[i] = rd
	}

	return MockState{
		Decimals: m.decimals,
		Rounds:   rounds,
	}
}
