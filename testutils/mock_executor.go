package testutils

import (
	"sync"

	"github.com/adrianotavares/crypto-trading-bot/types"
)

// MockExecutor implements the Executor interface in-memory and captures
// every submitted order for assertions.
type MockExecutor struct {
	mu        sync.RWMutex
	equity    float64
	positions map[string]float64 // qty (signed)
	avgPrice  map[string]float64
	orders    []types.Order
	failNext  error
}

// NewMockExecutor creates a fresh executor with the supplied starting equity.
func NewMockExecutor(startEquity float64) *MockExecutor {
	return &MockExecutor{
		equity:    startEquity,
		positions: make(map[string]float64),
		avgPrice:  make(map[string]float64),
	}
}

// FailNext makes the next Submit return err, then clears the condition.
func (m *MockExecutor) FailNext(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = err
}

// Submit records the order and updates equity/position like the paper
// executor does.
func (m *MockExecutor) Submit(o types.Order) error {
	if o.Qty == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return err
	}

	cost := o.Price * o.Qty
	if o.Side == types.Buy {
		m.equity -= cost
		m.positions[o.Symbol] += o.Qty
	} else {
		m.equity += cost
		m.positions[o.Symbol] -= o.Qty
	}
	if m.positions[o.Symbol] == 0 {
		delete(m.positions, o.Symbol)
		delete(m.avgPrice, o.Symbol)
	} else {
		m.avgPrice[o.Symbol] = o.Price
	}
	m.orders = append(m.orders, o)
	return nil
}

// Equity returns the current cash balance.
func (m *MockExecutor) Equity() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.equity
}

// Position returns qty & avg price for a symbol.
func (m *MockExecutor) Position(symbol string) (float64, float64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.positions[symbol], m.avgPrice[symbol]
}

// Orders returns a copy of all submitted orders (useful for assertions).
func (m *MockExecutor) Orders() []types.Order {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]types.Order, len(m.orders))
	copy(out, m.orders)
	return out
}
