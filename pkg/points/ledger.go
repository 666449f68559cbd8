package points

import (
	"context"
	"math"

	"pointsbot/pkg/db"
)

// Balance returns the user's accumulated points, 0 when the user has none.
func (m *Manager) Balance(ctx context.Context, userID int64) (int64, error) {
	var balance int64
	err := m.repo.View(ctx, func(doc *db.Document) error {
		balance = doc.Points[db.LedgerKey(userID)]
		return nil
	})

	return balance, err
}

// credit adds delta to the user's ledger entry and returns the new balance.
func credit(doc *db.Document, userID, delta int64) int64 {
	key := db.LedgerKey(userID)
	balance := saturatingAdd(doc.Points[key], delta)
	doc.Points[key] = balance

	return balance
}

func saturatingAdd(a, b int64) int64 {
	if b > 0 && a > math.MaxInt64-b {
		return math.MaxInt64
	}
	if b < 0 && a < math.MinInt64-b {
		return math.MinInt64
	}

	return a + b
}
