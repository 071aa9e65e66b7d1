// ./internal/state/quote_store.go
package state

import (
	"fmt"
	"time"

	"github.com/elys-network/curved/internal/fixedpoint"
	"github.com/elys-network/curved/internal/types"
)

// QuoteRecord is one served pricing operation, kept for indexing and audit.
// The engine itself stays stateless; recording happens at the service edge.
type QuoteRecord struct {
	QuoteID     int64             `json:"quote_id"`
	CurveID     types.CurveID     `json:"curve_id"`
	Operation   string            `json:"operation"`
	Amount      fixedpoint.UFixed `json:"amount"`
	TotalAssets fixedpoint.UFixed `json:"total_assets"`
	TotalShares fixedpoint.UFixed `json:"total_shares"`
	Result      fixedpoint.UFixed `json:"result"`
	QuotedAt    time.Time         `json:"quoted_at"`
}

// SaveQuote appends a served quote to the log.
func SaveQuote(rec QuoteRecord) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	stmt := `
		INSERT INTO quote_log (curve_id, operation, amount, total_assets, total_shares, result)
		VALUES ($1, $2, $3, $4, $5, $6);`

	_, err := DB.Exec(stmt,
		uint64(rec.CurveID), rec.Operation,
		rec.Amount.BigInt().String(),
		rec.TotalAssets.BigInt().String(),
		rec.TotalShares.BigInt().String(),
		rec.Result.BigInt().String(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert quote: %w", err)
	}
	return nil
}

// GetRecentQuotes retrieves the most recent quotes, newest first.
func GetRecentQuotes(limit int) ([]QuoteRecord, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	rows, err := DB.Query(`
		SELECT quote_id, curve_id, operation, amount, total_assets, total_shares, result, quoted_at
		FROM quote_log
		ORDER BY quoted_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query quotes: %w", err)
	}
	defer rows.Close()

	var quotes []QuoteRecord
	for rows.Next() {
		var (
			rec                                      QuoteRecord
			id                                       uint64
			amount, totalAssets, totalShares, result string
		)
		err := rows.Scan(&rec.QuoteID, &id, &rec.Operation,
			&amount, &totalAssets, &totalShares, &result, &rec.QuotedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quote row: %w", err)
		}
		rec.CurveID = types.CurveID(id)
		if rec.Amount, err = fixedpoint.Parse(rawToDecimal(amount)); err != nil {
			return nil, fmt.Errorf("stored amount for quote %d is invalid: %w", rec.QuoteID, err)
		}
		if rec.TotalAssets, err = fixedpoint.Parse(rawToDecimal(totalAssets)); err != nil {
			return nil, fmt.Errorf("stored total_assets for quote %d is invalid: %w", rec.QuoteID, err)
		}
		if rec.TotalShares, err = fixedpoint.Parse(rawToDecimal(totalShares)); err != nil {
			return nil, fmt.Errorf("stored total_shares for quote %d is invalid: %w", rec.QuoteID, err)
		}
		if rec.Result, err = fixedpoint.Parse(rawToDecimal(result)); err != nil {
			return nil, fmt.Errorf("stored result for quote %d is invalid: %w", rec.QuoteID, err)
		}
		quotes = append(quotes, rec)
	}
	return quotes, rows.Err()
}
