// ./internal/state/curve_store.go
package state

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/elys-network/curved/internal/fixedpoint"
	"github.com/elys-network/curved/internal/types"
)

// SaveCurveRegistration records a registry entry for external indexing.
// Intended to run as a registry observer; registration ids are stable, so
// the insert conflicts only when re-recording an identical entry.
func SaveCurveRegistration(info types.CurveInfo) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	stmt := `
		INSERT INTO registered_curves (curve_id, name, max_shares, max_assets)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (curve_id) DO NOTHING;`

	_, err := DB.Exec(stmt,
		uint64(info.ID), info.Name,
		info.MaxShares.BigInt().String(), info.MaxAssets.BigInt().String(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert curve registration: %w", err)
	}

	log.Info().
		Uint64("curve_id", uint64(info.ID)).
		Str("name", info.Name).
		Msg("Saved curve registration")
	return nil
}

// ListCurveRegistrations returns all recorded registry entries in id order.
func ListCurveRegistrations() ([]types.CurveInfo, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	rows, err := DB.Query(`
		SELECT curve_id, name, max_shares, max_assets
		FROM registered_curves
		ORDER BY curve_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query curve registrations: %w", err)
	}
	defer rows.Close()

	var infos []types.CurveInfo
	for rows.Next() {
		var (
			id                   uint64
			name                 string
			maxShares, maxAssets string
		)
		if err := rows.Scan(&id, &name, &maxShares, &maxAssets); err != nil {
			return nil, fmt.Errorf("failed to scan curve registration: %w", err)
		}
		shares, err := fixedpoint.Parse(rawToDecimal(maxShares))
		if err != nil {
			return nil, fmt.Errorf("stored max_shares for curve %d is invalid: %w", id, err)
		}
		assets, err := fixedpoint.Parse(rawToDecimal(maxAssets))
		if err != nil {
			return nil, fmt.Errorf("stored max_assets for curve %d is invalid: %w", id, err)
		}
		infos = append(infos, types.CurveInfo{
			ID:        types.CurveID(id),
			Name:      name,
			MaxShares: shares,
			MaxAssets: assets,
		})
	}
	return infos, rows.Err()
}

// rawToDecimal rewrites a raw scaled integer string as a decimal string with
// 18 fractional digits, the shape fixedpoint.Parse expects.
func rawToDecimal(raw string) string {
	neg := false
	if len(raw) > 0 && raw[0] == '-' {
		neg = true
		raw = raw[1:]
	}
	for len(raw) <= fixedpoint.Decimals {
		raw = "0" + raw
	}
	cut := len(raw) - fixedpoint.Decimals
	out := raw[:cut] + "." + raw[cut:]
	if neg {
		out = "-" + out
	}
	return out
}
