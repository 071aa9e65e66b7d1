/*

Identifier and view types shared between the registry, the state layer and
the web surface.

*/

package types

import (
	"github.com/elys-network/curved/internal/fixedpoint"
)

// CurveID identifies a registered curve. IDs are assigned densely starting
// at 1; 0 is reserved as "unset" and never resolves.
type CurveID uint64

// CurveInfo is the read-side view of a registry entry.
type CurveInfo struct {
	ID        CurveID           `json:"id"`
	Name      string            `json:"name"`
	MaxShares fixedpoint.UFixed `json:"max_shares"`
	MaxAssets fixedpoint.UFixed `json:"max_assets"`
}

// PoolState is the (totalAssets, totalShares) snapshot a caller supplies
// with every pricing operation. The vault owns this state; the engine only
// borrows it for the duration of a call.
type PoolState struct {
	TotalAssets fixedpoint.UFixed `json:"total_assets"`
	TotalShares fixedpoint.UFixed `json:"total_shares"`
}
