/*
Registry assigns stable numeric identifiers to curve instances and routes
calls to them.

Curves are added once and never removed or replaced: ids are dense, start at
1, and resolve to the same curve for the lifetime of the registry. Every read
operation resolves an id and forwards the call verbatim; the registry adds
validation and indirection, never computation.
*/

package registry

import (
	"errors"
	"fmt"
	"sync"

	"github.com/elys-network/curved/internal/curves"
	"github.com/elys-network/curved/internal/fixedpoint"
	"github.com/elys-network/curved/internal/logger"
	"github.com/elys-network/curved/internal/types"
)

var (
	ErrNilCurve               = errors.New("curve reference is nil")
	ErrCurveAlreadyRegistered = errors.New("curve already registered")
	ErrDuplicateCurveName     = errors.New("curve name already registered")
	ErrEmptyCurveName         = errors.New("curve reports an empty name")
	ErrCurveNotFound          = errors.New("no curve registered under id")
)

var registryLogger = logger.GetForComponent("curve_registry")

// Observer is notified after each successful registration, for indexing.
type Observer func(id types.CurveID, curve curves.Curve, name string)

// Registry is the id-stable curve directory. Safe for concurrent use; the
// only mutation is the append-only AddCurve.
type Registry struct {
	mu         sync.RWMutex
	curvesByID map[types.CurveID]curves.Curve
	idsByCurve map[curves.Curve]types.CurveID
	names      map[string]struct{}
	observers  []Observer
}

// New constructs an empty registry. Observers fire in order on each
// successful AddCurve.
func New(observers ...Observer) *Registry {
	return &Registry{
		curvesByID: make(map[types.CurveID]curves.Curve),
		idsByCurve: make(map[curves.Curve]types.CurveID),
		names:      make(map[string]struct{}),
		observers:  observers,
	}
}

// AddCurve registers a curve and returns its assigned id. The id is
// count+1, so the first registration gets id 1.
func (r *Registry) AddCurve(curve curves.Curve) (types.CurveID, error) {
	if curve == nil {
		return 0, ErrNilCurve
	}
	name := curve.Name()
	if name == "" {
		return 0, ErrEmptyCurveName
	}

	r.mu.Lock()
	if _, dup := r.idsByCurve[curve]; dup {
		r.mu.Unlock()
		return 0, fmt.Errorf("%w: %q", ErrCurveAlreadyRegistered, name)
	}
	if _, taken := r.names[name]; taken {
		r.mu.Unlock()
		return 0, fmt.Errorf("%w: %q", ErrDuplicateCurveName, name)
	}
	id := types.CurveID(len(r.curvesByID) + 1)
	r.curvesByID[id] = curve
	r.idsByCurve[curve] = id
	r.names[name] = struct{}{}
	observers := r.observers
	r.mu.Unlock()

	registryLogger.Info().
		Uint64("curve_id", uint64(id)).
		Str("name", name).
		Msg("Registered curve")

	for _, notify := range observers {
		notify(id, curve, name)
	}
	return id, nil
}

// Curve resolves an id to its registered curve.
func (r *Registry) Curve(id types.CurveID) (curves.Curve, error) {
	r.mu.RLock()
	curve, ok := r.curvesByID[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrCurveNotFound, id)
	}
	return curve, nil
}

// CurveID returns the id a curve was registered under.
func (r *Registry) CurveID(curve curves.Curve) (types.CurveID, error) {
	if curve == nil {
		return 0, ErrNilCurve
	}
	r.mu.RLock()
	id, ok := r.idsByCurve[curve]
	r.mu.RUnlock()
	if !ok {
		return 0, fmt.Errorf("%w: %q is not registered", ErrCurveNotFound, curve.Name())
	}
	return id, nil
}

// Count returns the number of registered curves.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.curvesByID)
}

// List returns a view of every registry entry in id order.
func (r *Registry) List() []types.CurveInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	infos := make([]types.CurveInfo, 0, len(r.curvesByID))
	for id := types.CurveID(1); id <= types.CurveID(len(r.curvesByID)); id++ {
		curve := r.curvesByID[id]
		infos = append(infos, types.CurveInfo{
			ID:        id,
			Name:      curve.Name(),
			MaxShares: curve.MaxShares(),
			MaxAssets: curve.MaxAssets(),
		})
	}
	return infos
}

// CurveName resolves an id to its curve's name.
func (r *Registry) CurveName(id types.CurveID) (string, error) {
	curve, err := r.Curve(id)
	if err != nil {
		return "", err
	}
	return curve.Name(), nil
}

// MaxShares forwards the bounds query to the addressed curve.
func (r *Registry) MaxShares(id types.CurveID) (fixedpoint.UFixed, error) {
	curve, err := r.Curve(id)
	if err != nil {
		return fixedpoint.UFixed{}, err
	}
	return curve.MaxShares(), nil
}

// MaxAssets forwards the bounds query to the addressed curve.
func (r *Registry) MaxAssets(id types.CurveID) (fixedpoint.UFixed, error) {
	curve, err := r.Curve(id)
	if err != nil {
		return fixedpoint.UFixed{}, err
	}
	return curve.MaxAssets(), nil
}

func (r *Registry) PreviewDeposit(id types.CurveID, assets, totalAssets, totalShares fixedpoint.UFixed) (fixedpoint.UFixed, error) {
	curve, err := r.Curve(id)
	if err != nil {
		return fixedpoint.UFixed{}, err
	}
	return curve.PreviewDeposit(assets, totalAssets, totalShares)
}

func (r *Registry) PreviewMint(id types.CurveID, shares, totalShares, totalAssets fixedpoint.UFixed) (fixedpoint.UFixed, error) {
	curve, err := r.Curve(id)
	if err != nil {
		return fixedpoint.UFixed{}, err
	}
	return curve.PreviewMint(shares, totalShares, totalAssets)
}

func (r *Registry) PreviewWithdraw(id types.CurveID, assets, totalAssets, totalShares fixedpoint.UFixed) (fixedpoint.UFixed, error) {
	curve, err := r.Curve(id)
	if err != nil {
		return fixedpoint.UFixed{}, err
	}
	return curve.PreviewWithdraw(assets, totalAssets, totalShares)
}

func (r *Registry) PreviewRedeem(id types.CurveID, shares, totalShares, totalAssets fixedpoint.UFixed) (fixedpoint.UFixed, error) {
	curve, err := r.Curve(id)
	if err != nil {
		return fixedpoint.UFixed{}, err
	}
	return curve.PreviewRedeem(shares, totalShares, totalAssets)
}

func (r *Registry) ConvertToShares(id types.CurveID, assets, totalAssets, totalShares fixedpoint.UFixed) (fixedpoint.UFixed, error) {
	curve, err := r.Curve(id)
	if err != nil {
		return fixedpoint.UFixed{}, err
	}
	return curve.ConvertToShares(assets, totalAssets, totalShares)
}

func (r *Registry) ConvertToAssets(id types.CurveID, shares, totalShares, totalAssets fixedpoint.UFixed) (fixedpoint.UFixed, error) {
	curve, err := r.Curve(id)
	if err != nil {
		return fixedpoint.UFixed{}, err
	}
	return curve.ConvertToAssets(shares, totalShares, totalAssets)
}

func (r *Registry) CurrentPrice(id types.CurveID, totalShares, totalAssets fixedpoint.UFixed) (fixedpoint.UFixed, error) {
	curve, err := r.Curve(id)
	if err != nil {
		return fixedpoint.UFixed{}, err
	}
	return curve.CurrentPrice(totalShares, totalAssets)
}
