package vecops

import "sync"

// Hint selects which back-end family InitializeLibrary should prefer.
// It is advisory: the dispatch layer always falls back to the reference
// implementation if no matching back-end is registered.
type Hint int

const (
	// HintAuto selects the highest-priority back-end available.
	HintAuto Hint = iota
	// HintReferenceOnly forces the pure-Go reference implementation.
	HintReferenceOnly
)

// Dispatch holds the active float64/complex128 fast-path implementations
// for the operations the UPOLS kernel calls in its hot loop. Every field
// is always non-nil: InitializeLibrary and UninitializeLibrary both leave
// a complete set of function pointers in place, defaulting to the
// reference implementation.
type Dispatch struct {
	Name string

	MulAddInPlaceC func(y, a, b []complex128)
	MulConstAddInPlaceC func(y, a []complex128, c complex128)
	MulConstC      func(y, a []complex128, c complex128)
	AddInPlace     func(y, a []float64)
	RampScale      func(y, in, r []float64, g0, g1 float64, accumulate bool)
}

// Backend is one registered implementation variant.
type Backend struct {
	Name     string
	Priority int
	Build    func() Dispatch
}

var (
	registryMu sync.Mutex
	backends   []Backend

	activeMu    sync.RWMutex
	active      Dispatch
	initialized bool
)

// Register adds a Backend to the set InitializeLibrary may select from.
// Architecture- or library-specific adapters call this from an init()
// function (see simd_algovecmath.go), the same registration idiom
// internal/vecmath/registry uses.
func Register(b Backend) {
	registryMu.Lock()
	defer registryMu.Unlock()
	backends = append(backends, b)
}

// InitializeLibrary selects the best registered back-end for hint and
// installs it as the active dispatch. It is a one-shot, process-wide
// operation; calling it again simply re-selects. Callers never need to
// invoke this themselves: Active() calls it automatically, with
// HintAuto, the first time any operation actually dispatches. It
// exists as an exported entry point only for hosts that want to force
// a particular hint (e.g. HintReferenceOnly for benchmarking) before
// that first call.
func InitializeLibrary(hint Hint) {
	if hint == HintReferenceOnly {
		activeMu.Lock()
		active = referenceDispatch()
		initialized = true
		activeMu.Unlock()
		return
	}

	registryMu.Lock()
	best := Backend{}
	for _, b := range backends {
		if b.Priority > best.Priority || best.Build == nil {
			best = b
		}
	}
	registryMu.Unlock()

	d := referenceDispatch()
	if best.Build != nil {
		d = best.Build()
	}

	activeMu.Lock()
	active = d
	initialized = true
	activeMu.Unlock()
}

// UninitializeLibrary restores the reference back-end.
func UninitializeLibrary() {
	activeMu.Lock()
	active = referenceDispatch()
	initialized = true
	activeMu.Unlock()
}

// Active returns the currently installed Dispatch, auto-selecting the
// best registered back-end (as if InitializeLibrary(HintAuto) had been
// called) the first time any operation actually dispatches. Safe for
// concurrent use; the result is a value copy of the function-pointer
// set. Racing first calls may both run the auto-selection, which is
// harmless since it is idempotent.
func Active() Dispatch {
	activeMu.RLock()
	ready := initialized
	d := active
	activeMu.RUnlock()
	if ready {
		return d
	}
	InitializeLibrary(HintAuto)
	activeMu.RLock()
	defer activeMu.RUnlock()
	return active
}

// referenceDispatch builds the pure-Go fallback. It calls the *Loop
// helpers directly rather than the exported MulAddInPlaceC-style
// functions, which dispatch through Active() for complex128/float64 -
// going through them here would recurse back into Active() the moment
// the reference back-end is the active one.
func referenceDispatch() Dispatch {
	return Dispatch{
		Name:                "reference",
		MulAddInPlaceC:      mulAddInPlaceCLoop[complex128],
		MulConstAddInPlaceC: mulConstAddInPlaceCLoop[complex128],
		MulConstC:           mulConstCLoop[complex128],
		AddInPlace:          AddInPlace[float64],
		RampScale:           rampScaleLoop[float64],
	}
}
