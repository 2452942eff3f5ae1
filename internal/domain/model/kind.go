package model

// ChartKind identifies one of the three drawing strategies available per
// marker. The set is closed; dispatch happens through a single render entry
// point rather than ad hoc string keys.
type ChartKind string

const (
	KindXY       ChartKind = "xy"       // planar trajectory
	KindHeight   ChartKind = "height"   // height-coded trajectory
	KindVelocity ChartKind = "velocity" // velocity over time
)

// Kinds lists every chart kind in stable order.
func Kinds() []ChartKind {
	return []ChartKind{KindXY, KindHeight, KindVelocity}
}

// Valid reports whether k is a known chart kind.
func (k ChartKind) Valid() bool {
	switch k {
	case KindXY, KindHeight, KindVelocity:
		return true
	}
	return false
}

// Visibility holds the per-marker chart toggles. New markers default to all
// charts visible.
type Visibility struct {
	XY       bool `json:"xy"`
	Height   bool `json:"height"`
	Velocity bool `json:"velocity"`
}

// AllVisible is the default visibility for a newly seen marker.
func AllVisible() Visibility {
	return Visibility{XY: true, Height: true, Velocity: true}
}

// Enabled reports whether the given chart kind is visible.
func (v Visibility) Enabled(k ChartKind) bool {
	switch k {
	case KindXY:
		return v.XY
	case KindHeight:
		return v.Height
	case KindVelocity:
		return v.Velocity
	}
	return false
}

// Set returns a copy of v with the given kind toggled to visible.
func (v Visibility) Set(k ChartKind, visible bool) Visibility {
	switch k {
	case KindXY:
		v.XY = visible
	case KindHeight:
		v.Height = visible
	case KindVelocity:
		v.Velocity = visible
	}
	return v
}
