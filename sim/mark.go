package sim

import "github.com/eihigh/ei"

// markTTL is how long an eat mark stays visible, in seconds.
const markTTL = 0.6

// EatMark is a transient marker left where food was eaten, so a renderer can
// flash the spot. Marks age out during Step and the list is compacted with
// ei.Sweep.
type EatMark struct {
	ei.Entity

	Pos Vec2
	TTL float64
}
