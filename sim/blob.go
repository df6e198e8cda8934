package sim

import (
	"math"

	"github.com/eihigh/ei"
)

// Color is an RGB triple. The renderer maps it to whatever the terminal can
// show; the simulation only carries it.
type Color struct {
	R, G, B uint8
}

// Blob is a mobile actor: it roams the field, perceives food inside a sight
// cone and starves without it. Liveness is tracked with the embedded
// ei.Entity; a killed blob is swept out of its set at the end of the step
// that killed it.
type Blob struct {
	ei.Entity

	Pos     Vec2
	Heading float64 // radians
	Radius  float64
	Color   Color
	Name    string

	Speed    float64 // units per second
	TurnRate float64 // radians per second
	Pov      float64 // field of view, degrees
	Sight    float64 // base sight distance

	Hunger        float64
	MaxHunger     float64
	MetabolicRate float64 // hunger accrued per second
	GrowthRate    float64 // radius gained per food eaten
}

// SightDepth is how far the blob actually sees: the base sight distance
// scaled up by body size, so bigger blobs perceive farther.
func (b *Blob) SightDepth() float64 {
	return b.Sight + 2*b.Radius
}

// sees reports whether p falls inside the blob's sight cone: within
// SightDepth of the blob and within Pov/2 degrees of its heading.
func (b *Blob) sees(p Vec2) bool {
	to := p.Sub(b.Pos)
	depth := b.SightDepth()
	if to.LenSq() > depth*depth {
		return false
	}
	half := b.Pov / 2 * math.Pi / 180
	return math.Abs(angleDiff(b.Heading, to.Angle())) <= half
}

// steerToward rotates the heading toward target, limited by TurnRate over dt.
func (b *Blob) steerToward(target Vec2, dt float64) {
	d := angleDiff(b.Heading, target.Sub(b.Pos).Angle())
	maxTurn := b.TurnRate * dt
	b.Heading += clamp(d, -maxTurn, maxTurn)
}

// Food is a static resource; a blob that touches it eats it whole.
type Food struct {
	Pos    Vec2
	Energy float64
}

// FoodRadius is the pick radius used for eating and point selection.
const FoodRadius = 2.0
