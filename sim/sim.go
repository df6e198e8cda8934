// Package sim implements the Blobs ecology: mobile blobs roam a bounded
// field, perceive food inside a sight cone, eat it and starve without it.
//
// Each entity kind lives in its own keyedset.KeyedSet, and every entity is
// addressed by the key minted at spawn. Callers keep keys in their own
// structures (selections, overlays) and treat a lookup miss as "the entity is
// gone", never as an error.
package sim

import (
	"iter"
	"math"
	"math/rand/v2"

	"github.com/eihigh/ei"
	"github.com/sorane/keyedset"
)

// wanderJitter scales the random heading drift of blobs with nothing in sight.
const wanderJitter = 4.0

// defaultFoodEnergy is the hunger relieved by one piece of spawned food.
const defaultFoodEnergy = 5.0

// Option configures a Simulation at construction.
type Option func(*Simulation)

// WithSeed pins the random source, making spawn stats reproducible. Stepped
// positions still vary between runs: blobs are visited in set iteration
// order, which is unspecified.
func WithSeed(seed uint64) Option {
	return func(s *Simulation) {
		s.rng = rand.New(rand.NewPCG(seed, 0))
	}
}

// Simulation owns every entity on the field. It is single-threaded: Step and
// the spawn/lookup calls must not race.
type Simulation struct {
	size  Vec2
	blobs *keyedset.KeyedSet[Blob]
	foods *keyedset.KeyedSet[Food]
	bus   *EventBus
	rng   *rand.Rand
	marks []*EatMark
}

// New returns an empty simulation over a size.X by size.Y field.
func New(size Vec2, opts ...Option) *Simulation {
	s := &Simulation{
		size:  size,
		blobs: keyedset.New[Blob](),
		foods: keyedset.New[Food](),
		bus:   &EventBus{},
		rng:   rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Size returns the field dimensions.
func (s *Simulation) Size() Vec2 { return s.size }

// Events returns the bus Step and the spawn helpers publish on.
func (s *Simulation) Events() *EventBus { return s.bus }

// SpawnBlob inserts b and returns its key.
func (s *Simulation) SpawnBlob(b Blob) keyedset.Key[Blob] {
	k := s.blobs.Insert(b)
	Publish(s.bus, BlobSpawned{Key: k, Pos: b.Pos})
	return k
}

// SpawnFood inserts a piece of food at pos and returns its key.
func (s *Simulation) SpawnFood(pos Vec2) keyedset.Key[Food] {
	k := s.foods.Insert(Food{Pos: pos, Energy: defaultFoodEnergy})
	Publish(s.bus, FoodSpawned{Key: k, Pos: pos})
	return k
}

// SpawnRandomBlob spawns a blob with randomized position, body and sight
// stats. The caller names it afterwards through Blob if it wants to.
func (s *Simulation) SpawnRandomBlob() keyedset.Key[Blob] {
	r := s.rng
	return s.SpawnBlob(Blob{
		Pos:           Vec2{X: r.Float64() * s.size.X, Y: r.Float64() * s.size.Y},
		Heading:       r.Float64() * 2 * math.Pi,
		Radius:        3 + 17*r.Float64(),
		Color:         Color{R: uint8(r.UintN(256)), G: uint8(r.UintN(256)), B: uint8(r.UintN(256))},
		Speed:         20 + 100*r.Float64(),
		TurnRate:      1 + 4*r.Float64(),
		Pov:           60 + 120*r.Float64(),
		Sight:         30 + 140*r.Float64(),
		MaxHunger:     10 + 15*r.Float64(),
		MetabolicRate: 0.3 + 0.7*r.Float64(),
		GrowthRate:    0.1 + 0.4*r.Float64(),
	})
}

// SpawnRandomFood spawns food at a uniform random field position.
func (s *Simulation) SpawnRandomFood() keyedset.Key[Food] {
	return s.SpawnFood(Vec2{X: s.rng.Float64() * s.size.X, Y: s.rng.Float64() * s.size.Y})
}

// Blob looks up a blob by key. A miss means the blob starved or was never
// here; callers skip it.
func (s *Simulation) Blob(k keyedset.Key[Blob]) (*Blob, bool) {
	return s.blobs.Get(k)
}

// Food looks up food by key.
func (s *Simulation) Food(k keyedset.Key[Food]) (*Food, bool) {
	return s.foods.Get(k)
}

// SetBlobPos moves a blob, clamped to the field. Reports whether the key was
// live.
func (s *Simulation) SetBlobPos(k keyedset.Key[Blob], pos Vec2) bool {
	b, ok := s.blobs.Get(k)
	if !ok {
		return false
	}
	b.Pos = Vec2{
		X: clamp(pos.X, 0, s.size.X),
		Y: clamp(pos.Y, 0, s.size.Y),
	}
	return true
}

// Blobs iterates every live blob in unspecified order.
func (s *Simulation) Blobs() iter.Seq2[keyedset.Key[Blob], *Blob] {
	return s.blobs.All()
}

// Foods iterates every live piece of food in unspecified order.
func (s *Simulation) Foods() iter.Seq2[keyedset.Key[Food], *Food] {
	return s.foods.All()
}

// Marks returns the live eat marks. The slice is reused across steps; do not
// retain it.
func (s *Simulation) Marks() []*EatMark { return s.marks }

// NumBlobs returns the live blob count.
func (s *Simulation) NumBlobs() int { return s.blobs.Len() }

// NumFoods returns the live food count.
func (s *Simulation) NumFoods() int { return s.foods.Len() }

// Step advances the world by dt seconds: marks age out, every blob accrues
// hunger, perceives, steers, moves and eats, and starved blobs are removed.
func (s *Simulation) Step(dt float64) {
	for _, m := range s.marks {
		m.TTL -= dt
		if m.TTL <= 0 {
			m.Kill()
		}
	}
	ei.Sweep(&s.marks)

	var starved []keyedset.Key[Blob]
	for bk, b := range s.blobs.All() {
		if !b.Alive() {
			continue
		}
		b.Hunger += b.MetabolicRate * dt
		if b.Hunger >= b.MaxHunger {
			b.Kill()
			starved = append(starved, bk)
			continue
		}

		targetKey, target := s.nearestVisibleFood(b)
		if target != nil {
			b.steerToward(target.Pos, dt)
		} else {
			b.Heading += (s.rng.Float64() - 0.5) * wanderJitter * dt
		}
		b.Pos = b.Pos.Add(FromAngle(b.Heading).Scale(b.Speed * dt))
		s.bounce(b)

		if target != nil && b.Pos.Dist(target.Pos) <= b.Radius+FoodRadius {
			if food, ok := s.foods.Remove(targetKey); ok {
				b.Hunger = math.Max(0, b.Hunger-food.Energy)
				b.Radius += b.GrowthRate
				s.marks = append(s.marks, &EatMark{Pos: food.Pos, TTL: markTTL})
				Publish(s.bus, FoodEaten{Blob: bk, Food: targetKey, Pos: food.Pos})
			}
		}
	}

	for _, bk := range starved {
		if b, ok := s.blobs.Remove(bk); ok {
			Publish(s.bus, BlobStarved{Key: bk, Name: b.Name, Pos: b.Pos})
		}
	}
}

// Select returns the keys of every blob and food whose pick circle contains p.
func (s *Simulation) Select(p Vec2) ([]keyedset.Key[Blob], []keyedset.Key[Food]) {
	var blobs []keyedset.Key[Blob]
	for k, b := range s.blobs.All() {
		if b.Pos.DistSq(p) <= b.Radius*b.Radius {
			blobs = append(blobs, k)
		}
	}
	var foods []keyedset.Key[Food]
	for k, f := range s.foods.All() {
		if f.Pos.DistSq(p) <= FoodRadius*FoodRadius {
			foods = append(foods, k)
		}
	}
	return blobs, foods
}

// nearestVisibleFood scans the food set for the closest piece inside b's
// sight cone.
func (s *Simulation) nearestVisibleFood(b *Blob) (keyedset.Key[Food], *Food) {
	var (
		bestKey keyedset.Key[Food]
		best    *Food
		bestD   = math.MaxFloat64
	)
	for fk, f := range s.foods.All() {
		if !b.sees(f.Pos) {
			continue
		}
		if d := b.Pos.DistSq(f.Pos); d < bestD {
			bestD, best, bestKey = d, f, fk
		}
	}
	return bestKey, best
}

// bounce keeps b on the field, reflecting its heading off the walls.
func (s *Simulation) bounce(b *Blob) {
	if b.Pos.X < b.Radius {
		b.Pos.X = b.Radius
		b.Heading = math.Pi - b.Heading
	} else if b.Pos.X > s.size.X-b.Radius {
		b.Pos.X = s.size.X - b.Radius
		b.Heading = math.Pi - b.Heading
	}
	if b.Pos.Y < b.Radius {
		b.Pos.Y = b.Radius
		b.Heading = -b.Heading
	} else if b.Pos.Y > s.size.Y-b.Radius {
		b.Pos.Y = s.size.Y - b.Radius
		b.Heading = -b.Heading
	}
}
