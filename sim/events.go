package sim

import (
	"reflect"

	"github.com/sorane/keyedset"
)

// Events published by Simulation.Step and the spawn helpers. Subscribers get
// the key so they can look the entity up — or discover it is already gone,
// which is a normal outcome, not an error.

// BlobSpawned fires when a blob enters the simulation.
type BlobSpawned struct {
	Key keyedset.Key[Blob]
	Pos Vec2
}

// FoodSpawned fires when food enters the simulation.
type FoodSpawned struct {
	Key keyedset.Key[Food]
	Pos Vec2
}

// FoodEaten fires when a blob consumes food. Food carries the retired key;
// looking it up afterwards misses.
type FoodEaten struct {
	Blob keyedset.Key[Blob]
	Food keyedset.Key[Food]
	Pos  Vec2
}

// BlobStarved fires when a blob's hunger passes its maximum and it is
// removed. The key is retired by the time handlers run.
type BlobStarved struct {
	Key  keyedset.Key[Blob]
	Name string
	Pos  Vec2
}

// maxEventTypes bounds the number of distinct event types a bus can carry.
const maxEventTypes = 64

// EventBus is a synchronous, type-keyed publish/subscribe bus. Handlers run
// in subscription order on the publishing goroutine; Publish itself does not
// allocate.
type EventBus struct {
	typeIDs  map[reflect.Type]uint8
	handlers [maxEventTypes][]any
	nextID   uint8
}

// Subscribe registers handler for events of type T.
func Subscribe[T any](bus *EventBus, handler func(T)) {
	id := bus.typeID(reflect.TypeFor[T]())
	bus.handlers[id] = append(bus.handlers[id], handler)
}

// Publish delivers event to every handler subscribed to T. Types nobody
// subscribed to are dropped silently.
func Publish[T any](bus *EventBus, event T) {
	id, ok := bus.typeIDs[reflect.TypeFor[T]()]
	if !ok {
		return
	}
	for _, h := range bus.handlers[id] {
		h.(func(T))(event)
	}
}

func (bus *EventBus) typeID(t reflect.Type) uint8 {
	if bus.typeIDs == nil {
		bus.typeIDs = make(map[reflect.Type]uint8)
	}
	if id, ok := bus.typeIDs[t]; ok {
		return id
	}
	if int(bus.nextID) >= maxEventTypes {
		panic("sim: too many event types")
	}
	id := bus.nextID
	bus.nextID++
	bus.typeIDs[t] = id
	return id
}
