package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBlob(pos Vec2) Blob {
	return Blob{
		Pos:           pos,
		Heading:       0,
		Radius:        5,
		Speed:         100,
		TurnRate:      3,
		Pov:           180,
		Sight:         100,
		MaxHunger:     1000,
		MetabolicRate: 0.1,
		GrowthRate:    0.2,
	}
}

func TestSpawnAndLookup(t *testing.T) {
	s := New(Vec2{X: 200, Y: 200}, WithSeed(1))
	k := s.SpawnBlob(testBlob(Vec2{X: 50, Y: 50}))

	b, ok := s.Blob(k)
	require.True(t, ok)
	b.Name = "Pip"

	b2, ok := s.Blob(k)
	require.True(t, ok)
	assert.Equal(t, "Pip", b2.Name)
	assert.Equal(t, 1, s.NumBlobs())
}

func TestStepKeepsBlobsInBounds(t *testing.T) {
	size := Vec2{X: 120, Y: 80}
	s := New(size, WithSeed(7))
	for i := 0; i < 20; i++ {
		s.SpawnRandomBlob()
	}
	for i := 0; i < 300; i++ {
		s.Step(1.0 / 60)
	}
	for _, b := range s.Blobs() {
		assert.GreaterOrEqual(t, b.Pos.X, 0.0)
		assert.LessOrEqual(t, b.Pos.X, size.X)
		assert.GreaterOrEqual(t, b.Pos.Y, 0.0)
		assert.LessOrEqual(t, b.Pos.Y, size.Y)
	}
}

func TestPerceptionSteersTowardFood(t *testing.T) {
	s := New(Vec2{X: 400, Y: 400}, WithSeed(3))
	bk := s.SpawnBlob(testBlob(Vec2{X: 100, Y: 100}))
	s.SpawnFood(Vec2{X: 150, Y: 160})

	b, _ := s.Blob(bk)
	before := b.Pos.Dist(Vec2{X: 150, Y: 160})
	for i := 0; i < 10; i++ {
		s.Step(1.0 / 60)
		if _, ok := s.Blob(bk); !ok {
			t.Fatal("blob vanished mid-test")
		}
	}
	b, _ = s.Blob(bk)
	after := b.Pos.Dist(Vec2{X: 150, Y: 160})
	assert.Less(t, after, before, "blob should close on visible food")
}

func TestEatingRemovesFoodAndFiresEvent(t *testing.T) {
	s := New(Vec2{X: 200, Y: 200}, WithSeed(5))
	bk := s.SpawnBlob(testBlob(Vec2{X: 50, Y: 50}))
	fk := s.SpawnFood(Vec2{X: 60, Y: 50})

	var eaten []FoodEaten
	Subscribe(s.Events(), func(e FoodEaten) { eaten = append(eaten, e) })

	b, _ := s.Blob(bk)
	startRadius := b.Radius

	s.Step(0.1) // moves 10 units straight at the food

	require.Len(t, eaten, 1)
	assert.Equal(t, bk, eaten[0].Blob)
	assert.Equal(t, fk, eaten[0].Food)

	_, ok := s.Food(fk)
	assert.False(t, ok, "eaten food key must miss")
	assert.Equal(t, 0, s.NumFoods())

	b, ok = s.Blob(bk)
	require.True(t, ok)
	assert.Greater(t, b.Radius, startRadius, "eating grows the blob")
	require.Len(t, s.Marks(), 1)
	assert.Equal(t, Vec2{X: 60, Y: 50}, s.Marks()[0].Pos)
}

func TestMarksAgeOut(t *testing.T) {
	s := New(Vec2{X: 200, Y: 200}, WithSeed(5))
	s.SpawnBlob(testBlob(Vec2{X: 50, Y: 50}))
	s.SpawnFood(Vec2{X: 60, Y: 50})

	s.Step(0.1)
	require.Len(t, s.Marks(), 1)

	s.Step(markTTL + 0.1)
	assert.Empty(t, s.Marks())
}

func TestStarvationRetiresBlob(t *testing.T) {
	s := New(Vec2{X: 200, Y: 200}, WithSeed(9))
	b := testBlob(Vec2{X: 50, Y: 50})
	b.Name = "Mog"
	b.MaxHunger = 1
	b.MetabolicRate = 10
	bk := s.SpawnBlob(b)

	var starved []BlobStarved
	Subscribe(s.Events(), func(e BlobStarved) { starved = append(starved, e) })

	s.Step(1)

	require.Len(t, starved, 1)
	assert.Equal(t, bk, starved[0].Key)
	assert.Equal(t, "Mog", starved[0].Name)
	assert.Equal(t, 0, s.NumBlobs())

	_, ok := s.Blob(bk)
	assert.False(t, ok, "starved key must stay retired")
	assert.False(t, s.SetBlobPos(bk, Vec2{X: 1, Y: 1}))
}

func TestSelect(t *testing.T) {
	s := New(Vec2{X: 200, Y: 200}, WithSeed(11))
	bk := s.SpawnBlob(testBlob(Vec2{X: 100, Y: 100}))
	fk := s.SpawnFood(Vec2{X: 20, Y: 20})

	blobs, foods := s.Select(Vec2{X: 103, Y: 100})
	require.Len(t, blobs, 1)
	assert.Equal(t, bk, blobs[0])
	assert.Empty(t, foods)

	blobs, foods = s.Select(Vec2{X: 21, Y: 20})
	assert.Empty(t, blobs)
	require.Len(t, foods, 1)
	assert.Equal(t, fk, foods[0])

	blobs, foods = s.Select(Vec2{X: 190, Y: 190})
	assert.Empty(t, blobs)
	assert.Empty(t, foods)
}

func TestSetBlobPosClampsToField(t *testing.T) {
	s := New(Vec2{X: 100, Y: 100}, WithSeed(13))
	bk := s.SpawnBlob(testBlob(Vec2{X: 50, Y: 50}))

	require.True(t, s.SetBlobPos(bk, Vec2{X: -20, Y: 500}))
	b, _ := s.Blob(bk)
	assert.Equal(t, Vec2{X: 0, Y: 100}, b.Pos)
}

func TestSeededSpawnsAreReproducible(t *testing.T) {
	spawn := func() []Blob {
		s := New(Vec2{X: 300, Y: 300}, WithSeed(42))
		var got []Blob
		for i := 0; i < 10; i++ {
			k := s.SpawnRandomBlob()
			b, ok := s.Blob(k)
			require.True(t, ok)
			got = append(got, *b)
		}
		return got
	}

	assert.Equal(t, spawn(), spawn())
}

func TestEventBusTypeIsolation(t *testing.T) {
	bus := &EventBus{}
	var spawns, eats int
	Subscribe(bus, func(BlobSpawned) { spawns++ })
	Subscribe(bus, func(FoodEaten) { eats++ })

	Publish(bus, BlobSpawned{})
	Publish(bus, BlobSpawned{})
	Publish(bus, BlobStarved{}) // nobody listens; dropped

	assert.Equal(t, 2, spawns)
	assert.Equal(t, 0, eats)
}
