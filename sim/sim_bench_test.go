package sim

import (
	"fmt"
	"testing"
)

func BenchmarkStep(b *testing.B) {
	sizes := []struct{ blobs, foods int }{
		{10, 100},
		{100, 1000},
		{500, 5000},
	}
	for _, size := range sizes {
		b.Run(fmt.Sprintf("%dblobs_%dfoods", size.blobs, size.foods), func(b *testing.B) {
			s := New(Vec2{X: 2000, Y: 2000}, WithSeed(1))
			for i := 0; i < size.blobs; i++ {
				s.SpawnRandomBlob()
			}
			for i := 0; i < size.foods; i++ {
				s.SpawnRandomFood()
			}
			b.ReportAllocs()
			for b.Loop() {
				s.Step(1.0 / 60)
			}
		})
	}
}
