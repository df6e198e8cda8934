// Profiling:
// go build ./profile/churn
// go tool pprof -http=":8000" -nodefraction=0.001 ./churn mem.pprof

package main

import (
	"github.com/pkg/profile"

	"github.com/sorane/keyedset"
)

type blob struct {
	X, Y   float64
	Hunger float64
}

func main() {
	rounds := 50
	iters := 10000
	entries := 1000
	p := profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook)
	run(rounds, iters, entries)
	p.Stop()
}

func run(rounds, iters, entries int) {
	for range rounds {
		s := keyedset.New[blob]()
		keys := make([]keyedset.Key[blob], 0, entries)

		for range iters {
			for i := 0; i < entries; i++ {
				keys = append(keys, s.Insert(blob{X: float64(i)}))
			}
			for _, v := range s.All() {
				v.Hunger += v.X
			}
			for _, k := range keys {
				s.Remove(k)
			}
			keys = keys[:0]
		}
	}
}
