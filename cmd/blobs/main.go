// Blobs: a terminal ecology. Blobs roam, hunt food inside their sight cone
// and starve without it. Click a blob to select it and drag it around; space
// spawns another one.
package main

import (
	_ "embed"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	"github.com/sorane/keyedset"
	"github.com/sorane/keyedset/sim"
)

//go:embed names.txt
var namesFile string

// World units per terminal cell. Cells are roughly twice as tall as wide, so
// the vertical scale doubles to keep blobs round on screen.
const (
	cellW = 8.0
	cellH = 16.0
)

const sampleRate = beep.SampleRate(44100)

type options struct {
	startBlobs int
	startFoods int
	seed       uint64
	blobEvery  time.Duration
	foodEvery  time.Duration
	mute       bool
}

// selection is the set of blobs grabbed by the mouse, with their positions
// captured at grab time so dragging applies the same offset to all of them.
type selection struct {
	startMouse sim.Vec2
	blobs      map[keyedset.Key[sim.Blob]]sim.Vec2
}

type game struct {
	screen tcell.Screen
	world  *sim.Simulation
	names  []string
	opts   options

	sel           *selection
	nextBlobSpawn time.Time
	nextFoodSpawn time.Time
	lastFrame     time.Time

	audioInit bool
}

func newGame(opts options) (*game, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.EnableMouse()

	w, h := screen.Size()
	var simOpts []sim.Option
	if opts.seed != 0 {
		simOpts = append(simOpts, sim.WithSeed(opts.seed))
	}
	g := &game{
		screen: screen,
		world:  sim.New(sim.Vec2{X: float64(w) * cellW, Y: float64(h) * cellH}, simOpts...),
		names:  strings.Fields(namesFile),
		opts:   opts,
	}

	if !opts.mute {
		// Non-fatal, the demo runs silent without a device.
		if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err == nil {
			g.audioInit = true
		}
	}
	sim.Subscribe(g.world.Events(), func(sim.FoodEaten) { g.blip(880) })
	sim.Subscribe(g.world.Events(), func(sim.BlobStarved) { g.blip(220) })

	for i := 0; i < opts.startBlobs; i++ {
		g.spawnNamedBlob()
	}
	for i := 0; i < opts.startFoods; i++ {
		g.world.SpawnRandomFood()
	}
	now := time.Now()
	g.lastFrame = now
	g.nextBlobSpawn = now.Add(opts.blobEvery)
	g.nextFoodSpawn = now.Add(opts.foodEvery)
	return g, nil
}

func (g *game) blip(freq float64) {
	if !g.audioInit {
		return
	}
	sine, err := generators.SineTone(sampleRate, freq)
	if err != nil {
		return
	}
	speaker.Play(beep.Take(sampleRate.N(50*time.Millisecond), sine))
}

func (g *game) spawnNamedBlob() {
	k := g.world.SpawnRandomBlob()
	if b, ok := g.world.Blob(k); ok {
		b.Name = g.names[rand.IntN(len(g.names))]
	}
}

func (g *game) run() {
	ticker := time.NewTicker(16 * time.Millisecond)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			events <- g.screen.PollEvent()
		}
	}()

	for {
		select {
		case ev := <-events:
			if !g.handleInput(ev) {
				return
			}
		case <-ticker.C:
			g.tick()
			g.draw()
		}
	}
}

func (g *game) tick() {
	now := time.Now()
	dt := now.Sub(g.lastFrame).Seconds()
	g.lastFrame = now

	g.world.Step(dt)

	if now.After(g.nextBlobSpawn) {
		g.nextBlobSpawn = now.Add(g.opts.blobEvery)
		g.spawnNamedBlob()
	}
	if now.After(g.nextFoodSpawn) {
		g.nextFoodSpawn = now.Add(g.opts.foodEvery)
		g.world.SpawnRandomFood()
	}
}

func (g *game) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC:
			return false
		case ev.Rune() == ' ':
			g.spawnNamedBlob()
		}
	case *tcell.EventMouse:
		g.handleMouse(ev)
	case *tcell.EventResize:
		g.screen.Sync()
	}
	return true
}

func (g *game) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	mouse := sim.Vec2{X: float64(x) * cellW, Y: float64(y) * cellH}

	if ev.Buttons()&tcell.Button1 == 0 {
		g.sel = nil
		return
	}
	if g.sel == nil {
		keys, _ := g.world.Select(mouse)
		sel := &selection{startMouse: mouse, blobs: make(map[keyedset.Key[sim.Blob]]sim.Vec2, len(keys))}
		for _, k := range keys {
			if b, ok := g.world.Blob(k); ok {
				sel.blobs[k] = b.Pos
			}
		}
		g.sel = sel
		return
	}
	offset := mouse.Sub(g.sel.startMouse)
	for k, start := range g.sel.blobs {
		// Misses are blobs that starved mid-drag; just skip them.
		g.world.SetBlobPos(k, start.Add(offset))
	}
}

func (g *game) draw() {
	g.screen.Clear()
	w, h := g.screen.Size()

	foodStyle := tcell.StyleDefault.Foreground(tcell.ColorGreen)
	for _, f := range g.world.Foods() {
		cx, cy := int(f.Pos.X/cellW), int(f.Pos.Y/cellH)
		if cx >= 0 && cx < w && cy >= 0 && cy < h {
			g.screen.SetContent(cx, cy, '·', nil, foodStyle)
		}
	}

	for _, m := range g.world.Marks() {
		cx, cy := int(m.Pos.X/cellW), int(m.Pos.Y/cellH)
		if cx >= 0 && cx < w && cy >= 0 && cy < h {
			g.screen.SetContent(cx, cy, '✦', nil, tcell.StyleDefault.Foreground(tcell.ColorYellow))
		}
	}

	for k, b := range g.world.Blobs() {
		g.drawBlob(k, b, w, h)
	}

	g.drawOverlay(w, h)
	g.screen.Show()
}

func (g *game) drawBlob(k keyedset.Key[sim.Blob], b *sim.Blob, w, h int) {
	style := tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(b.Color.R), int32(b.Color.G), int32(b.Color.B)))
	_, selected := g.selectedBlobs()[k]
	if selected {
		style = style.Reverse(true)
	}

	cx, cy := b.Pos.X/cellW, b.Pos.Y/cellH
	rx, ry := b.Radius/cellW, b.Radius/cellH
	for y := int(cy - ry); y <= int(cy+ry); y++ {
		for x := int(cx - rx); x <= int(cx+rx); x++ {
			if x < 0 || x >= w || y < 0 || y >= h {
				continue
			}
			dx, dy := (float64(x)-cx)/max(rx, 0.5), (float64(y)-cy)/max(ry, 0.5)
			if dx*dx+dy*dy <= 1 {
				g.screen.SetContent(x, y, '█', nil, style)
			}
		}
	}
	if b.Name != "" {
		icx, icy := int(cx), int(cy)
		if icx >= 0 && icx < w && icy >= 0 && icy < h {
			g.screen.SetContent(icx, icy, []rune(b.Name)[0], nil, style.Reverse(!selected).Bold(true))
		}
	}
}

func (g *game) selectedBlobs() map[keyedset.Key[sim.Blob]]sim.Vec2 {
	if g.sel == nil {
		return nil
	}
	return g.sel.blobs
}

func (g *game) drawOverlay(w, h int) {
	textStyle := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	y := 0
	for k := range g.selectedBlobs() {
		b, ok := g.world.Blob(k)
		if !ok {
			continue // starved while selected
		}
		line := fmt.Sprintf("%s  Speed: %.0f Pov: %.0f Depth: %.0f", b.Name, b.Speed, b.Pov, b.SightDepth())
		g.drawText(1, y, line, textStyle, w)
		y++
	}

	status := fmt.Sprintf(" blobs: %d  food: %d  [space] spawn  [esc] quit ", g.world.NumBlobs(), g.world.NumFoods())
	g.drawText(0, h-1, status, tcell.StyleDefault.Reverse(true), w)
}

func (g *game) drawText(x, y int, s string, style tcell.Style, w int) {
	for _, r := range s {
		if x >= w {
			return
		}
		g.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func (g *game) cleanup() {
	if g.audioInit {
		speaker.Close()
	}
	g.screen.Fini()
}

func main() {
	var opts options
	flag.IntVar(&opts.startBlobs, "blobs", 10, "initial blob count")
	flag.IntVar(&opts.startFoods, "foods", 100, "initial food count")
	flag.Uint64Var(&opts.seed, "seed", 0, "random seed (0 = nondeterministic)")
	flag.DurationVar(&opts.blobEvery, "blob-every", 500*time.Millisecond, "interval between blob spawns")
	flag.DurationVar(&opts.foodEvery, "food-every", 200*time.Millisecond, "interval between food spawns")
	flag.BoolVar(&opts.mute, "mute", false, "disable audio")
	flag.Parse()

	g, err := newGame(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer g.cleanup()

	g.run()
}
