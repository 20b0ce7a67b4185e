// Stress test measuring step time as the box pyramid grows
package main

import (
	"fmt"
	"time"

	"phys2d/internal/collision"
	"phys2d/internal/dynamics"
	"phys2d/internal/vmath"
)

func main() {
	// Pyramid heights to test
	testRows := []int{5, 10, 15, 20, 25, 30}

	for _, rows := range testRows {
		stepPyramid(rows)
	}
}

func stepPyramid(rows int) {
	world := dynamics.NewWorld(dynamics.DefaultWorldDef())

	groundDef := dynamics.DefaultBodyDef()
	groundDef.Position = vmath.V(0, -1)
	ground := world.CreateBody(&groundDef)
	gs := dynamics.DefaultShapeDef(collision.NewBox(100, 1))
	gs.Friction = 0.6
	ground.CreateShape(&gs)

	bodies := 1
	for row := 0; row < rows; row++ {
		for col := 0; col <= row; col++ {
			def := dynamics.DefaultBodyDef()
			def.Position = vmath.V(
				float64(col)-0.5*float64(row),
				float64(rows-row)*1.05+0.5,
			)
			b := world.CreateBody(&def)
			sd := dynamics.DefaultShapeDef(collision.NewBox(0.5, 0.5))
			sd.Density = 1
			sd.Friction = 0.5
			b.CreateShape(&sd)
			b.SetMassFromShapes()
			bodies++
		}
	}

	// Warm up: let the stack settle into contact.
	const warmupSteps = 10
	for i := 0; i < warmupSteps; i++ {
		world.Step(1.0/60.0, 10)
	}

	const steps = 120
	start := time.Now()
	for i := 0; i < steps; i++ {
		world.Step(1.0/60.0, 10)
	}
	perStep := time.Since(start) / steps

	fmt.Printf("%2d rows (%4d bodies, %4d contacts): %8v/step | max position iters %d\n",
		rows, bodies, world.ContactCount(), perStep.Round(time.Microsecond),
		world.PositionIterationCount())
}
