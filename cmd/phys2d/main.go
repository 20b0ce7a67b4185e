// Interactive sandbox for the physics engine: renders the world with
// raylib, exposes the solver toggles through a raygui panel and lets the
// mouse drag bodies around.
package main

import (
	"flag"
	"log"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"phys2d/internal/collision"
	"phys2d/internal/dynamics"
	"phys2d/internal/scene"
	"phys2d/internal/vmath"
)

const (
	screenWidth  = 1280
	screenHeight = 720

	// World-to-screen scale in pixels per meter.
	pixelsPerMeter = 20.0
)

func main() {
	scenePath := flag.String("scene", "", "scene JSON file to load")
	flag.Parse()

	world, err := buildWorld(*scenePath)
	if err != nil {
		log.Fatalf("load scene: %v", err)
	}

	d := &demo{world: world}
	d.run()
}

func buildWorld(path string) (*dynamics.World, error) {
	if path != "" {
		f, err := scene.LoadFile(path)
		if err != nil {
			return nil, err
		}
		log.Printf("loaded scene %q (%d bodies)", f.Name, len(f.Bodies))
		return scene.Build(f)
	}
	return defaultWorld(), nil
}

// defaultWorld is the built-in playground: a ground slab, a box pyramid, a
// couple of balls and a pendulum.
func defaultWorld() *dynamics.World {
	world := dynamics.NewWorld(dynamics.DefaultWorldDef())

	groundDef := dynamics.DefaultBodyDef()
	groundDef.Position = vmath.V(0, -1)
	ground := world.CreateBody(&groundDef)
	groundShape := dynamics.DefaultShapeDef(collision.NewBox(30, 1))
	groundShape.Friction = 0.6
	ground.CreateShape(&groundShape)

	// Pyramid of boxes.
	for row := 0; row < 8; row++ {
		for col := 0; col <= row; col++ {
			def := dynamics.DefaultBodyDef()
			def.Position = vmath.V(float64(col)-0.5*float64(row), float64(8-row)*1.1+0.5)
			b := world.CreateBody(&def)
			sd := dynamics.DefaultShapeDef(collision.NewBox(0.5, 0.5))
			sd.Density = 1
			sd.Friction = 0.4
			b.CreateShape(&sd)
			b.SetMassFromShapes()
		}
	}

	for i := 0; i < 3; i++ {
		def := dynamics.DefaultBodyDef()
		def.Position = vmath.V(-12+float64(i)*2, 12)
		b := world.CreateBody(&def)
		sd := dynamics.DefaultShapeDef(&collision.Circle{R: 0.6})
		sd.Density = 2
		sd.Friction = 0.3
		sd.Restitution = 0.4
		b.CreateShape(&sd)
		b.SetMassFromShapes()
	}

	// Pendulum hanging from the ground body.
	bobDef := dynamics.DefaultBodyDef()
	bobDef.Position = vmath.V(14, 8)
	bob := world.CreateBody(&bobDef)
	bobShape := dynamics.DefaultShapeDef(collision.NewBox(0.4, 0.4))
	bobShape.Density = 1
	bob.CreateShape(&bobShape)
	bob.SetMassFromShapes()
	world.CreateJoint(dynamics.InitDistanceJointDef(ground, bob, vmath.V(14, 12), bob.Position()))

	return world
}

type demo struct {
	world *dynamics.World
	draw  *debugDraw

	mouseJoint *dynamics.MouseJoint

	paused     bool
	singleStep bool
	drawAABBs  bool

	enableTOI          bool
	warmStarting       bool
	positionCorrection bool
}

func (d *demo) run() {
	rl.SetConfigFlags(rl.FlagWindowHighdpi)
	rl.InitWindow(screenWidth, screenHeight, "phys2d sandbox")
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)

	d.enableTOI = true
	d.warmStarting = true
	d.positionCorrection = true

	d.draw = &debugDraw{}
	d.world.SetDebugDraw(d.draw)
	d.world.SetBoundaryListener(logBoundary{})

	for !rl.WindowShouldClose() {
		d.update()

		rl.BeginDrawing()
		rl.ClearBackground(rl.NewColor(24, 24, 32, 255))

		d.draw.flags = dynamics.DrawShapes | dynamics.DrawJoints
		if d.drawAABBs {
			d.draw.flags |= dynamics.DrawAABBs
		}

		if d.paused && !d.singleStep {
			// Zero-dt step still refreshes contacts and redraws.
			d.world.Step(0, 10)
		} else {
			d.world.Step(1.0/60.0, 10)
			d.singleStep = false
		}

		d.drawPanel()
		rl.DrawFPS(10, screenHeight-30)
		rl.EndDrawing()
	}
}

func (d *demo) update() {
	d.world.SetContinuousPhysics(d.enableTOI)
	d.world.SetWarmStarting(d.warmStarting)
	d.world.SetPositionCorrection(d.positionCorrection)

	if rl.IsKeyPressed(rl.KeySpace) {
		d.paused = !d.paused
	}
	if rl.IsKeyPressed(rl.KeyS) {
		d.singleStep = true
	}

	d.updateMouse()
}

func (d *demo) updateMouse() {
	p := screenToWorld(rl.GetMousePosition())

	if rl.IsMouseButtonPressed(rl.MouseLeftButton) && d.mouseJoint == nil {
		if body := d.pickBody(p); body != nil {
			def := dynamics.DefaultMouseJointDef(d.world.GroundBody(), body, p)
			d.mouseJoint = d.world.CreateJoint(def).(*dynamics.MouseJoint)
			body.WakeUp()
		}
	}
	if d.mouseJoint != nil {
		if rl.IsMouseButtonDown(rl.MouseLeftButton) {
			d.mouseJoint.SetTarget(p)
		} else {
			d.world.DestroyJoint(d.mouseJoint)
			d.mouseJoint = nil
		}
	}
}

// pickBody finds a dynamic body under the cursor.
func (d *demo) pickBody(p vmath.Vec2) *dynamics.Body {
	delta := vmath.V(0.001, 0.001)
	aabb := collision.AABB{Lower: p.Sub(delta), Upper: p.Add(delta)}

	var found *dynamics.Body
	d.world.QueryAABB(aabb, func(s *dynamics.Shape) bool {
		if s.Body().IsStatic() || !s.TestPoint(p) {
			return true
		}
		found = s.Body()
		return false
	})
	return found
}

func (d *demo) drawPanel() {
	panel := rl.NewRectangle(10, 10, 210, 150)
	gui.Panel(panel, "solver")

	d.enableTOI = gui.CheckBox(rl.NewRectangle(20, 40, 16, 16), "continuous collision", d.enableTOI)
	d.warmStarting = gui.CheckBox(rl.NewRectangle(20, 64, 16, 16), "warm starting", d.warmStarting)
	d.positionCorrection = gui.CheckBox(rl.NewRectangle(20, 88, 16, 16), "position correction", d.positionCorrection)
	d.drawAABBs = gui.CheckBox(rl.NewRectangle(20, 112, 16, 16), "draw AABBs", d.drawAABBs)
	d.paused = gui.CheckBox(rl.NewRectangle(20, 136, 16, 16), "pause (space)", d.paused)
}

// logBoundary reports bodies escaping the world bounds.
type logBoundary struct{}

func (logBoundary) Violation(b *dynamics.Body) {
	p := b.Position()
	log.Printf("body left world bounds at (%.1f, %.1f); freezing", p.X, p.Y)
}

// --- world/screen mapping ---

func worldToScreen(p vmath.Vec2) rl.Vector2 {
	return rl.NewVector2(
		float32(screenWidth/2+p.X*pixelsPerMeter),
		float32(screenHeight-60-p.Y*pixelsPerMeter),
	)
}

func screenToWorld(v rl.Vector2) vmath.Vec2 {
	return vmath.V(
		(float64(v.X)-screenWidth/2)/pixelsPerMeter,
		(screenHeight-60-float64(v.Y))/pixelsPerMeter,
	)
}

// --- debug draw backend ---

type debugDraw struct {
	flags uint32
}

func (d *debugDraw) Flags() uint32 { return d.flags }

func toRL(c dynamics.Color, alpha uint8) rl.Color {
	return rl.NewColor(uint8(c.R*255), uint8(c.G*255), uint8(c.B*255), alpha)
}

func (d *debugDraw) DrawPolygon(vertices []vmath.Vec2, color Color) {
	n := len(vertices)
	for i := 0; i < n; i++ {
		rl.DrawLineV(worldToScreen(vertices[i]), worldToScreen(vertices[(i+1)%n]), toRL(color, 255))
	}
}

func (d *debugDraw) DrawSolidPolygon(vertices []vmath.Vec2, color Color) {
	// Screen space flips y, so reverse the winding for the fan.
	pts := make([]rl.Vector2, len(vertices))
	for i, v := range vertices {
		pts[len(vertices)-1-i] = worldToScreen(v)
	}
	rl.DrawTriangleFan(pts, toRL(color, 140))
	d.DrawPolygon(vertices, color)
}

func (d *debugDraw) DrawCircle(center vmath.Vec2, radius float64, color Color) {
	c := worldToScreen(center)
	rl.DrawCircleLines(int32(c.X), int32(c.Y), float32(radius*pixelsPerMeter), toRL(color, 255))
}

func (d *debugDraw) DrawSolidCircle(center vmath.Vec2, radius float64, axis vmath.Vec2, color Color) {
	c := worldToScreen(center)
	rl.DrawCircleV(c, float32(radius*pixelsPerMeter), toRL(color, 140))
	rl.DrawCircleLines(int32(c.X), int32(c.Y), float32(radius*pixelsPerMeter), toRL(color, 255))
	edge := center.Add(axis.Scale(radius))
	rl.DrawLineV(c, worldToScreen(edge), toRL(color, 255))
}

func (d *debugDraw) DrawSegment(p1, p2 vmath.Vec2, color Color) {
	rl.DrawLineV(worldToScreen(p1), worldToScreen(p2), toRL(color, 255))
}

func (d *debugDraw) DrawTransform(xf vmath.Transform) {
	const axisLen = 0.5
	o := worldToScreen(xf.P)
	x := worldToScreen(xf.P.Add(xf.R.Col1.Scale(axisLen)))
	y := worldToScreen(xf.P.Add(xf.R.Col2.Scale(axisLen)))
	rl.DrawLineV(o, x, rl.Red)
	rl.DrawLineV(o, y, rl.Green)
}

// Color aliases the engine's debug color type for the local methods.
type Color = dynamics.Color
