package scene

import (
	"path/filepath"
	"testing"
)

func testFile() *File {
	return &File{
		Name: "test",
		World: WorldDef{
			Gravity:     [2]float64{0, -10},
			BoundsLower: [2]float64{-100, -100},
			BoundsUpper: [2]float64{100, 100},
		},
		Bodies: []BodyDef{
			{
				Name:   "ground",
				Static: true,
				Shapes: []ShapeDef{
					{Type: "box", HalfWidth: 50, HalfHeight: 1, Friction: 0.6},
				},
			},
			{
				Name:     "crate",
				Position: [2]float64{0, 4},
				Shapes: []ShapeDef{
					{Type: "box", HalfWidth: 0.5, HalfHeight: 0.5, Friction: 0.4, Density: 1},
				},
			},
			{
				Name:     "ball",
				Position: [2]float64{2, 6},
				Shapes: []ShapeDef{
					{Type: "circle", Radius: 0.5, Friction: 0.3, Density: 2},
				},
			},
		},
		Joints: []JointDef{
			{
				Type:    "distance",
				BodyA:   "ground",
				BodyB:   "crate",
				AnchorA: [2]float64{0, 8},
				AnchorB: [2]float64{0, 4},
			},
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.json")

	if err := SaveFile(testFile(), path); err != nil {
		t.Fatalf("SaveFile failed: %v", err)
	}
	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if loaded.Name != "test" {
		t.Errorf("Expected name test, got %q", loaded.Name)
	}
	if len(loaded.Bodies) != 3 {
		t.Errorf("Expected 3 bodies, got %d", len(loaded.Bodies))
	}
	if len(loaded.Joints) != 1 {
		t.Errorf("Expected 1 joint, got %d", len(loaded.Joints))
	}
	if loaded.World.Gravity != [2]float64{0, -10} {
		t.Errorf("Expected gravity (0,-10), got %v", loaded.World.Gravity)
	}
	if loaded.Bodies[2].Shapes[0].Type != "circle" {
		t.Errorf("Expected circle shape, got %q", loaded.Bodies[2].Shapes[0].Type)
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("Expected an error for a missing file")
	}
}

func TestBuild(t *testing.T) {
	world, err := Build(testFile())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	// The world adds its own ground body for joint anchoring.
	if world.BodyCount() != 4 {
		t.Errorf("Expected 4 bodies, got %d", world.BodyCount())
	}
	if world.JointCount() != 1 {
		t.Errorf("Expected 1 joint, got %d", world.JointCount())
	}

	var static, dynamic int
	for b := world.BodyList(); b != nil; b = b.Next() {
		if b.IsStatic() {
			static++
		} else {
			dynamic++
		}
	}
	if dynamic != 2 {
		t.Errorf("Expected 2 dynamic bodies, got %d", dynamic)
	}
	if static != 2 {
		t.Errorf("Expected 2 static bodies (ground + world anchor), got %d", static)
	}

	// The built world must actually step.
	for i := 0; i < 60; i++ {
		world.Step(1.0/60.0, 10)
	}
	for b := world.BodyList(); b != nil; b = b.Next() {
		if name, ok := b.UserData.(string); ok && name == "ball" {
			if y := b.Position().Y; y > 6 {
				t.Errorf("Expected the ball to fall, y=%v", y)
			}
		}
	}
}

func TestBuildRejectsBadInput(t *testing.T) {
	f := testFile()
	f.Bodies[1].Shapes[0].Type = "triangle"
	if _, err := Build(f); err == nil {
		t.Error("Expected an error for an unknown shape type")
	}

	f = testFile()
	f.Joints[0].BodyB = "missing"
	if _, err := Build(f); err == nil {
		t.Error("Expected an error for a dangling joint reference")
	}

	f = testFile()
	f.Bodies[1].Name = "ground"
	if _, err := Build(f); err == nil {
		t.Error("Expected an error for duplicate body names")
	}
}
