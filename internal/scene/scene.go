// Package scene loads and saves JSON descriptions of physics worlds.
package scene

import (
	"encoding/json"
	"fmt"
	"os"

	"phys2d/internal/collision"
	"phys2d/internal/dynamics"
	"phys2d/internal/vmath"
)

// --- JSON types ---

type File struct {
	Name   string     `json:"name,omitempty"`
	World  WorldDef   `json:"world"`
	Bodies []BodyDef  `json:"bodies"`
	Joints []JointDef `json:"joints,omitempty"`
}

type WorldDef struct {
	Gravity       [2]float64 `json:"gravity"`
	BoundsLower   [2]float64 `json:"boundsLower"`
	BoundsUpper   [2]float64 `json:"boundsUpper"`
	AllowSleeping *bool      `json:"allowSleeping,omitempty"`
}

type BodyDef struct {
	Name            string     `json:"name,omitempty"`
	Static          bool       `json:"static,omitempty"`
	Position        [2]float64 `json:"position"`
	Angle           float64    `json:"angle,omitempty"`
	LinearVelocity  [2]float64 `json:"linearVelocity,omitempty"`
	AngularVelocity float64    `json:"angularVelocity,omitempty"`
	LinearDamping   float64    `json:"linearDamping,omitempty"`
	AngularDamping  float64    `json:"angularDamping,omitempty"`
	FixedRotation   bool       `json:"fixedRotation,omitempty"`
	Shapes          []ShapeDef `json:"shapes"`
}

type ShapeDef struct {
	// Type is "box" or "circle".
	Type string `json:"type"`

	// Box half-extents.
	HalfWidth  float64 `json:"halfWidth,omitempty"`
	HalfHeight float64 `json:"halfHeight,omitempty"`

	// Circle geometry.
	Radius float64    `json:"radius,omitempty"`
	Center [2]float64 `json:"center,omitempty"`

	Friction    float64 `json:"friction"`
	Restitution float64 `json:"restitution,omitempty"`
	Density     float64 `json:"density,omitempty"`
	IsSensor    bool    `json:"isSensor,omitempty"`
}

type JointDef struct {
	// Type is "distance", the only serializable joint kind.
	Type         string     `json:"type"`
	BodyA        string     `json:"bodyA"`
	BodyB        string     `json:"bodyB"`
	AnchorA      [2]float64 `json:"anchorA"`
	AnchorB      [2]float64 `json:"anchorB"`
	FrequencyHz  float64    `json:"frequencyHz,omitempty"`
	DampingRatio float64    `json:"dampingRatio,omitempty"`
}

// --- Loading ---

// LoadFile reads a scene file from disk.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}
	return &f, nil
}

// SaveFile writes a scene file to disk.
func SaveFile(f *File, path string) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal scene: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write scene: %w", err)
	}
	return nil
}

// Build instantiates a world from a scene description.
func Build(f *File) (*dynamics.World, error) {
	def := dynamics.DefaultWorldDef()
	def.Gravity = vmath.V(f.World.Gravity[0], f.World.Gravity[1])
	if f.World.BoundsLower != f.World.BoundsUpper {
		def.Bounds = collision.AABB{
			Lower: vmath.V(f.World.BoundsLower[0], f.World.BoundsLower[1]),
			Upper: vmath.V(f.World.BoundsUpper[0], f.World.BoundsUpper[1]),
		}
	}
	if f.World.AllowSleeping != nil {
		def.AllowSleeping = *f.World.AllowSleeping
	}
	world := dynamics.NewWorld(def)

	byName := make(map[string]*dynamics.Body, len(f.Bodies))
	for i := range f.Bodies {
		bd := &f.Bodies[i]

		def := dynamics.DefaultBodyDef()
		def.Position = vmath.V(bd.Position[0], bd.Position[1])
		def.Angle = bd.Angle
		def.LinearVelocity = vmath.V(bd.LinearVelocity[0], bd.LinearVelocity[1])
		def.AngularVelocity = bd.AngularVelocity
		def.LinearDamping = bd.LinearDamping
		def.AngularDamping = bd.AngularDamping
		def.FixedRotation = bd.FixedRotation
		def.UserData = bd.Name

		body := world.CreateBody(&def)
		for _, sd := range bd.Shapes {
			geometry, err := buildGeometry(sd)
			if err != nil {
				return nil, fmt.Errorf("body %q: %w", bd.Name, err)
			}
			shapeDef := dynamics.DefaultShapeDef(geometry)
			if sd.Friction > 0 {
				shapeDef.Friction = sd.Friction
			}
			shapeDef.Restitution = sd.Restitution
			shapeDef.Density = sd.Density
			shapeDef.IsSensor = sd.IsSensor
			body.CreateShape(&shapeDef)
		}
		if !bd.Static {
			body.SetMassFromShapes()
		}

		if bd.Name != "" {
			if _, dup := byName[bd.Name]; dup {
				return nil, fmt.Errorf("duplicate body name %q", bd.Name)
			}
			byName[bd.Name] = body
		}
	}

	for _, jd := range f.Joints {
		if jd.Type != "distance" {
			return nil, fmt.Errorf("unknown joint type %q", jd.Type)
		}
		bodyA, okA := byName[jd.BodyA]
		bodyB, okB := byName[jd.BodyB]
		if !okA || !okB {
			return nil, fmt.Errorf("joint references unknown body %q/%q", jd.BodyA, jd.BodyB)
		}
		def := dynamics.InitDistanceJointDef(bodyA, bodyB,
			vmath.V(jd.AnchorA[0], jd.AnchorA[1]),
			vmath.V(jd.AnchorB[0], jd.AnchorB[1]))
		def.FrequencyHz = jd.FrequencyHz
		def.DampingRatio = jd.DampingRatio
		world.CreateJoint(def)
	}

	return world, nil
}

func buildGeometry(sd ShapeDef) (collision.Shape, error) {
	switch sd.Type {
	case "box":
		if sd.HalfWidth <= 0 || sd.HalfHeight <= 0 {
			return nil, fmt.Errorf("box needs positive half extents")
		}
		if sd.Center != [2]float64{} {
			return collision.NewOffsetBox(sd.HalfWidth, sd.HalfHeight, vmath.V(sd.Center[0], sd.Center[1]), 0), nil
		}
		return collision.NewBox(sd.HalfWidth, sd.HalfHeight), nil
	case "circle":
		if sd.Radius <= 0 {
			return nil, fmt.Errorf("circle needs positive radius")
		}
		return &collision.Circle{Position: vmath.V(sd.Center[0], sd.Center[1]), R: sd.Radius}, nil
	default:
		return nil, fmt.Errorf("unknown shape type %q", sd.Type)
	}
}
