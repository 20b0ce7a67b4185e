package dynamics

import (
	"math"

	"phys2d/internal/collision"
)

// Contact flags.
const (
	// contactFlagNonSolid marks sensor pairs: events fire but no impulses.
	contactFlagNonSolid uint32 = 1 << iota
	// contactFlagSlow marks pairs moving too slowly to tunnel this step;
	// the continuous-collision scan skips them.
	contactFlagSlow
	// contactFlagIsland marks graph nodes already visited by the island
	// builder.
	contactFlagIsland
	// contactFlagTOI marks a valid cached time of impact.
	contactFlagTOI
	// contactFlagFilter requests a filtering re-check on the next refresh.
	contactFlagFilter
)

// ContactEdge links a contact into a body's contact list. Each contact owns
// two edges, one per body, so the island builder can walk from a body to its
// neighbors in the constraint graph.
type ContactEdge struct {
	Other      *Body
	Contact    *Contact
	Prev, Next *ContactEdge
}

// Contact is a potential or actual touching pair of shapes. Contacts exist
// for every overlapping broad-phase pair; PointCount distinguishes the ones
// actually touching.
type Contact struct {
	flags      uint32
	prev, next *Contact

	edgeA, edgeB   ContactEdge
	shapeA, shapeB *Shape

	manifold collision.Manifold

	// toi caches the time-of-impact fraction while contactFlagTOI is set.
	toi float64

	friction    float64
	restitution float64
}

func newContact(shapeA, shapeB *Shape) *Contact {
	// Keep polygons in the A slot so the narrow phase has one mixed case.
	if _, aIsCircle := shapeA.geometry.(*collision.Circle); aIsCircle {
		if _, bIsPoly := shapeB.geometry.(*collision.Polygon); bIsPoly {
			shapeA, shapeB = shapeB, shapeA
		}
	}

	c := &Contact{
		shapeA:      shapeA,
		shapeB:      shapeB,
		friction:    math.Sqrt(shapeA.Friction * shapeB.Friction),
		restitution: math.Max(shapeA.Restitution, shapeB.Restitution),
	}
	if shapeA.sensor || shapeB.sensor {
		c.flags |= contactFlagNonSolid
	}
	c.edgeA.Contact = c
	c.edgeA.Other = shapeB.body
	c.edgeB.Contact = c
	c.edgeB.Other = shapeA.body
	return c
}

func (c *Contact) ShapeA() *Shape                { return c.shapeA }
func (c *Contact) ShapeB() *Shape                { return c.shapeB }
func (c *Contact) BodyA() *Body                  { return c.shapeA.body }
func (c *Contact) BodyB() *Body                  { return c.shapeB.body }
func (c *Contact) Manifold() *collision.Manifold { return &c.manifold }
func (c *Contact) Next() *Contact                { return c.next }

// IsTouching reports whether the last refresh produced contact points.
func (c *Contact) IsTouching() bool { return c.manifold.PointCount > 0 }

// IsSolid reports whether the contact generates impulses; sensor pairs do
// not.
func (c *Contact) IsSolid() bool { return c.flags&contactFlagNonSolid == 0 }

// WorldManifold evaluates the manifold at the bodies' current transforms.
func (c *Contact) WorldManifold() collision.WorldManifold {
	var wm collision.WorldManifold
	wm.Initialize(&c.manifold,
		c.shapeA.body.xf, c.shapeA.geometry.Radius(),
		c.shapeB.body.xf, c.shapeB.geometry.Radius())
	return wm
}

// evaluate runs the narrow phase for the current transforms into m.
func (c *Contact) evaluate(m *collision.Manifold) {
	xfA := c.shapeA.body.xf
	xfB := c.shapeB.body.xf
	switch a := c.shapeA.geometry.(type) {
	case *collision.Circle:
		// Contact construction keeps polygons in slot A, so B is a circle.
		collision.CollideCircles(m, a, xfA, c.shapeB.geometry.(*collision.Circle), xfB)
	case *collision.Polygon:
		switch b := c.shapeB.geometry.(type) {
		case *collision.Circle:
			collision.CollidePolygonAndCircle(m, a, xfA, b, xfB)
		case *collision.Polygon:
			collision.CollidePolygons(m, a, xfA, b, xfB)
		}
	}
}

// update recomputes the manifold, carries accumulated impulses across by
// feature id, and reports begin/persist/end transitions to the listener.
func (c *Contact) update(listener ContactListener) {
	old := c.manifold
	wasTouching := old.PointCount > 0

	var m collision.Manifold
	c.evaluate(&m)

	for i := 0; i < m.PointCount; i++ {
		mp := &m.Points[i]
		for j := 0; j < old.PointCount; j++ {
			if old.Points[j].ID == mp.ID {
				mp.NormalImpulse = old.Points[j].NormalImpulse
				mp.TangentImpulse = old.Points[j].TangentImpulse
				break
			}
		}
	}
	c.manifold = m
	touching := m.PointCount > 0

	if touching != wasTouching {
		c.shapeA.body.WakeUp()
		c.shapeB.body.WakeUp()
	}

	if listener == nil {
		return
	}
	switch {
	case touching && !wasTouching:
		listener.Begin(c)
	case !touching && wasTouching:
		listener.End(c)
	case touching:
		listener.Persist(c)
	}
}
