package snooker

import "github.com/playmatatu/snooker/internal/physics"

// Contact is a physics contact bound to the balls it concerns. Raw body
// ids never travel past this file.
type Contact interface {
	contact()
}

// PocketContact is a ball entering a pocket sensor.
type PocketContact struct {
	Ball   *Ball
	Pocket string
}

// BallContact is two balls touching.
type BallContact struct {
	A, B  *Ball
	Speed float64
}

// CushionContact is a ball hitting a rail or jaw.
type CushionContact struct {
	Ball  *Ball
	Speed float64
}

func (PocketContact) contact()  {}
func (BallContact) contact()    {}
func (CushionContact) contact() {}

// bindContacts translates raw contacts. Contacts naming a body that is not
// in the registry are dropped.
func bindContacts(reg *Registry, world Physics, raw []physics.Contact) []Contact {
	out := make([]Contact, 0, len(raw))
	for _, c := range raw {
		a, ok := reg.ByBody(c.A)
		if !ok {
			continue
		}
		switch c.Kind {
		case physics.ContactSensor:
			p, ok := world.Sensor(c.B)
			if !ok {
				continue
			}
			out = append(out, PocketContact{Ball: a, Pocket: p.Name})
		case physics.ContactBody:
			b, ok := reg.ByBody(c.B)
			if !ok {
				continue
			}
			out = append(out, BallContact{A: a, B: b, Speed: c.Speed})
		case physics.ContactCushion:
			out = append(out, CushionContact{Ball: a, Speed: c.Speed})
		}
	}
	return out
}
