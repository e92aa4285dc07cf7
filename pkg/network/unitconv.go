package network

import (
	"github.com/surgeworks/hammercad/pkg/units"
)

// The quantity registry lives with the data records: each kind converts
// exactly the fields it carries, so no runtime field-presence probing
// is needed elsewhere.

// convertUnits converts every dimensional field of the node record,
// including nested schedule-point flows. Friction and schedule numbers
// are dimensionless and untouched.
func (d *NodeData) convertUnits(from, to units.Unit) {
	units.ConvertPtr(d.Elevation, from, to, units.Elevation)
	units.ConvertPtr(d.TankTop, from, to, units.Elevation)
	units.ConvertPtr(d.TankBottom, from, to, units.Elevation)
	units.ConvertPtr(d.Diameter, from, to, units.Diameter)
	units.ConvertPtr(d.Celerity, from, to, units.Celerity)
	for i := range d.Schedule {
		d.Schedule[i].Flow = units.Convert(d.Schedule[i].Flow, from, to, units.Flow)
	}
}

// convertUnits converts every dimensional field of the edge record,
// including variable-geometry profile samples.
func (d *EdgeData) convertUnits(from, to units.Unit) {
	units.ConvertPtr(d.Length, from, to, units.Length)
	units.ConvertPtr(d.Diameter, from, to, units.Diameter)
	units.ConvertPtr(d.Celerity, from, to, units.Celerity)
	for i := range d.Profile {
		d.Profile[i].Distance = units.Convert(d.Profile[i].Distance, from, to, units.Length)
		d.Profile[i].Area = units.Convert(d.Profile[i].Area, from, to, units.Area)
		d.Profile[i].Diameter = units.Convert(d.Profile[i].Diameter, from, to, units.Diameter)
	}
}

// EffectiveUnit returns the unit system the node's fields are held in:
// its own override when pinned, otherwise the global system.
func (n Node) EffectiveUnit(global units.Unit) units.Unit {
	if n.Data.Unit != nil {
		return *n.Data.Unit
	}
	return global
}

// EffectiveUnit returns the unit system the edge's fields are held in.
func (e Edge) EffectiveUnit(global units.Unit) units.Unit {
	if e.Data.Unit != nil {
		return *e.Data.Unit
	}
	return global
}
