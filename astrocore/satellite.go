package astrocore

// PropulsionSystem is an optional onboard thruster configuration: thrust
// magnitude in newtons and specific impulse in seconds.
type PropulsionSystem struct {
	ThrustNewtons          float64
	SpecificImpulseSeconds float64
}

// SatelliteSystem is the dry-mass, geometry, and optional-propulsion
// description of a vehicle.
type SatelliteSystem struct {
	Name              string
	DryMassKg         float64
	SurfaceAreaM2     float64
	DragCoefficient   float64
	InertiaKgM2       [3]float64
	Propulsion        *PropulsionSystem
}

// HasPropulsion reports whether this satellite carries a thruster.
func (s SatelliteSystem) HasPropulsion() bool {
	return s.Propulsion != nil
}
