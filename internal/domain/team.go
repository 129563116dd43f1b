package domain

// RoofType is a stadium's roof configuration.
type RoofType string

const (
	RoofOpen        RoofType = "open"
	RoofDome        RoofType = "dome"
	RoofRetractable RoofType = "retractable"
)

func (r RoofType) valid() bool {
	switch r {
	case RoofOpen, RoofDome, RoofRetractable:
		return true
	}
	return false
}

// SurfaceType is a stadium's playing surface.
type SurfaceType string

const (
	SurfaceGrass SurfaceType = "grass"
	SurfaceTurf  SurfaceType = "turf"
)

func (s SurfaceType) valid() bool {
	return s == SurfaceGrass || s == SurfaceTurf
}

// Team is one row of the team/venue reference table.
type Team struct {
	Code       string      `yaml:"code" json:"code"`
	City       string      `yaml:"city" json:"city"`
	Name       string      `yaml:"name" json:"name"`
	FullName   string      `yaml:"full_name" json:"full_name"`
	Roof       RoofType    `yaml:"roof" json:"roof"`
	Surface    SurfaceType `yaml:"surface" json:"surface"`
	KickerName string      `yaml:"kicker_name" json:"kicker_name"`
	KickerCode string      `yaml:"kicker_code" json:"kicker_code"`
}

// Indoor reports whether weather is excluded at this venue. Retractable roofs
// count as indoor.
func (t Team) Indoor() bool { return t.Roof != RoofOpen }

// Turf reports whether the venue plays on artificial turf.
func (t Team) Turf() bool { return t.Surface == SurfaceTurf }
