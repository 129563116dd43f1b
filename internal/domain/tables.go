package domain

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MinYFOG and MaxYFOG bound the smoothing table; every integer between them
// must have a term.
const (
	MinYFOG = 0
	MaxYFOG = 100
)

//go:embed data/model.yaml
var embeddedTables []byte

// Coefficients are the parametric terms of the fitted model.
type Coefficients struct {
	SqrtGameTemp     float64 `json:"sqrtGameTemp"`
	SqrtWindSpeed    float64 `json:"sqrtWindSpeed"`
	IsDomeTRUE       float64 `json:"isDomeTRUE"`
	IsTurfTRUE       float64 `json:"isTurfTRUE"`
	HighAltitudeTRUE float64 `json:"highAltitudeTRUE"`
	IsRainingTRUE    float64 `json:"isRainingTRUE"`
}

// Tables is the complete reference data behind a Model.
type Tables struct {
	Parametric Coefficients
	Smooth     map[int]float64    // yfog -> smoothing term
	Kickers    map[string]float64 // kicker code -> adjustment
	Teams      []Team
}

// tablesFile mirrors data/model.yaml. Parametric is decoded as a map so a
// missing coefficient is detected instead of silently reading as zero.
type tablesFile struct {
	Parametric map[string]float64 `yaml:"parametric"`
	Smooth     map[int]float64    `yaml:"smooth"`
	Kickers    map[string]float64 `yaml:"kickers"`
	Teams      []Team             `yaml:"teams"`
}

// DefaultTables returns the tables shipped with the binary.
func DefaultTables() (Tables, error) {
	return ParseTables(embeddedTables)
}

// LoadTables reads tables from a YAML file with the same schema as the
// embedded data.
func LoadTables(path string) (Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, fmt.Errorf("read model tables: %w", err)
	}
	return ParseTables(data)
}

// ParseTables decodes and validates a YAML tables document.
func ParseTables(data []byte) (Tables, error) {
	var f tablesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Tables{}, fmt.Errorf("parse model tables: %w", err)
	}

	coef, err := parseCoefficients(f.Parametric)
	if err != nil {
		return Tables{}, err
	}

	t := Tables{
		Parametric: coef,
		Smooth:     f.Smooth,
		Kickers:    f.Kickers,
		Teams:      f.Teams,
	}
	if err := t.Validate(); err != nil {
		return Tables{}, err
	}
	return t, nil
}

func parseCoefficients(m map[string]float64) (Coefficients, error) {
	var c Coefficients
	fields := []struct {
		name string
		dst  *float64
	}{
		{"sqrtGameTemp", &c.SqrtGameTemp},
		{"sqrtWindSpeed", &c.SqrtWindSpeed},
		{"isDomeTRUE", &c.IsDomeTRUE},
		{"isTurfTRUE", &c.IsTurfTRUE},
		{"highAltitudeTRUE", &c.HighAltitudeTRUE},
		{"isRainingTRUE", &c.IsRainingTRUE},
	}
	for _, f := range fields {
		v, ok := m[f.name]
		if !ok {
			return Coefficients{}, fmt.Errorf("model tables: missing parametric coefficient %q", f.name)
		}
		*f.dst = v
	}
	return c, nil
}

// Validate checks that the smoothing table covers every yfog in range, that
// the "none" kicker exists, and that every team row is well formed with a
// unique code.
func (t Tables) Validate() error {
	var errs []error

	for y := MinYFOG; y <= MaxYFOG; y++ {
		if _, ok := t.Smooth[y]; !ok {
			errs = append(errs, fmt.Errorf("smooth: no term for yfog %d", y))
		}
	}
	if _, ok := t.Kickers[NoKicker]; !ok {
		errs = append(errs, fmt.Errorf("kickers: missing %q sentinel", NoKicker))
	}

	seen := make(map[string]bool, len(t.Teams))
	for i, team := range t.Teams {
		switch {
		case team.Code == "":
			errs = append(errs, fmt.Errorf("teams[%d]: empty code", i))
			continue
		case seen[team.Code]:
			errs = append(errs, fmt.Errorf("teams[%d]: duplicate code %q", i, team.Code))
		}
		seen[team.Code] = true
		if !team.Roof.valid() {
			errs = append(errs, fmt.Errorf("teams[%d] %s: invalid roof %q", i, team.Code, team.Roof))
		}
		if !team.Surface.valid() {
			errs = append(errs, fmt.Errorf("teams[%d] %s: invalid surface %q", i, team.Code, team.Surface))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("model tables: %w", errors.Join(errs...))
	}
	return nil
}
