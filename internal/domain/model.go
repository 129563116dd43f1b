package domain

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// NoKicker is the adjustment-table sentinel for an unidentified kicker.
const NoKicker = "none"

// HighAltitudeVenue is the only home team whose stadium earns the altitude term.
const HighAltitudeVenue = "DEN"

// Terms breaks the linear predictor into its additive parts.
type Terms struct {
	Kicker      float64 `json:"kicker"`
	Smooth      float64 `json:"smooth"`
	Dome        float64 `json:"dome"`
	Turf        float64 `json:"turf"`
	Temperature float64 `json:"temperature"`
	Wind        float64 `json:"wind"`
	Rain        float64 `json:"rain"`
	Altitude    float64 `json:"altitude"`
}

// Evaluation is the full result of scoring one attempt.
type Evaluation struct {
	// Resolved is the merged attempt after home/offense lookups.
	Resolved        Attempt `json:"resolved"`
	Terms           Terms   `json:"terms"`
	LinearPredictor float64 `json:"linear_predictor"`
	Probability     float64 `json:"probability"`
}

// Model scores field-goal attempts against a fixed set of tables. It holds no
// mutable state and is safe for concurrent use.
type Model struct {
	coef    Coefficients
	smooth  map[int]float64
	kickers map[string]float64
	teams   map[string]Team
	codes   []string
}

// NewModel validates t and builds a Model from a private copy of it.
func NewModel(t Tables) (*Model, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	m := &Model{
		coef:    t.Parametric,
		smooth:  make(map[int]float64, len(t.Smooth)),
		kickers: make(map[string]float64, len(t.Kickers)),
		teams:   make(map[string]Team, len(t.Teams)),
		codes:   make([]string, 0, len(t.Teams)),
	}
	for y, term := range t.Smooth {
		m.smooth[y] = term
	}
	for code, adj := range t.Kickers {
		m.kickers[normalizeCode(code)] = adj
	}
	for _, team := range t.Teams {
		key := normalizeCode(team.Code)
		m.teams[key] = team
		m.codes = append(m.codes, key)
	}
	sort.Strings(m.codes)
	return m, nil
}

var defaultModel = sync.OnceValues(func() (*Model, error) {
	t, err := DefaultTables()
	if err != nil {
		return nil, err
	}
	return NewModel(t)
})

// DefaultModel returns the shared Model built from the embedded tables.
func DefaultModel() (*Model, error) {
	return defaultModel()
}

// LoadModel builds a Model from the YAML tables at path, or returns
// DefaultModel when path is empty.
func LoadModel(path string) (*Model, error) {
	if path == "" {
		return DefaultModel()
	}
	t, err := LoadTables(path)
	if err != nil {
		return nil, err
	}
	return NewModel(t)
}

// Coefficients returns the parametric coefficients.
func (m *Model) Coefficients() Coefficients { return m.coef }

// Team looks up a team by code, ignoring case and surrounding space.
func (m *Model) Team(code string) (Team, error) {
	key := normalizeCode(code)
	team, ok := m.teams[key]
	if !ok {
		return Team{}, &LookupError{Table: "team code", Key: code}
	}
	return team, nil
}

// Teams returns every team ordered by code.
func (m *Model) Teams() []Team {
	out := make([]Team, 0, len(m.codes))
	for _, code := range m.codes {
		out = append(out, m.teams[code])
	}
	return out
}

// KickerAdjustment returns the adjustment for a kicker code and whether the
// code is in the table. Codes match ignoring case and surrounding space.
// Unknown codes get the "none" adjustment.
func (m *Model) KickerAdjustment(code string) (float64, bool) {
	adj, ok := m.kickers[normalizeCode(code)]
	if !ok {
		return m.kickers[normalizeCode(NoKicker)], false
	}
	return adj, true
}

// Probability returns the make probability for base with each overrides
// record applied in order. base is not modified.
func (m *Model) Probability(base Attempt, overrides ...Attempt) (float64, error) {
	ev, err := m.Evaluate(base, overrides...)
	if err != nil {
		return 0, err
	}
	return ev.Probability, nil
}

// Evaluate scores an attempt and returns the probability together with the
// resolved inputs and every predictor term.
func (m *Model) Evaluate(base Attempt, overrides ...Attempt) (Evaluation, error) {
	a := base.Merge(Attempt{})
	for _, o := range overrides {
		a = a.Merge(o)
	}

	if a.Home != nil {
		team, err := m.Team(*a.Home)
		if err != nil {
			return Evaluation{}, err
		}
		a.Home = Ptr(team.Code)
		a.IsDome = Ptr(team.Indoor())
		a.IsTurf = Ptr(team.Turf())
	}
	if a.Offense != nil {
		team, err := m.Team(*a.Offense)
		if err != nil {
			return Evaluation{}, err
		}
		a.Offense = Ptr(team.Code)
		a.KickerCode = Ptr(team.KickerCode)
	}

	in, err := a.inputs()
	if err != nil {
		return Evaluation{}, err
	}

	smooth, err := m.smoothTerm(in.yfog)
	if err != nil {
		return Evaluation{}, err
	}
	kicker, _ := m.KickerAdjustment(in.kickerCode)

	c := m.coef
	terms := Terms{
		Kicker: kicker,
		Smooth: smooth,
		Dome:   c.IsDomeTRUE * indicator(in.dome),
		Turf:   c.IsTurfTRUE * indicator(in.turf),
	}
	if !in.dome {
		terms.Temperature = c.SqrtGameTemp * math.Sqrt(clamp(in.temp, 0, 100))
		terms.Wind = c.SqrtWindSpeed * math.Sqrt(in.wind)
		terms.Rain = c.IsRainingTRUE * (math.Min(50, in.chanceOfRain) / 50)
	}
	if in.home == HighAltitudeVenue {
		terms.Altitude = c.HighAltitudeTRUE
	}

	// Summed in the order the model was published in.
	lp := terms.Kicker + terms.Smooth + terms.Dome + terms.Turf +
		terms.Temperature + terms.Wind + terms.Rain + terms.Altitude

	return Evaluation{
		Resolved:        a,
		Terms:           terms,
		LinearPredictor: lp,
		Probability:     roundProbability(logistic(lp)),
	}, nil
}

func (m *Model) smoothTerm(yfog float64) (float64, error) {
	if yfog != math.Trunc(yfog) || yfog < MinYFOG || yfog > MaxYFOG {
		return 0, &LookupError{Table: "distance", Key: strconv.FormatFloat(yfog, 'f', -1, 64)}
	}
	term, ok := m.smooth[int(yfog)]
	if !ok {
		return 0, &LookupError{Table: "distance", Key: strconv.Itoa(int(yfog))}
	}
	return term, nil
}

// resolvedInputs is a fully populated attempt ready for scoring.
type resolvedInputs struct {
	kickerCode   string
	temp         float64
	wind         float64
	yfog         float64
	chanceOfRain float64
	dome         bool
	turf         bool
	home         string
}

func (a Attempt) inputs() (resolvedInputs, error) {
	in := resolvedInputs{kickerCode: NoKicker}
	if a.KickerCode != nil {
		in.kickerCode = *a.KickerCode
	}
	if a.Home != nil {
		in.home = *a.Home
	}

	numbers := []struct {
		name string
		src  *float64
		dst  *float64
	}{
		{"temp", a.Temp, &in.temp},
		{"wind", a.Wind, &in.wind},
		{"chanceOfRain", a.ChanceOfRain, &in.chanceOfRain},
		{"yfog", a.YFOG, &in.yfog},
	}
	for _, n := range numbers {
		if n.src == nil {
			return resolvedInputs{}, missing(n.name)
		}
		if math.IsNaN(*n.src) || math.IsInf(*n.src, 0) {
			return resolvedInputs{}, &ValidationError{Field: n.name, Reason: "must be a finite number"}
		}
		*n.dst = *n.src
	}
	if in.wind < 0 {
		return resolvedInputs{}, &ValidationError{Field: "wind", Reason: "must be non-negative"}
	}

	if a.IsDome == nil {
		return resolvedInputs{}, &ValidationError{Field: "is_dome", Reason: "required unless home is set"}
	}
	if a.IsTurf == nil {
		return resolvedInputs{}, &ValidationError{Field: "is_turf", Reason: "required unless home is set"}
	}
	in.dome = *a.IsDome
	in.turf = *a.IsTurf

	return in, nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func indicator(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func logistic(lp float64) float64 {
	e := math.Exp(lp)
	if math.IsInf(e, 1) {
		return 1
	}
	return e / (1 + e)
}

// roundProbability rounds to the nearest 0.00001.
func roundProbability(p float64) float64 {
	return math.Round(p*1e5) / 1e5
}
