package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Attempt describes one field-goal attempt. Every field is optional so that a
// partial Attempt can act as the overrides for another (see [Attempt.Merge]).
// Use [Ptr] to fill fields inline.
type Attempt struct {
	KickerCode   *string  `json:"kicker_code,omitempty"`
	Temp         *float64 `json:"temp,omitempty"`         // degrees Fahrenheit
	Wind         *float64 `json:"wind,omitempty"`         // mph
	YFOG         *float64 `json:"yfog,omitempty"`         // yards from own goal
	ChanceOfRain *float64 `json:"chanceOfRain,omitempty"` // percent
	IsDome       *bool    `json:"is_dome,omitempty"`
	IsTurf       *bool    `json:"is_turf,omitempty"`
	Home         *string  `json:"home,omitempty"`    // home team code
	Offense      *string  `json:"offense,omitempty"` // kicking team code
}

// Ptr returns a pointer to a copy of v.
func Ptr[T any](v T) *T { return &v }

// Merge returns a new Attempt holding a's fields with every field set in
// overrides replacing the corresponding one. Neither input is modified and the
// result shares no pointers with them.
func (a Attempt) Merge(overrides Attempt) Attempt {
	return Attempt{
		KickerCode:   pick(a.KickerCode, overrides.KickerCode),
		Temp:         pick(a.Temp, overrides.Temp),
		Wind:         pick(a.Wind, overrides.Wind),
		YFOG:         pick(a.YFOG, overrides.YFOG),
		ChanceOfRain: pick(a.ChanceOfRain, overrides.ChanceOfRain),
		IsDome:       pick(a.IsDome, overrides.IsDome),
		IsTurf:       pick(a.IsTurf, overrides.IsTurf),
		Home:         pick(a.Home, overrides.Home),
		Offense:      pick(a.Offense, overrides.Offense),
	}
}

func pick[T any](base, override *T) *T {
	switch {
	case override != nil:
		return Ptr(*override)
	case base != nil:
		return Ptr(*base)
	default:
		return nil
	}
}

// attemptWire is the lenient JSON form: numbers may arrive as numeric strings
// ("67") and flags as 0/1 as well as booleans.
type attemptWire struct {
	KickerCode   *string    `json:"kicker_code"`
	Temp         *flexFloat `json:"temp"`
	Wind         *flexFloat `json:"wind"`
	YFOG         *flexFloat `json:"yfog"`
	ChanceOfRain *flexFloat `json:"chanceOfRain"`
	IsDome       *flexBool  `json:"is_dome"`
	IsTurf       *flexBool  `json:"is_turf"`
	Home         *string    `json:"home"`
	Offense      *string    `json:"offense"`
}

// UnmarshalJSON decodes an attempt, accepting numeric strings and 0/1 flags.
func (a *Attempt) UnmarshalJSON(data []byte) error {
	var w attemptWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*a = Attempt{
		KickerCode:   w.KickerCode,
		Temp:         w.Temp.ptr(),
		Wind:         w.Wind.ptr(),
		YFOG:         w.YFOG.ptr(),
		ChanceOfRain: w.ChanceOfRain.ptr(),
		IsDome:       w.IsDome.ptr(),
		IsTurf:       w.IsTurf.ptr(),
		Home:         w.Home,
		Offense:      w.Offense,
	}
	return nil
}

type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := string(bytes.TrimSpace(data))
	if unq, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unq)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("expected a number, got %s", data)
	}
	*f = flexFloat(v)
	return nil
}

func (f *flexFloat) ptr() *float64 {
	if f == nil {
		return nil
	}
	return Ptr(float64(*f))
}

type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	s := string(bytes.TrimSpace(data))
	if unq, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unq)
	}
	v, err := ParseFlag(s)
	if err != nil {
		return err
	}
	*b = flexBool(v)
	return nil
}

func (b *flexBool) ptr() *bool {
	if b == nil {
		return nil
	}
	return Ptr(bool(*b))
}

// ParseFlag reads a venue indicator written as 0/1 or true/false.
func ParseFlag(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true":
		return true, nil
	case "0", "false":
		return false, nil
	}
	return false, fmt.Errorf("expected 0, 1, true or false, got %q", s)
}
