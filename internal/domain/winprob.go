package domain

import "fmt"

// ExpectedWinProbability weights the win probability after a make and after a
// miss by the make probability: p*wpMade + (1-p)*wpMissed.
func ExpectedWinProbability(pMake, wpMade, wpMissed float64) (float64, error) {
	for _, v := range []struct {
		name  string
		value float64
	}{
		{"make probability", pMake},
		{"win probability if made", wpMade},
		{"win probability if missed", wpMissed},
	} {
		if !(v.value >= 0 && v.value <= 1) {
			return 0, &ValidationError{Field: v.name, Reason: fmt.Sprintf("%g is outside [0, 1]", v.value)}
		}
	}
	return pMake*wpMade + (1-pMake)*wpMissed, nil
}
