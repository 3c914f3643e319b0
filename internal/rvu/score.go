package rvu

import (
	"fmt"
	"math"
	"sort"
)

// Combo is one billable subset of the submitted codes.
type Combo struct {
	Codes []string `json:"codes"`
	Total float64  `json:"total"`
	Notes []string `json:"notes"`
}

// Score evaluates every non-empty subset of codes against the edit-pair
// table. Subsets containing a pair with modifier indicator "0" are
// dropped; indicators "1" and "9" keep the subset but add a modifier
// note. Results are sorted by RVU total, highest first.
func (s *Store) Score(codes []string) []Combo {
	var combos []Combo
	n := len(codes)
	for mask := 1; mask < 1<<n; mask++ {
		subset := make([]string, 0, n)
		for i := 0; i < n; i++ {
			if mask&(1<<i) != 0 {
				subset = append(subset, codes[i])
			}
		}

		total := 0.0
		for _, code := range subset {
			total += s.RVU(code)
		}

		valid := true
		var notes []string
		for i := 0; i < len(subset) && valid; i++ {
			for j := i + 1; j < len(subset); j++ {
				modifier, ok := s.Modifier(subset[i], subset[j])
				if !ok {
					continue
				}
				switch modifier {
				case "0":
					valid = false
				case "1", "9":
					notes = append(notes, fmt.Sprintf("%s+%s requires modifier %s", subset[i], subset[j], modifier))
				}
				if !valid {
					break
				}
			}
		}
		if !valid {
			continue
		}
		combos = append(combos, Combo{
			Codes: subset,
			Total: math.Round(total*100) / 100,
			Notes: notes,
		})
	}

	sort.SliceStable(combos, func(i, j int) bool {
		return combos[i].Total > combos[j].Total
	})
	return combos
}
