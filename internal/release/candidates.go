package release

// Candidates returns the fixed probe sequence for releases newer than the
// current one, in priority order:
//
//  1. the next five revisions of the current version and quarter
//  2. the next version of the current quarter, revision 0
//  3. the next quarter, next version, revision 0
//  4. the next quarter, same version, revision 0
//
// The sequence always has exactly eight entries and callers must consume
// it in order, stopping at the first release the upstream actually serves.
func Candidates(current Identifier) []Identifier {
	candidates := make([]Identifier, 0, 8)
	for revision := current.Revision + 1; revision <= current.Revision+5; revision++ {
		candidates = append(candidates, Identifier{
			Year:     current.Year,
			Quarter:  current.Quarter,
			Version:  current.Version,
			Revision: revision,
		})
	}
	candidates = append(candidates, Identifier{
		Year:    current.Year,
		Quarter: current.Quarter,
		Version: current.Version + 1,
	})
	next := current.NextQuarter()
	candidates = append(candidates, Identifier{
		Year:    next.Year,
		Quarter: next.Quarter,
		Version: current.Version + 1,
	})
	candidates = append(candidates, Identifier{
		Year:    next.Year,
		Quarter: next.Quarter,
		Version: current.Version,
	})
	return candidates
}
