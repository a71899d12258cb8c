package entity

import "strings"

// Compare is the base entity ordering used as the final tie-break by every
// higher-level ordering:
//
//   - a saved entity sorts before an unsaved one
//   - two saved entities sort by LastTouched ascending, then by id
//   - two unsaved entities sort by name
func Compare(a, b Entity) int {
	ma, mb := a.Meta(), b.Meta()
	savedA, savedB := ma.IsSaved(), mb.IsSaved()
	switch {
	case !savedA && savedB:
		return 1
	case savedA && !savedB:
		return -1
	case savedA && savedB:
		ta, tb := ma.LastTouched(), mb.LastTouched()
		if ta.Before(tb) {
			return -1
		}
		if ta.After(tb) {
			return 1
		}
		return strings.Compare(string(ma.ID), string(mb.ID))
	}
	return strings.Compare(ma.Name, mb.Name)
}
