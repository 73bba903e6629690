// Package themes holds the fixed set of shop themes a catalog run can be
// generated for. The theme drives both the image search query and the
// category column written to every catalog entry.
package themes

import "math/rand/v2"

// Theme is one product-domain label from the fixed set.
type Theme string

var all = []Theme{
	"clothing",
	"electronics",
	"home decor",
	"beauty",
	"sports",
	"books",
	"toys",
	"jewelry",
	"automotive",
	"health",
}

// All returns the full theme set in declaration order.
func All() []Theme {
	out := make([]Theme, len(all))
	copy(out, all)
	return out
}

// Random picks one theme uniformly at random.
func Random() Theme {
	return all[rand.IntN(len(all))]
}

// Valid reports whether t is a member of the theme set.
func Valid(t Theme) bool {
	for _, candidate := range all {
		if candidate == t {
			return true
		}
	}
	return false
}
