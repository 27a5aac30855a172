package manager

import (
	"math/rand"

	"golang.org/x/exp/slices"
)

// obfuscate implements spec.md §4.6.1: hide small requests among
// spurious nearby code points so a passive observer of the backend
// request log cannot reconstruct the true requested text.
func obfuscate(needed []rune, minLen, obfuscationRange int, rng *rand.Rand) []rune {
	if len(needed) == 0 || len(needed) >= minLen {
		return needed
	}

	working := make(map[rune]struct{}, minLen)
	for _, c := range needed {
		working[c] = struct{}{}
	}

	deficit := minLen - len(needed)
	maxAttempts := 10*deficit + 100
	half := obfuscationRange / 2

	for attempt, idx := 0, 0; attempt < maxAttempts && len(working) < minLen; attempt++ {
		c := needed[idx%len(needed)]
		idx++

		lo := int(c) - half
		if lo < 0 {
			lo = 0
		}
		hi := int(c) + half

		cPrime := rune(lo + rng.Intn(hi-lo+1))
		if _, exists := working[cPrime]; !exists {
			working[cPrime] = struct{}{}
		}
	}

	out := make([]rune, 0, len(working))
	for c := range working {
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}
