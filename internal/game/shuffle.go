// internal/game/shuffle.go
package game

import "math/rand"

// shufflePerm returns an unbiased random permutation of 1..n, used for
// per-round turn order assignment.
func shufflePerm(n int) []int {
	perm := rand.Perm(n)
	for i := range perm {
		perm[i]++
	}
	return perm
}

// shuffleNames permutes a copy of the given names, used for impostor
// selection.
func shuffleNames(names []string) []string {
	shuffled := make([]string, len(names))
	copy(shuffled, names)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled
}
