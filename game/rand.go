package game

import "math/rand"

// Rand supplies the uniform choices made by the engine (team label draws,
// starting-team selection). Tests substitute a deterministic source.
type Rand interface {
	IntN(n int) int
}

type systemRand struct{}

func (systemRand) IntN(n int) int {
	return rand.Intn(n)
}

func NewRand() Rand {
	return systemRand{}
}
