package datagen

import (
	"math/rand/v2"

	"github.com/shopspring/decimal"
)

const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// random wraps the run's single source. Every draw goes through it so a fixed
// seed replays the same sequence.
type random struct {
	r *rand.Rand
}

func newRandom(seed uint64) *random {
	return &random{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// intBetween returns a uniform int in [lo, hi].
func (r *random) intBetween(lo, hi int) int {
	return lo + r.r.IntN(hi-lo+1)
}

// money returns a uniform value in [lo, hi] rounded to 2 decimals.
func (r *random) money(lo, hi float64) float64 {
	v := lo + r.r.Float64()*(hi-lo)
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// chance reports true with probability p.
func (r *random) chance(p float64) bool {
	return r.r.Float64() < p
}

func (r *random) index(n int) int {
	return r.r.IntN(n)
}

// letters returns an ASCII letter string with a length in [minLen, maxLen].
func (r *random) letters(minLen, maxLen int) string {
	b := make([]byte, r.intBetween(minLen, maxLen))
	for i := range b {
		b[i] = letters[r.r.IntN(len(letters))]
	}
	return string(b)
}

// sample returns k distinct indices from [0, n) in draw order.
func (r *random) sample(n, k int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < k; i++ {
		j := i + r.r.IntN(n-i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	return idx[:k]
}
