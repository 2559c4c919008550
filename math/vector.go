package math

import (
    "math/rand";

    "gonum.org/v1/gonum/floats";
)

type Vector []float64

// Dot returns the sum of elementwise products of a and b in index order.
func Dot(a, b Vector) float64 {
    assertSameDim(&a, &b)

    if len(a) == 0 {
        return 0
    }
    return floats.Dot(a, b)
}

// Scale multiplies every element of v in place.
func Scale(factor float64, v Vector) {
    if len(v) == 0 {
        return
    }
    floats.Scale(factor, v)
}

// Add stores the elementwise sum of a and b in dst and returns it.
// A nil dst is allocated.
func Add(dst, a, b Vector) Vector {
    assertSameDim(&a, &b)

    if dst == nil {
        dst = make(Vector, len(a))
    }
    assertSameDim(&dst, &a)
    if len(a) == 0 {
        return dst
    }
    return floats.AddTo(dst, a, b)
}

func Sum(v Vector) float64 {
    return floats.Sum(v)
}

// RandomIntVector draws uniform random integers in [0, bound) cast to float64.
func RandomIntVector(rng *rand.Rand, size, bound int) Vector {
    vec := make(Vector, size)
    for i := 0; i < size; i++ {
        vec[i] = float64(rng.Intn(bound))
    }
    return vec
}
