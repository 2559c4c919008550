package math

import (
    "math/rand";
    "testing";

    "github.com/stretchr/testify/assert";
)

func TestDot(t *testing.T) {
    a := Vector{1, 2, 3}
    b := Vector{4, 5, 6}

    assert.Equal(t, Dot(a, b), float64(32))
}

func TestDotEmpty(t *testing.T) {
    assert.Equal(t, Dot(Vector{}, Vector{}), float64(0))
}

func TestDotCommutative(t *testing.T) {
    rng := rand.New(rand.NewSource(42))
    a := RandomIntVector(rng, 1000, 100)
    b := RandomIntVector(rng, 1000, 100)

    assert.InEpsilon(t, Dot(a, b), Dot(b, a), 1e-9)
}

func TestDotSizeMismatchPanics(t *testing.T) {
    assert.Panics(t, func() {
        Dot(Vector{1, 2}, Vector{1, 2, 3})
    })
}

func TestScale(t *testing.T) {
    v := Vector{1, 2, 3}
    Scale(3, v)

    assert.Equal(t, v, Vector{3, 6, 9})
}

func TestScaleByOneIsIdentity(t *testing.T) {
    v := Vector{3, 6, 9}
    Scale(1, v)
    Scale(1, v)

    assert.Equal(t, v, Vector{3, 6, 9})
}

func TestScaleInverseRecoversOriginal(t *testing.T) {
    rng := rand.New(rand.NewSource(7))
    v := RandomIntVector(rng, 100, 50)
    original := make(Vector, len(v))
    copy(original, v)

    Scale(4, v)
    Scale(1.0/4.0, v)

    for i := range v {
        assert.InDelta(t, v[i], original[i], 1e-12)
    }
}

func TestScaleEmpty(t *testing.T) {
    assert.NotPanics(t, func() {
        Scale(2, Vector{})
    })
}

func TestAdd(t *testing.T) {
    z := Add(nil, Vector{1, 2, 3}, Vector{4, 5, 6})

    assert.Equal(t, z, Vector{5, 7, 9})
}

func TestAddIntoDst(t *testing.T) {
    dst := make(Vector, 3)
    z := Add(dst, Vector{1, 1, 1}, Vector{2, 2, 2})

    assert.Equal(t, dst, Vector{3, 3, 3})
    assert.Equal(t, z, dst)
}

func TestSum(t *testing.T) {
    assert.Equal(t, Sum(Vector{1, 2, 3, 4}), float64(10))
}

func TestRandomIntVector(t *testing.T) {
    rng := rand.New(rand.NewSource(1))
    v := RandomIntVector(rng, 500, 10)

    assert.Equal(t, len(v), 500)
    for _, value := range v {
        assert.True(t, value >= 0 && value < 10)
        assert.Equal(t, value, float64(int(value)))
    }
}

func TestRandomIntVectorSeeded(t *testing.T) {
    a := RandomIntVector(rand.New(rand.NewSource(99)), 64, 1000)
    b := RandomIntVector(rand.New(rand.NewSource(99)), 64, 1000)

    assert.Equal(t, a, b)
}
