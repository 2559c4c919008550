package math

func assertSameDim(i, j *Vector) {
    if len(*i) != len(*j) {
        panic("Vector sizes do not match.")
    }
}
