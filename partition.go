package parvec

import (
    "fmt";
)

// SplitOrder returns the local block size of a global vector divided evenly
// across the group. Every worker must evaluate it with the same broadcast
// order; failures are reported through the ErrorGate by the caller, never
// unilaterally.
func SplitOrder(n, workers int) (int, error) {
    if workers < 1 {
        return 0, fmt.Errorf("Invalid worker count `%d`", workers)
    }
    if n < 0 || n % workers != 0 {
        return 0, fmt.Errorf("Order `%d` is not evenly divisible by `%d` workers", n, workers)
    }
    return n / workers, nil
}
