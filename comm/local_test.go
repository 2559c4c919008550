package comm

import (
    "sync";
    "testing";

    "github.com/parvec/parvec/math";

    "github.com/stretchr/testify/assert";
    "github.com/stretchr/testify/require";
)

// runGroup runs fn concurrently for every rank and returns per-rank errors.
func runGroup(comms []Communicator, fn func(Communicator) error) []error {
    errors := make([]error, len(comms))

    wg := &sync.WaitGroup{}
    for i, comm := range comms {
        wg.Add(1)
        go func(i int, comm Communicator) {
            defer wg.Done()
            errors[i] = fn(comm)
        }(i, comm)
    }
    wg.Wait()

    return errors
}

func TestLocalGroup(t *testing.T) {
    comms, err := NewLocalGroup(4)
    require.Nil(t, err)
    require.Equal(t, len(comms), 4)

    for rank, comm := range comms {
        assert.Equal(t, comm.Rank(), rank)
        assert.Equal(t, comm.Size(), 4)
    }
}

func TestLocalGroupInvalidSize(t *testing.T) {
    _, err := NewLocalGroup(0)
    assert.NotNil(t, err)
}

func TestLocalBcastInt(t *testing.T) {
    comms, err := NewLocalGroup(4)
    require.Nil(t, err)

    received := make([]int, 4)
    errors := runGroup(comms, func(c Communicator) error {
        value := -1
        if c.Rank() == 0 {
            value = 42
        }
        result, err := c.BcastInt(value, 0)
        received[c.Rank()] = result
        return err
    })

    for rank, err := range errors {
        assert.Nil(t, err)
        assert.Equal(t, received[rank], 42)
    }
}

func TestLocalBcastIntNonZeroRoot(t *testing.T) {
    comms, err := NewLocalGroup(3)
    require.Nil(t, err)

    received := make([]int, 3)
    errors := runGroup(comms, func(c Communicator) error {
        value := 0
        if c.Rank() == 2 {
            value = 7
        }
        result, err := c.BcastInt(value, 2)
        received[c.Rank()] = result
        return err
    })

    for rank, err := range errors {
        assert.Nil(t, err)
        assert.Equal(t, received[rank], 7)
    }
}

func TestLocalScatterGatherRoundTrip(t *testing.T) {
    comms, err := NewLocalGroup(4)
    require.Nil(t, err)

    global := make(math.Vector, 16)
    for i := range global {
        global[i] = float64(i)
    }

    gathered := make(math.Vector, 16)
    blocks := make([]math.Vector, 4)
    errors := runGroup(comms, func(c Communicator) error {
        block := make(math.Vector, 4)
        blocks[c.Rank()] = block

        var send math.Vector
        if c.Rank() == 0 {
            send = global
        }
        if err := c.Scatter(send, block, 0); err != nil {
            return err
        }

        var recv math.Vector
        if c.Rank() == 0 {
            recv = gathered
        }
        return c.Gather(block, recv, 0)
    })

    for rank, err := range errors {
        require.Nil(t, err)
        assert.Equal(t, blocks[rank], global[rank * 4:(rank + 1) * 4])
    }
    assert.Equal(t, gathered, global)
}

func TestLocalScatterEmptyVector(t *testing.T) {
    comms, err := NewLocalGroup(2)
    require.Nil(t, err)

    errors := runGroup(comms, func(c Communicator) error {
        block := make(math.Vector, 0)
        if err := c.Scatter(math.Vector{}, block, 0); err != nil {
            return err
        }
        return c.Gather(block, math.Vector{}, 0)
    })

    for _, err := range errors {
        assert.Nil(t, err)
    }
}

func TestLocalReduceSum(t *testing.T) {
    comms, err := NewLocalGroup(4)
    require.Nil(t, err)

    sums := make([]float64, 4)
    oks := make([]bool, 4)
    errors := runGroup(comms, func(c Communicator) error {
        sum, ok, err := c.ReduceSum(float64(c.Rank() + 1), 0)
        sums[c.Rank()] = sum
        oks[c.Rank()] = ok
        return err
    })

    for _, err := range errors {
        assert.Nil(t, err)
    }
    assert.True(t, oks[0])
    assert.Equal(t, sums[0], float64(10))
    for rank := 1; rank < 4; rank++ {
        assert.False(t, oks[rank])
    }
}

func TestLocalAllReduceMin(t *testing.T) {
    comms, err := NewLocalGroup(4)
    require.Nil(t, err)

    mins := make([]int, 4)
    errors := runGroup(comms, func(c Communicator) error {
        value := 1
        if c.Rank() == 2 {
            value = 0
        }
        min, err := c.AllReduceMin(value)
        mins[c.Rank()] = min
        return err
    })

    for rank, err := range errors {
        assert.Nil(t, err)
        assert.Equal(t, mins[rank], 0)
    }
}

func TestLocalAllReduceMinAllHealthy(t *testing.T) {
    comms, err := NewLocalGroup(3)
    require.Nil(t, err)

    errors := runGroup(comms, func(c Communicator) error {
        min, err := c.AllReduceMin(1)
        if err != nil {
            return err
        }
        assert.Equal(t, min, 1)
        return nil
    })

    for _, err := range errors {
        assert.Nil(t, err)
    }
}

func TestLocalBarrier(t *testing.T) {
    comms, err := NewLocalGroup(4)
    require.Nil(t, err)

    errors := runGroup(comms, func(c Communicator) error {
        return c.Barrier()
    })

    for _, err := range errors {
        assert.Nil(t, err)
    }
}

func TestLocalCollectiveSequence(t *testing.T) {
    comms, err := NewLocalGroup(3)
    require.Nil(t, err)

    global := math.Vector{1, 2, 3, 4, 5, 6}
    sums := make([]float64, 3)
    oks := make([]bool, 3)
    errors := runGroup(comms, func(c Communicator) error {
        n, err := c.BcastInt(len(global), 0)
        if err != nil {
            return err
        }

        block := make(math.Vector, n / c.Size())
        var send math.Vector
        if c.Rank() == 0 {
            send = global
        }
        if err := c.Scatter(send, block, 0); err != nil {
            return err
        }

        sum, ok, err := c.ReduceSum(math.Sum(block), 0)
        sums[c.Rank()] = sum
        oks[c.Rank()] = ok
        if err != nil {
            return err
        }
        return c.Barrier()
    })

    for _, err := range errors {
        require.Nil(t, err)
    }
    assert.True(t, oks[0])
    assert.Equal(t, sums[0], float64(21))
}

func TestLocalSingleWorker(t *testing.T) {
    comms, err := NewLocalGroup(1)
    require.Nil(t, err)
    c := comms[0]

    value, err := c.BcastInt(5, 0)
    assert.Nil(t, err)
    assert.Equal(t, value, 5)

    global := math.Vector{1, 2, 3}
    block := make(math.Vector, 3)
    assert.Nil(t, c.Scatter(global, block, 0))
    assert.Equal(t, block, global)

    gathered := make(math.Vector, 3)
    assert.Nil(t, c.Gather(block, gathered, 0))
    assert.Equal(t, gathered, global)

    sum, ok, err := c.ReduceSum(4.5, 0)
    assert.Nil(t, err)
    assert.True(t, ok)
    assert.Equal(t, sum, 4.5)

    min, err := c.AllReduceMin(3)
    assert.Nil(t, err)
    assert.Equal(t, min, 3)

    assert.Nil(t, c.Barrier())
}

func TestLocalDivergedCallOrder(t *testing.T) {
    comms, err := NewLocalGroup(2)
    require.Nil(t, err)

    errors := runGroup(comms, func(c Communicator) error {
        if c.Rank() == 0 {
            _, err := c.BcastInt(1, 0)
            return err
        }
        return c.Scatter(nil, make(math.Vector, 1), 0)
    })

    assert.Nil(t, errors[0])
    assert.Equal(t, errors[1], ErrProtocol)
}

func TestLocalCloseUnblocks(t *testing.T) {
    comms, err := NewLocalGroup(2)
    require.Nil(t, err)

    done := make(chan error, 1)
    go func() {
        _, err := comms[1].BcastInt(0, 0)
        done <- err
    }()

    comms[0].Close()
    assert.Equal(t, <-done, ErrClosed)
}

func TestLocalInvalidRoot(t *testing.T) {
    comms, err := NewLocalGroup(2)
    require.Nil(t, err)

    _, err = comms[0].BcastInt(1, 5)
    assert.NotNil(t, err)

    _, err = comms[0].BcastInt(1, -1)
    assert.NotNil(t, err)
}

func TestLocalScatterSizeMismatch(t *testing.T) {
    comms, err := NewLocalGroup(2)
    require.Nil(t, err)

    errors := runGroup(comms, func(c Communicator) error {
        block := make(math.Vector, 2)
        if c.Rank() == 0 {
            err := c.Scatter(math.Vector{1, 2, 3}, block, 0)
            c.Close()
            return err
        }
        return c.Scatter(nil, block, 0)
    })

    assert.NotNil(t, errors[0])
    assert.Equal(t, errors[1], ErrClosed)
}
