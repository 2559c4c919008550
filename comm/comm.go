package comm

import (
    "errors";

    "github.com/parvec/parvec/math";
)

// Frame kinds exchanged by collective operations. Both sides of every
// exchange must agree on the kind; a mismatch means the workers diverged.
const (
    frameBcast uint8 = iota + 1
    frameScatter
    frameGather
    frameReduce
    frameAllReduce
    frameBarrier
)

var (
    ErrClosed = errors.New("Communicator is closed")
    ErrProtocol = errors.New("Collective call order diverged between workers")
)

// Frame is one unit of collective data exchanged between two workers.
// Checksum is computed over the other fields by the wire transport; the
// in-process transport leaves it zero.
type Frame struct {
    From int
    Kind uint8
    Seq uint64
    IntValue int64
    Floats []float64
    Checksum uint32
}

// Communicator is one worker's endpoint in a fixed group advancing in lock
// step through collective operations. Every collective must be invoked by
// every worker of the group in matching order, and each call blocks until
// the collective completes group wide.
type Communicator interface {
    Rank() int
    Size() int
    // BcastInt delivers the root's value to every worker.
    BcastInt(value int, root int) (int, error)
    // Scatter splits the root's global vector into equal contiguous blocks
    // in rank order and fills every worker's block. Only the root reads
    // global; block must be preallocated to the agreed size on all workers.
    Scatter(global, block math.Vector, root int) error
    // Gather collects blocks in rank order into the root's preallocated
    // global vector. Only the root reads global.
    Gather(block, global math.Vector, root int) error
    // ReduceSum sums the workers' values at the root. The boolean is true
    // only at the root; other workers receive no meaningful value.
    ReduceSum(value float64, root int) (float64, bool, error)
    // AllReduceMin delivers the group-wide minimum to every worker.
    AllReduceMin(value int) (int, error)
    Barrier() error
    Close() error
}

// Roster is a resolved group: this worker's rank and every worker's address
// in rank order. Address strings are empty for in-process groups.
type Roster struct {
    Rank int
    Size int
    Addresses []string
}

// Membership resolves a worker's place in the group before any collective
// runs. listenAddress is the address the calling worker accepts frames on.
type Membership interface {
    Resolve(listenAddress string) (*Roster, error)
}
