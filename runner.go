package parvec

import (
    "fmt";
    "io";
    "time";

    "github.com/parvec/parvec/comm";
    "github.com/parvec/parvec/math";
    "github.com/parvec/parvec/storage";

    log "github.com/sirupsen/logrus";
)

const (
    promptOrder = "What's the order of the vectors?"
    promptRandMax = "What's the max number for random?"
    promptScalar = "\nWhat's the number for the scalar?"
)

// Runner executes one full distributed computation over a joined group:
// two generated vectors are scattered across the workers, scaled in place
// and folded into a dot product reported at the origin.
type Runner interface {
    Run() error
}

type runner struct {
    config *Config
    comm comm.Communicator
    console *Console
    gate *ErrorGate
    distributor *Distributor
    reducer *Reducer
    out io.Writer
    log *log.Entry
}

func NewRunner(config *Config, communicator comm.Communicator, in io.Reader, out, errOut io.Writer) (Runner, error) {
    var sink VectorSink
    if communicator.Rank() == originRank && config.Vector.DumpPath != "" {
        store, err := storage.ForPath(config.Vector.DumpPath)
        if err != nil {
            return nil, err
        }
        sink = NewFileSink(store, config.Vector.DumpPath)
    }

    gate := NewErrorGate(communicator, errOut)
    return &runner {
        config: config,
        comm: communicator,
        console: NewConsole(in, out),
        gate: gate,
        distributor: NewDistributor(communicator, gate, config.Vector.MaxOrder, out, sink),
        reducer: NewReducer(communicator),
        out: out,
        log: log.WithFields(log.Fields{
            "rank": communicator.Rank(),
        }),
    }, nil
}

// Run drives the fixed sequence of collective states. Every worker of the
// group must call Run concurrently; the collectives inside keep the group
// in lock step, and a health failure anywhere unwinds every worker with
// ErrAborted.
func (r *runner) Run() error {
    r.log.WithFields(log.Fields{
        "size": r.comm.Size(),
        "transport": r.config.Comm.Transport,
    }).Info("Worker started")

    n, err := r.readBcastInt(promptOrder, "ReadParams")
    if err != nil {
        return err
    }
    randMax, err := r.readBcastInt(promptRandMax, "ReadParams")
    if err != nil {
        return err
    }
    if err := r.gate.Check(randMax > 0, "ReadParams", "random bound should be a positive integer"); err != nil {
        return err
    }
    start := time.Now()

    blockSize, splitErr := SplitOrder(n, r.comm.Size())
    if err := r.gate.Check(splitErr == nil, "SplitOrder", "order should be non-negative and evenly divisible by the worker count"); err != nil {
        return err
    }

    if err := r.gate.Check(2 * blockSize <= r.config.Vector.MaxOrder, "Allocate", "Can't allocate local vector(s)"); err != nil {
        return err
    }
    x := make(math.Vector, blockSize)
    y := make(math.Vector, blockSize)

    // Only the origin materializes global vectors. A source construction
    // failure surfaces as an unhealthy vote inside ScatterGenerate.
    var source VectorSource
    if r.comm.Rank() == originRank {
        if src, err := r.vectorSource(randMax); err != nil {
            r.log.Error(err)
        } else {
            source = src
        }
    }

    if err := r.distributor.ScatterGenerate("x", n, source, x); err != nil {
        return err
    }
    if err := r.distributor.GatherSummary(x, n, "Vector x"); err != nil {
        return err
    }
    if err := r.distributor.ScatterGenerate("y", n, source, y); err != nil {
        return err
    }
    if err := r.distributor.GatherSummary(y, n, "Vector y"); err != nil {
        return err
    }

    scalar, err := r.readBcastInt(promptScalar, "ScalarRead")
    if err != nil {
        return err
    }

    math.Scale(float64(scalar), x)
    if err := r.distributor.GatherSummary(x, n, "Vector x by scalar"); err != nil {
        return err
    }
    math.Scale(float64(scalar), y)
    if err := r.distributor.GatherSummary(y, n, "Vector y by scalar"); err != nil {
        return err
    }

    result, ok, err := r.reducer.Sum(math.Dot(x, y), originRank)
    if err != nil {
        return err
    }
    if ok {
        if _, err := fmt.Fprintf(r.out, "\nResult of dot product: %f\n", result); err != nil {
            r.log.Error(err)
        }
    }

    if err := r.comm.Barrier(); err != nil {
        return err
    }
    if r.comm.Rank() == originRank {
        if _, err := fmt.Fprintf(r.out, "\nTook %.3f s to run\n", time.Since(start).Seconds()); err != nil {
            r.log.Error(err)
        }
    }
    return nil
}

// readBcastInt prompts at the origin and delivers the value to every
// worker. A failed read aborts the group through the gate before anything
// is broadcast.
func (r *runner) readBcastInt(prompt, context string) (int, error) {
    value := 0
    healthy := true
    if r.comm.Rank() == originRank {
        v, err := r.console.ReadInt(prompt)
        if err != nil {
            r.log.Error(err)
            healthy = false
        }
        value = v
    }

    if err := r.gate.Check(healthy, context, "Can't read input"); err != nil {
        return 0, err
    }
    return r.comm.BcastInt(value, originRank)
}

func (r *runner) vectorSource(randMax int) (VectorSource, error) {
    if r.config.Vector.SourcePath == "" {
        return NewRandomSource(r.config.Vector.Seed, randMax), nil
    }

    store, err := storage.ForPath(r.config.Vector.SourcePath)
    if err != nil {
        return nil, err
    }
    return NewFileSource(store, r.config.Vector.SourcePath), nil
}
