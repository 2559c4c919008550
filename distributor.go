package parvec

import (
    "fmt";
    "io";

    "github.com/parvec/parvec/comm";
    "github.com/parvec/parvec/math";

    log "github.com/sirupsen/logrus";
)

// originRank is the worker that talks to the outside world. It reads
// parameters, materializes global vectors and reports results.
const originRank = 0

// Distributor moves whole vectors between the origin worker and the block
// each worker owns.
type Distributor struct {
    comm comm.Communicator
    gate *ErrorGate
    maxOrder int
    out io.Writer
    sink VectorSink
    log *log.Entry
}

func NewDistributor(communicator comm.Communicator, gate *ErrorGate, maxOrder int, out io.Writer, sink VectorSink) *Distributor {
    return &Distributor{
        comm: communicator,
        gate: gate,
        maxOrder: maxOrder,
        out: out,
        sink: sink,
        log: log.WithFields(log.Fields{
            "rank": communicator.Rank(),
        }),
    }
}

// ScatterGenerate materializes the named global vector at the origin and
// delivers block i to worker i. Workers other than the origin pass a nil
// source. Any failure at the origin aborts the whole group through the
// gate before the scatter starts.
func (d *Distributor) ScatterGenerate(name string, n int, source VectorSource, block math.Vector) error {
    var global math.Vector

    healthy := true
    message := ""
    if d.comm.Rank() == originRank {
        if n > d.maxOrder {
            healthy = false
            message = "Can't allocate temporary vector"
        } else if source == nil {
            healthy = false
            message = fmt.Sprintf("Can't generate vector `%s`", name)
        } else {
            var err error
            if global, err = source.Vector(name, n); err != nil {
                d.log.WithFields(log.Fields{
                    "vector": name,
                }).Error(err)
                healthy = false
                message = fmt.Sprintf("Can't generate vector `%s`", name)
            }
        }
    }
    if err := d.gate.Check(healthy, "ScatterGenerate", message); err != nil {
        return err
    }

    return d.comm.Scatter(global, block, originRank)
}

// GatherSummary collects every worker's block at the origin and prints the
// windowed summary under the given title. When a sink is configured the
// origin also persists the gathered vector. Reporting failures are logged,
// not fatal.
func (d *Distributor) GatherSummary(block math.Vector, n int, title string) error {
    var global math.Vector

    healthy := true
    message := ""
    if d.comm.Rank() == originRank {
        if n > d.maxOrder {
            healthy = false
            message = "Can't allocate temporary vector"
        } else {
            global = make(math.Vector, n)
        }
    }
    if err := d.gate.Check(healthy, "GatherSummary", message); err != nil {
        return err
    }

    if err := d.comm.Gather(block, global, originRank); err != nil {
        return err
    }

    if d.comm.Rank() != originRank {
        return nil
    }
    if _, err := fmt.Fprint(d.out, FormatSummary(title, global)); err != nil {
        d.log.Error(err)
    }
    if d.sink != nil {
        if err := d.sink.Write(slugify(title), global); err != nil {
            d.log.WithFields(log.Fields{
                "vector": slugify(title),
            }).Error(err)
        }
    }
    return nil
}
