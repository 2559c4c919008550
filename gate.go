package parvec

import (
    "errors";
    "fmt";
    "io";

    "github.com/parvec/parvec/comm";

    log "github.com/sirupsen/logrus";
)

// ErrAborted is returned by every worker of the group when any worker
// failed a health check and the group stopped together.
var ErrAborted = errors.New("Computation aborted")

// ErrorGate is the group-wide error barrier. Every worker votes its local
// health; when any vote is unhealthy the lowest-ranked worker prints one
// diagnostic line and every worker returns ErrAborted. Healthy rounds
// return nil everywhere with no side effect. Either way the call
// synchronizes the group.
type ErrorGate struct {
    comm comm.Communicator
    stderr io.Writer
    log *log.Entry
}

func NewErrorGate(communicator comm.Communicator, stderr io.Writer) *ErrorGate {
    return &ErrorGate{
        comm: communicator,
        stderr: stderr,
        log: log.WithFields(log.Fields{
            "rank": communicator.Rank(),
        }),
    }
}

// Check votes healthy across the group. context and message are only read
// at the reporting worker when the group aborts.
func (g *ErrorGate) Check(healthy bool, context, message string) error {
    vote := 1
    if !healthy {
        vote = 0
    }

    min, err := g.comm.AllReduceMin(vote)
    if err != nil {
        return err
    }
    if min == 1 {
        return nil
    }

    if g.comm.Rank() == 0 {
        fmt.Fprintf(g.stderr, "Proc %d > In %s, %s\n", g.comm.Rank(), context, message)
    }
    g.log.WithFields(log.Fields{
        "context": context,
    }).Debug("Health check failed")

    return ErrAborted
}
