package main

import (
    "flag";
    "time";
    "math/rand";

    "github.com/parvec/parvec/comm";
    "github.com/parvec/parvec/math";

    "gopkg.in/cheggaaa/pb.v1";
    log "github.com/sirupsen/logrus";
)

type phaseTimings struct {
    scatter time.Duration
    scale time.Duration
    dot time.Duration
    gather time.Duration
}

func originLoop(c comm.Communicator, global math.Vector, rounds int, bar *pb.ProgressBar) (*phaseTimings, error) {
    timings := &phaseTimings{}
    gathered := make(math.Vector, len(global))
    block := make(math.Vector, len(global) / c.Size())

    for round := 0; round < rounds; round++ {
        start := time.Now()
        if err := c.Scatter(global, block, 0); err != nil {
            return nil, err
        }
        timings.scatter += time.Since(start)

        start = time.Now()
        math.Scale(1.000001, block)
        timings.scale += time.Since(start)

        start = time.Now()
        if _, _, err := c.ReduceSum(math.Dot(block, block), 0); err != nil {
            return nil, err
        }
        timings.dot += time.Since(start)

        start = time.Now()
        if err := c.Gather(block, gathered, 0); err != nil {
            return nil, err
        }
        timings.gather += time.Since(start)

        bar.Increment()
    }
    return timings, nil
}

func workerLoop(c comm.Communicator, blockSize, rounds int) error {
    block := make(math.Vector, blockSize)

    for round := 0; round < rounds; round++ {
        if err := c.Scatter(nil, block, 0); err != nil {
            return err
        }
        math.Scale(1.000001, block)
        if _, _, err := c.ReduceSum(math.Dot(block, block), 0); err != nil {
            return err
        }
        if err := c.Gather(block, nil, 0); err != nil {
            return err
        }
    }
    return nil
}

func report(phase string, total time.Duration, rounds, bytes int) {
    perOp := total / time.Duration(rounds)
    if bytes > 0 {
        log.Infof("%s: %s/op, %.1f MB/s", phase, perOp, float64(bytes) / perOp.Seconds() / (1 << 20))
        return
    }
    log.Infof("%s: %s/op", phase, perOp)
}

func main() {
    order := flag.Int("n", 1 << 22, "global vector order")
    workers := flag.Int("workers", 4, "group size")
    rounds := flag.Int("rounds", 50, "measured rounds")
    flag.Parse()

    if *workers < 1 || *order % *workers != 0 {
        log.Fatalf("Order `%d` is not evenly divisible by `%d` workers", *order, *workers)
    }

    comms, err := comm.NewLocalGroup(*workers)
    if err != nil {
        log.Fatal(err)
    }

    rng := rand.New(rand.NewSource(42))
    global := math.RandomIntVector(rng, *order, 100)
    log.Infof("Pipeline benchmark: n=%d workers=%d rounds=%d", *order, *workers, *rounds)

    for _, c := range comms[1:] {
        go func(c comm.Communicator) {
            if err := workerLoop(c, *order / *workers, *rounds); err != nil {
                log.Fatal(err)
            }
        }(c)
    }

    bar := pb.StartNew(*rounds)
    timings, err := originLoop(comms[0], global, *rounds, bar)
    if err != nil {
        log.Fatal(err)
    }
    bar.Finish()

    vectorBytes := *order * 8
    report("Scatter", timings.scatter, *rounds, vectorBytes)
    report("Scale", timings.scale, *rounds, 0)
    report("Dot+Reduce", timings.dot, *rounds, 0)
    report("Gather", timings.gather, *rounds, vectorBytes)
}
