package main

import (
    "errors";
    "flag";
    "os";
    "strings";
    "sync";

    "github.com/parvec/parvec";
    "github.com/parvec/parvec/comm";
    "github.com/parvec/parvec/utils";

    log "github.com/sirupsen/logrus";
)

func main() {
    config := parvec.NewConfig()

    transport := flag.String("transport", config.Comm.Transport, "worker transport: local (goroutines) or rpc (one worker per process)")
    workers := flag.Int("workers", config.Comm.GroupSize, "group size for the local transport and zookeeper membership")
    bind := flag.String("bind", config.Comm.BindAddress, "address this worker accepts frames on (rpc transport)")
    peers := flag.String("peers", "", "comma-separated worker addresses in rank order; must include the bind address (static membership)")
    membership := flag.String("membership", config.Comm.Membership, "group membership: static or zookeeper")
    zkNodes := flag.String("zk", strings.Join(config.Zookeeper.Nodes, ","), "comma-separated zookeeper nodes")
    group := flag.String("group", config.Comm.Group, "group name under the zookeeper base path")
    seed := flag.Int64("seed", config.Vector.Seed, "random source seed; 0 seeds from the clock")
    source := flag.String("source", config.Vector.SourcePath, "directory to load named vectors from instead of generating them")
    dump := flag.String("dump", config.Vector.DumpPath, "directory to write gathered vectors to")
    debug := flag.Bool("debug", false, "enable debug logging")
    flag.Parse()

    if *debug {
        log.SetLevel(log.DebugLevel)
    }

    config.Comm.Transport = *transport
    config.Comm.GroupSize = *workers
    config.Comm.BindAddress = *bind
    if *peers != "" {
        config.Comm.Workers = strings.Split(*peers, ",")
    }
    config.Comm.Membership = *membership
    config.Comm.Group = *group
    config.Zookeeper.Nodes = strings.Split(*zkNodes, ",")
    config.Vector.Seed = *seed
    config.Vector.SourcePath = *source
    config.Vector.DumpPath = *dump

    switch config.Comm.Transport {
    case "local":
        runLocal(config)
    case "rpc":
        runRPC(config)
    default:
        log.Fatalf("Unknown transport `%s`", config.Comm.Transport)
    }
}

// runLocal runs the whole group as goroutines sharing this process's
// terminal. Only the origin worker reads stdin and writes reports.
func runLocal(config *parvec.Config) {
    comms, err := comm.NewLocalGroup(config.Comm.GroupSize)
    if err != nil {
        log.Fatal(err)
    }

    runners := make([]parvec.Runner, len(comms))
    for i, c := range comms {
        if runners[i], err = parvec.NewRunner(config, c, os.Stdin, os.Stdout, os.Stderr); err != nil {
            log.Fatal(err)
        }
    }

    errors := make([]error, len(comms))
    wg := &sync.WaitGroup{}
    for i := range runners {
        wg.Add(1)
        go func(i int) {
            defer wg.Done()
            errors[i] = runners[i].Run()
        }(i)
    }
    wg.Wait()

    for _, c := range comms {
        c.Close()
    }
    exit(errors...)
}

// runRPC runs this process as one worker of a networked group.
func runRPC(config *parvec.Config) {
    transport, err := comm.ListenRPC(config.Comm.BindAddress)
    if err != nil {
        log.Fatal(err)
    }

    // The zookeeper session must outlive the whole run; closing it drops
    // this worker's ephemeral member znode while peers may still be
    // resolving the roster.
    var zookeeper utils.Zookeeper
    var membership comm.Membership
    switch config.Comm.Membership {
    case "static":
        membership = comm.NewStaticMembership("", config.Comm.Workers)
    case "zookeeper":
        if zookeeper, err = utils.NewZookeeper(config.Zookeeper); err != nil {
            log.Fatal(err)
        }
        membership = comm.NewZookeeperMembership(zookeeper, config.Comm.Group, config.Comm.GroupSize)
    default:
        log.Fatalf("Unknown membership `%s`", config.Comm.Membership)
    }

    communicator, err := transport.Join(membership, config.Comm.ConnectTimeout)
    if err != nil {
        log.Fatal(err)
    }

    runner, err := parvec.NewRunner(config, communicator, os.Stdin, os.Stdout, os.Stderr)
    if err != nil {
        log.Fatal(err)
    }

    result := runner.Run()
    communicator.Close()
    if zookeeper != nil {
        zookeeper.Close()
    }
    exit(result)
}

// exit maps worker results to the process exit code. A group abort already
// printed its diagnostic line, so it exits silently.
func exit(results ...error) {
    for _, err := range results {
        if errors.Is(err, parvec.ErrAborted) {
            os.Exit(1)
        }
    }
    for _, err := range results {
        if err != nil {
            log.Fatal(err)
        }
    }
    os.Exit(0)
}
