package parvec

import (
    "time";

    "github.com/parvec/parvec/utils";
)

type Config struct {
    Comm CommConfig
    Vector VectorConfig
    Zookeeper utils.ZookeeperConfig
}

type CommConfig struct {
    // Transport is either "local" (workers as goroutines in one process)
    // or "rpc" (one worker per process).
    Transport string
    GroupSize int
    BindAddress string
    // Workers lists every worker's address in rank order; used by the
    // static membership mode.
    Workers []string
    // Membership is either "static" or "zookeeper".
    Membership string
    Group string
    ConnectTimeout time.Duration
}

type VectorConfig struct {
    // MaxOrder caps the number of elements of any single vector buffer.
    // Requests above it are treated as allocation failures.
    MaxOrder int
    // Seed for the random vector source; 0 seeds from the clock.
    Seed int64
    SourcePath string
    DumpPath string
}

func NewConfig() *Config {
    return &Config {
        Comm: CommConfig {
            Transport: "local",
            GroupSize: 4,
            BindAddress: "127.0.0.1:5555",
            Workers: []string{},
            Membership: "static",
            Group: "default",
            ConnectTimeout: 30 * time.Second,
        },
        Vector: VectorConfig {
            MaxOrder: 100000000,
            Seed: 0,
            SourcePath: "",
            DumpPath: "",
        },
        Zookeeper: utils.ZookeeperConfig {
            Nodes: []string{"127.0.0.1:2181"},
            Timeout: 2 * time.Second,
            BasePath: "/parvec",
        },
    }
}
