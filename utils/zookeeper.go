package utils

import (
    "fmt";
    "time";
    "regexp";
    "strconv";
    "strings";
    "path/filepath";

    "github.com/samuel/go-zookeeper/zk";
)

var SeqIdRegexp = regexp.MustCompile(`\-n(\d+)`)

// ParseSeqId extracts the sequence number assigned by zookeeper to a
// sequential znode name.
func ParseSeqId(znode string) (int64, error) {
    seqIdMatch := SeqIdRegexp.FindStringSubmatch(znode)
    if len(seqIdMatch) != 2 {
        return 0, fmt.Errorf("Invalid znode `%s`", znode)
    }

    return strconv.ParseInt(seqIdMatch[1], 10, 64)
}

type Zookeeper interface {
    Close()
    Children(string) ([]string, error)
    ChildrenW(string) ([]string, <-chan zk.Event, error)
    Create(string, []byte, int32) (string, error)
    CreateProtectedEphemeralSequential(string, []byte) (string, error)
    CreatePath(string, []byte, int32) (string, error)
    Delete(string) error
    Exists(string) (bool, error)
    Get(string) ([]byte, error)
}

type ZookeeperConfig struct {
    Nodes []string
    Timeout time.Duration
    BasePath string
}

type zookeeper struct {
    config ZookeeperConfig
    conn *zk.Conn
}

func NewZookeeper(config ZookeeperConfig) (Zookeeper, error) {
    conn, _, err := zk.Connect(config.Nodes, config.Timeout)
    if err != nil {
        return nil, err
    }

    return &zookeeper {
        config: config,
        conn: conn,
    }, nil
}

func (z *zookeeper) Close() {
    z.conn.Close()
}

func (z *zookeeper) Children(path string) ([]string, error) {
    children, _, err := z.conn.Children(z.withBasePath(path))

    return children, err
}

func (z *zookeeper) ChildrenW(path string) ([]string, <-chan zk.Event, error) {
    children, _, event, err := z.conn.ChildrenW(z.withBasePath(path))

    return children, event, err
}

func (z *zookeeper) Create(path string, data []byte, flags int32) (string, error) {
    return z.conn.Create(z.withBasePath(path), data, flags, zk.WorldACL(zk.PermAll))
}

func (z *zookeeper) CreateProtectedEphemeralSequential(path string, data []byte) (string, error) {
    return z.conn.CreateProtectedEphemeralSequential(z.withBasePath(path), data, zk.WorldACL(zk.PermAll))
}

func (z *zookeeper) CreatePath(path string, data []byte, flags int32) (string, error) {
    pathParts := strings.Split(strings.TrimLeft(z.withBasePath(path), "/"), "/")

    requests := make([]interface{}, 0)
    for i := 1; i <= len(pathParts); i++ {
        partialPath := fmt.Sprintf("/%s", filepath.Join(pathParts[:i]...))
        exists, _, err := z.conn.Exists(partialPath)
        if err != nil {
            return "", err
        }
        if exists {
            continue
        }

        request := &zk.CreateRequest{Path: partialPath, Data: nil, Flags: int32(0), Acl: zk.WorldACL(zk.PermAll)}
        if i == len(pathParts) {
            request.Data = data
            request.Flags = flags
        }
        requests = append(requests, request)
    }

    if len(requests) == 0 {
        return "", zk.ErrNodeExists
    }

    responses, err := z.conn.Multi(requests...)
    if err != nil {
        return "", err
    }
    return responses[len(responses) - 1].String, nil
}

func (z *zookeeper) Delete(path string) error {
    return z.conn.Delete(z.withBasePath(path), -1)
}

func (z *zookeeper) Exists(path string) (bool, error) {
    exists, _, err := z.conn.Exists(z.withBasePath(path))

    return exists, err
}

func (z *zookeeper) Get(path string) ([]byte, error) {
    data, _, err := z.conn.Get(z.withBasePath(path))

    return data, err
}

func (z *zookeeper) withBasePath(path string) string {
    return filepath.Join(z.config.BasePath, path)
}
