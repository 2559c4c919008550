package comm

import (
    "fmt";
    "sync";

    "github.com/parvec/parvec/math";

    log "github.com/sirupsen/logrus";
)

// localGroup wires a fixed group of workers running as goroutines in one
// process. links[from][to] carries at most one in-flight frame per link,
// which is all a lock-step group ever produces.
type localGroup struct {
    size int
    links [][]chan Frame
    closed chan struct{}
    closeOnce *sync.Once
}

type localComm struct {
    group *localGroup
    rank int
}

// NewLocalGroup returns one communicator per rank for an in-process group.
func NewLocalGroup(size int) ([]Communicator, error) {
    if size < 1 {
        return nil, fmt.Errorf("Invalid group size `%d`", size)
    }

    links := make([][]chan Frame, size)
    for from := 0; from < size; from++ {
        links[from] = make([]chan Frame, size)
        for to := 0; to < size; to++ {
            links[from][to] = make(chan Frame, 1)
        }
    }

    group := &localGroup{
        size: size,
        links: links,
        closed: make(chan struct{}),
        closeOnce: &sync.Once{},
    }

    comms := make([]Communicator, size)
    for rank := 0; rank < size; rank++ {
        comms[rank] = &localComm{group: group, rank: rank}
    }

    log.WithFields(log.Fields{
        "size": size,
    }).Debug("New local group")

    return comms, nil
}

func (c *localComm) Rank() int {
    return c.rank
}

func (c *localComm) Size() int {
    return c.group.size
}

func (c *localComm) BcastInt(value int, root int) (int, error) {
    if err := c.checkRoot(root); err != nil {
        return 0, err
    }
    if c.rank == root {
        for peer := 0; peer < c.group.size; peer++ {
            if peer == root {
                continue
            }
            if err := c.send(peer, Frame{Kind: frameBcast, IntValue: int64(value)}); err != nil {
                return 0, err
            }
        }
        return value, nil
    }

    frame, err := c.recv(root, frameBcast)
    if err != nil {
        return 0, err
    }
    return int(frame.IntValue), nil
}

func (c *localComm) Scatter(global, block math.Vector, root int) error {
    if err := c.checkRoot(root); err != nil {
        return err
    }
    if c.rank == root {
        if len(global) != c.group.size * len(block) {
            return fmt.Errorf("Scatter expects %d elements, got %d", c.group.size * len(block), len(global))
        }
        for peer := 0; peer < c.group.size; peer++ {
            lo := peer * len(block)
            hi := lo + len(block)
            if peer == root {
                copy(block, global[lo:hi])
                continue
            }
            segment := make([]float64, len(block))
            copy(segment, global[lo:hi])
            if err := c.send(peer, Frame{Kind: frameScatter, Floats: segment}); err != nil {
                return err
            }
        }
        return nil
    }

    frame, err := c.recv(root, frameScatter)
    if err != nil {
        return err
    }
    if len(frame.Floats) != len(block) {
        return ErrProtocol
    }
    copy(block, frame.Floats)
    return nil
}

func (c *localComm) Gather(block, global math.Vector, root int) error {
    if err := c.checkRoot(root); err != nil {
        return err
    }
    if c.rank != root {
        segment := make([]float64, len(block))
        copy(segment, block)
        return c.send(root, Frame{Kind: frameGather, Floats: segment})
    }

    if len(global) != c.group.size * len(block) {
        return fmt.Errorf("Gather expects %d elements, got %d", c.group.size * len(block), len(global))
    }
    for peer := 0; peer < c.group.size; peer++ {
        lo := peer * len(block)
        if peer == root {
            copy(global[lo:lo + len(block)], block)
            continue
        }
        frame, err := c.recv(peer, frameGather)
        if err != nil {
            return err
        }
        if len(frame.Floats) != len(block) {
            return ErrProtocol
        }
        copy(global[lo:lo + len(block)], frame.Floats)
    }
    return nil
}

func (c *localComm) ReduceSum(value float64, root int) (float64, bool, error) {
    if err := c.checkRoot(root); err != nil {
        return 0, false, err
    }
    if c.rank != root {
        if err := c.send(root, Frame{Kind: frameReduce, Floats: []float64{value}}); err != nil {
            return 0, false, err
        }
        return 0, false, nil
    }

    sum := value
    for peer := 0; peer < c.group.size; peer++ {
        if peer == root {
            continue
        }
        frame, err := c.recv(peer, frameReduce)
        if err != nil {
            return 0, false, err
        }
        if len(frame.Floats) != 1 {
            return 0, false, ErrProtocol
        }
        sum += frame.Floats[0]
    }
    return sum, true, nil
}

func (c *localComm) AllReduceMin(value int) (int, error) {
    return c.allReduceMin(frameAllReduce, value)
}

func (c *localComm) Barrier() error {
    _, err := c.allReduceMin(frameBarrier, 0)
    return err
}

// allReduceMin exchanges values all-to-all. Per-link buffering keeps the
// send phase from blocking, so no two workers can deadlock on each other.
func (c *localComm) allReduceMin(kind uint8, value int) (int, error) {
    for peer := 0; peer < c.group.size; peer++ {
        if peer == c.rank {
            continue
        }
        if err := c.send(peer, Frame{Kind: kind, IntValue: int64(value)}); err != nil {
            return 0, err
        }
    }

    min := value
    for peer := 0; peer < c.group.size; peer++ {
        if peer == c.rank {
            continue
        }
        frame, err := c.recv(peer, kind)
        if err != nil {
            return 0, err
        }
        if int(frame.IntValue) < min {
            min = int(frame.IntValue)
        }
    }
    return min, nil
}

func (c *localComm) Close() error {
    c.group.closeOnce.Do(func() {
        close(c.group.closed)
    })
    return nil
}

func (c *localComm) checkRoot(root int) error {
    if root < 0 || root >= c.group.size {
        return fmt.Errorf("Invalid root rank `%d`", root)
    }
    return nil
}

func (c *localComm) send(to int, frame Frame) error {
    frame.From = c.rank
    select {
    case c.group.links[c.rank][to] <- frame:
        return nil
    case <-c.group.closed:
        return ErrClosed
    }
}

func (c *localComm) recv(from int, kind uint8) (Frame, error) {
    select {
    case frame := <-c.group.links[from][c.rank]:
        if frame.Kind != kind {
            return Frame{}, ErrProtocol
        }
        return frame, nil
    case <-c.group.closed:
        return Frame{}, ErrClosed
    }
}
