package comm

import (
    "fmt";
    "net";
    "net/rpc";
    "sync";
    "time";
    "encoding/binary";
    goMath "math";

    "github.com/parvec/parvec/math";

    "github.com/spaolacci/murmur3";
    log "github.com/sirupsen/logrus";
)

type Ack struct {}

// Transport is a worker's listening side, started before group membership is
// resolved so that peers can connect as soon as they learn our address.
// Frames arriving before Join completes wait for it; a peer that resolved
// the roster first may legally start a collective right away.
type Transport struct {
    listener net.Listener
    server *rpc.Server
    comm *rpcComm
    joined chan struct{}
    quit chan struct{}
}

// commEndpoint exposes only the frame delivery method to net/rpc.
type commEndpoint struct {
    transport *Transport
}

func (e *commEndpoint) Deliver(frame *Frame, ack *Ack) error {
    return e.transport.deliver(frame)
}

// ListenRPC starts accepting frames on bindAddress ("host:port", port 0 for
// ephemeral). Join must be called next to wire the group.
func ListenRPC(bindAddress string) (*Transport, error) {
    listener, err := net.Listen("tcp", bindAddress)
    if err != nil {
        return nil, err
    }

    transport := &Transport{
        listener: listener,
        server: rpc.NewServer(),
        joined: make(chan struct{}),
        quit: make(chan struct{}),
    }
    if err := transport.server.RegisterName("Comm", &commEndpoint{transport: transport}); err != nil {
        listener.Close()
        return nil, err
    }

    go transport.serve()

    log.WithFields(log.Fields{
        "address": listener.Addr().String(),
    }).Info("Listen")

    return transport, nil
}

func (t *Transport) Addr() string {
    return t.listener.Addr().String()
}

// Join resolves this worker's place in the group and dials every peer.
// It blocks until the full group is connected.
func (t *Transport) Join(membership Membership, connectTimeout time.Duration) (Communicator, error) {
    select {
    case <-t.joined:
        return nil, fmt.Errorf("Group already joined")
    default:
    }

    roster, err := membership.Resolve(t.Addr())
    if err != nil {
        return nil, err
    }

    comm := &rpcComm{
        transport: t,
        rank: roster.Rank,
        size: roster.Size,
        peers: make(map[int]*rpc.Client),
        inboxes: make([]chan Frame, roster.Size),
        sendSeq: make([]uint64, roster.Size),
        recvSeq: make([]uint64, roster.Size),
        seqMutex: &sync.Mutex{},
        log: log.WithFields(log.Fields{
            "rank": roster.Rank,
            "size": roster.Size,
        }),
    }
    for peer := 0; peer < roster.Size; peer++ {
        comm.inboxes[peer] = make(chan Frame, 1)
    }

    t.comm = comm
    close(t.joined)

    for peer := 0; peer < roster.Size; peer++ {
        if peer == roster.Rank {
            continue
        }
        client, err := dialPeer(roster.Addresses[peer], connectTimeout)
        if err != nil {
            comm.Close()
            return nil, err
        }
        comm.peers[peer] = client
    }

    comm.log.Info("Join group")

    return comm, nil
}

func (t *Transport) serve() {
    for {
        conn, err := t.listener.Accept()
        if err != nil {
            select {
            case <-t.quit:
                return
            default:
                log.Error(err)
                continue
            }
        }
        go t.server.ServeConn(conn)
    }
}

func (t *Transport) deliver(frame *Frame) error {
    select {
    case <-t.joined:
    case <-t.quit:
        return ErrClosed
    }
    return t.comm.deliver(frame)
}

func (t *Transport) close() {
    select {
    case <-t.quit:
    default:
        close(t.quit)
        t.listener.Close()
    }
}

// dialPeer retries until the peer's listener is up or the timeout elapses.
func dialPeer(address string, timeout time.Duration) (*rpc.Client, error) {
    deadline := time.Now().Add(timeout)
    for {
        client, err := rpc.Dial("tcp", address)
        if err == nil {
            return client, nil
        }
        if time.Now().After(deadline) {
            return nil, fmt.Errorf("Dial `%s`: %v", address, err)
        }
        time.Sleep(100 * time.Millisecond)
    }
}

type rpcComm struct {
    transport *Transport
    rank int
    size int
    peers map[int]*rpc.Client
    inboxes []chan Frame
    sendSeq []uint64
    recvSeq []uint64
    seqMutex *sync.Mutex
    log *log.Entry
}

func (c *rpcComm) Rank() int {
    return c.rank
}

func (c *rpcComm) Size() int {
    return c.size
}

func (c *rpcComm) BcastInt(value int, root int) (int, error) {
    if err := c.checkRoot(root); err != nil {
        return 0, err
    }
    if c.rank == root {
        for peer := 0; peer < c.size; peer++ {
            if peer == root {
                continue
            }
            if err := c.send(peer, frameBcast, int64(value), nil); err != nil {
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

func (c *rpcComm) Scatter(global, block math.Vector, root int) error {
    if err := c.checkRoot(root); err != nil {
        return err
    }
    if c.rank == root {
        if len(global) != c.size * len(block) {
            return fmt.Errorf("Scatter expects %d elements, got %d", c.size * len(block), len(global))
        }
        for peer := 0; peer < c.size; peer++ {
            lo := peer * len(block)
            hi := lo + len(block)
            if peer == root {
                copy(block, global[lo:hi])
                continue
            }
            if err := c.send(peer, frameScatter, 0, global[lo:hi]); err != nil {
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

func (c *rpcComm) Gather(block, global math.Vector, root int) error {
    if err := c.checkRoot(root); err != nil {
        return err
    }
    if c.rank != root {
        return c.send(root, frameGather, 0, block)
    }

    if len(global) != c.size * len(block) {
        return fmt.Errorf("Gather expects %d elements, got %d", c.size * len(block), len(global))
    }
    for peer := 0; peer < c.size; peer++ {
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

func (c *rpcComm) ReduceSum(value float64, root int) (float64, bool, error) {
    if err := c.checkRoot(root); err != nil {
        return 0, false, err
    }
    if c.rank != root {
        if err := c.send(root, frameReduce, 0, []float64{value}); err != nil {
            return 0, false, err
        }
        return 0, false, nil
    }

    sum := value
    for peer := 0; peer < c.size; peer++ {
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

func (c *rpcComm) AllReduceMin(value int) (int, error) {
    return c.allReduceMin(frameAllReduce, value)
}

func (c *rpcComm) Barrier() error {
    _, err := c.allReduceMin(frameBarrier, 0)
    return err
}

func (c *rpcComm) allReduceMin(kind uint8, value int) (int, error) {
    for peer := 0; peer < c.size; peer++ {
        if peer == c.rank {
            continue
        }
        if err := c.send(peer, kind, int64(value), nil); err != nil {
            return 0, err
        }
    }

    min := value
    for peer := 0; peer < c.size; peer++ {
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

func (c *rpcComm) Close() error {
    c.transport.close()
    for _, client := range c.peers {
        client.Close()
    }

    c.log.Info("Close communicator")
    return nil
}

func (c *rpcComm) checkRoot(root int) error {
    if root < 0 || root >= c.size {
        return fmt.Errorf("Invalid root rank `%d`", root)
    }
    return nil
}

func (c *rpcComm) send(to int, kind uint8, intValue int64, floats []float64) error {
    client := c.peers[to]
    if client == nil {
        return ErrClosed
    }

    c.sendSeq[to]++
    frame := Frame{
        From: c.rank,
        Kind: kind,
        Seq: c.sendSeq[to],
        IntValue: intValue,
        Floats: floats,
    }
    frame.Checksum = frameChecksum(&frame)

    var ack Ack
    return client.Call("Comm.Deliver", frame, &ack)
}

func (c *rpcComm) recv(from int, kind uint8) (Frame, error) {
    select {
    case frame := <-c.inboxes[from]:
        if frame.Kind != kind {
            return Frame{}, ErrProtocol
        }
        return frame, nil
    case <-c.transport.quit:
        return Frame{}, ErrClosed
    }
}

// deliver runs on the listening side for every incoming frame. Errors
// returned here surface at the sender as a failed call.
func (c *rpcComm) deliver(frame *Frame) error {
    if frame.From < 0 || frame.From >= c.size || frame.From == c.rank {
        return fmt.Errorf("Invalid sender rank `%d`", frame.From)
    }
    if frameChecksum(frame) != frame.Checksum {
        return fmt.Errorf("Frame checksum mismatch from rank `%d`", frame.From)
    }

    c.seqMutex.Lock()
    expected := c.recvSeq[frame.From] + 1
    if frame.Seq != expected {
        c.seqMutex.Unlock()
        return fmt.Errorf("Frame out of order from rank `%d`: seq %d, expected %d", frame.From, frame.Seq, expected)
    }
    c.recvSeq[frame.From] = frame.Seq
    c.seqMutex.Unlock()

    select {
    case c.inboxes[frame.From] <- *frame:
        return nil
    case <-c.transport.quit:
        return ErrClosed
    }
}

// frameChecksum hashes every field except the checksum itself.
func frameChecksum(frame *Frame) uint32 {
    hasher := murmur3.New32()
    var buf [8]byte

    binary.LittleEndian.PutUint64(buf[:], uint64(frame.From))
    hasher.Write(buf[:])
    hasher.Write([]byte{frame.Kind})
    binary.LittleEndian.PutUint64(buf[:], frame.Seq)
    hasher.Write(buf[:])
    binary.LittleEndian.PutUint64(buf[:], uint64(frame.IntValue))
    hasher.Write(buf[:])
    for _, value := range frame.Floats {
        binary.LittleEndian.PutUint64(buf[:], goMath.Float64bits(value))
        hasher.Write(buf[:])
    }

    return hasher.Sum32()
}
