package comm

import (
    "fmt";
    "sort";
    "path/filepath";
    "encoding/json";

    "github.com/parvec/parvec/utils";

    "github.com/samuel/go-zookeeper/zk";
    uuid "github.com/satori/go.uuid";
    log "github.com/sirupsen/logrus";
)

type staticMembership struct {
    self string
    workers []string
}

// NewStaticMembership ranks workers by their position in a fixed address
// list. self may be empty, in which case the resolved listen address is
// matched against the list instead.
func NewStaticMembership(self string, workers []string) Membership {
    return &staticMembership{
        self: self,
        workers: workers,
    }
}

func (m *staticMembership) Resolve(listenAddress string) (*Roster, error) {
    self := m.self
    if self == "" {
        self = listenAddress
    }

    for rank, address := range m.workers {
        if address == self {
            return &Roster{
                Rank: rank,
                Size: len(m.workers),
                Addresses: append([]string(nil), m.workers...),
            }, nil
        }
    }
    return nil, fmt.Errorf("Address `%s` is not in the worker list", self)
}

type memberInfo struct {
    Uuid string `json:"uuid"`
    Address string `json:"address"`
}

type zkMembership struct {
    zk utils.Zookeeper
    group string
    size int
    log *log.Entry
}

// NewZookeeperMembership ranks workers by the sequence numbers of the
// ephemeral znodes they register under the group's members path. The group
// is complete once exactly size members have registered.
func NewZookeeperMembership(zkConn utils.Zookeeper, group string, size int) Membership {
    return &zkMembership{
        zk: zkConn,
        group: group,
        size: size,
        log: log.WithFields(log.Fields{
            "group": group,
        }),
    }
}

func (m *zkMembership) Resolve(listenAddress string) (*Roster, error) {
    if m.size < 1 {
        return nil, fmt.Errorf("Invalid group size `%d`", m.size)
    }
    if err := m.bootstrapZk(); err != nil {
        return nil, err
    }

    ownSeqId, err := m.register(listenAddress)
    if err != nil {
        return nil, err
    }

    members, err := m.waitForGroup()
    if err != nil {
        return nil, err
    }

    return m.buildRoster(members, ownSeqId)
}

func (m *zkMembership) bootstrapZk() error {
    _, err := m.zk.CreatePath(m.membersPath(), nil, int32(0))
    if err == zk.ErrNodeExists {
        return nil
    }
    return err
}

func (m *zkMembership) register(address string) (int64, error) {
    data, err := json.Marshal(memberInfo{Uuid: uuid.NewV1().String(), Address: address})
    if err != nil {
        return 0, err
    }

    ownPath, err := m.zk.CreateProtectedEphemeralSequential(filepath.Join(m.membersPath(), "n"), data)
    if err != nil {
        return 0, err
    }

    return utils.ParseSeqId(filepath.Base(ownPath))
}

func (m *zkMembership) waitForGroup() ([]string, error) {
    for {
        children, event, err := m.zk.ChildrenW(m.membersPath())
        if err != nil {
            return nil, err
        }
        if len(children) == m.size {
            return children, nil
        }
        if len(children) > m.size {
            return nil, fmt.Errorf("Group `%s` has %d members, expected %d", m.group, len(children), m.size)
        }

        m.log.WithFields(log.Fields{
            "members": len(children),
        }).Info("Wait for group")
        <-event
    }
}

func (m *zkMembership) buildRoster(members []string, ownSeqId int64) (*Roster, error) {
    type member struct {
        seqId int64
        address string
    }

    resolved := make([]member, len(members))
    for i, znode := range members {
        seqId, err := utils.ParseSeqId(znode)
        if err != nil {
            return nil, err
        }
        data, err := m.zk.Get(filepath.Join(m.membersPath(), znode))
        if err != nil {
            return nil, err
        }
        var info memberInfo
        if err := json.Unmarshal(data, &info); err != nil {
            return nil, err
        }
        resolved[i] = member{seqId: seqId, address: info.Address}
    }
    sort.Slice(resolved, func(i, j int) bool {
        return resolved[i].seqId < resolved[j].seqId
    })

    roster := &Roster{
        Rank: -1,
        Size: m.size,
        Addresses: make([]string, len(resolved)),
    }
    for i, member := range resolved {
        roster.Addresses[i] = member.address
        if member.seqId == ownSeqId {
            roster.Rank = i
        }
    }
    if roster.Rank < 0 {
        return nil, fmt.Errorf("Own znode not found in group `%s`", m.group)
    }
    return roster, nil
}

func (m *zkMembership) membersPath() string {
    return filepath.Join("groups", m.group, "members")
}
