package parvec

import (
    "fmt";
    "time";
    "strings";
    "math/rand";

    "github.com/parvec/parvec/math";
    "github.com/parvec/parvec/storage";
    "github.com/parvec/parvec/storage/serde";
)

// VectorSource materializes named global vectors at the origin worker.
type VectorSource interface {
    Vector(name string, n int) (math.Vector, error)
}

// VectorSink persists named global vectors from the origin worker.
type VectorSink interface {
    Write(name string, vec math.Vector) error
}

type randomSource struct {
    rng *rand.Rand
    bound int
}

// NewRandomSource draws uniform random integers in [0, bound). A zero seed
// seeds from the clock.
func NewRandomSource(seed int64, bound int) VectorSource {
    if seed == 0 {
        seed = time.Now().UnixNano()
    }
    return &randomSource{
        rng: rand.New(rand.NewSource(seed)),
        bound: bound,
    }
}

func (s *randomSource) Vector(name string, n int) (math.Vector, error) {
    if s.bound <= 0 {
        return nil, fmt.Errorf("Invalid random bound `%d`", s.bound)
    }
    return math.RandomIntVector(s.rng, n, s.bound), nil
}

type fileSource struct {
    storage storage.Storage
    dir string
}

// NewFileSource reads vectors from `<dir>/<name>.csv`, one vector per file.
func NewFileSource(store storage.Storage, dir string) VectorSource {
    return &fileSource{
        storage: store,
        dir: dir,
    }
}

func (s *fileSource) Vector(name string, n int) (math.Vector, error) {
    path := vectorPath(s.dir, name)
    exists, err := s.storage.Exists(path)
    if err != nil {
        return nil, err
    }
    if !exists {
        return nil, fmt.Errorf("Source `%s` does not exist", path)
    }

    file, err := s.storage.Reader(path)
    if err != nil {
        return nil, err
    }
    defer file.Close()

    _, vec, err := serde.NewCsvReader(file).ReadItem()
    if err != nil {
        return nil, err
    }
    if len(vec) != n {
        return nil, fmt.Errorf("Source `%s` has %d elements, expected %d", path, len(vec), n)
    }
    return vec, nil
}

type fileSink struct {
    storage storage.Storage
    dir string
}

// NewFileSink writes vectors to `<dir>/<name>.csv`, one vector per file.
func NewFileSink(store storage.Storage, dir string) VectorSink {
    return &fileSink{
        storage: store,
        dir: dir,
    }
}

func (s *fileSink) Write(name string, vec math.Vector) error {
    file, err := s.storage.Writer(vectorPath(s.dir, name))
    if err != nil {
        return err
    }

    writer := serde.NewCsvWriter(file)
    if err := writer.WriteItem(0, vec); err != nil {
        file.Close()
        return err
    }
    if err := writer.Flush(); err != nil {
        file.Close()
        return err
    }
    return file.Close()
}

// vectorPath joins without filepath.Join to keep gs:// scheme prefixes
// intact.
func vectorPath(dir, name string) string {
    return strings.TrimRight(dir, "/") + "/" + name + ".csv"
}
