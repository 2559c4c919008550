package storage

import (
    "io/ioutil";
    "path/filepath";
    "testing";

    "github.com/stretchr/testify/assert";
)

func TestLocalExists(t *testing.T) {
    local := NewLocal()
    path := filepath.Join(t.TempDir(), "vectors.csv")

    exists, err := local.Exists(path)
    assert.Nil(t, err)
    assert.False(t, exists)

    writer, err := local.Writer(path)
    assert.Nil(t, err)
    _, err = writer.Write([]byte("0,1,2,3\n"))
    assert.Nil(t, err)
    assert.Nil(t, writer.Close())

    exists, err = local.Exists(path)
    assert.Nil(t, err)
    assert.True(t, exists)
}

func TestLocalReadBack(t *testing.T) {
    local := NewLocal()
    path := filepath.Join(t.TempDir(), "vectors.csv")

    writer, err := local.Writer(path)
    assert.Nil(t, err)
    _, err = writer.Write([]byte("0,1,2,3\n"))
    assert.Nil(t, err)
    assert.Nil(t, writer.Close())

    reader, err := local.Reader(path)
    assert.Nil(t, err)
    defer reader.Close()

    data, err := ioutil.ReadAll(reader)
    assert.Nil(t, err)
    assert.Equal(t, string(data), "0,1,2,3\n")
}

func TestLocalWriterTruncates(t *testing.T) {
    local := NewLocal()
    path := filepath.Join(t.TempDir(), "vectors.csv")

    writer, err := local.Writer(path)
    assert.Nil(t, err)
    _, err = writer.Write([]byte("0,1,2,3,4,5,6,7,8,9\n"))
    assert.Nil(t, err)
    assert.Nil(t, writer.Close())

    writer, err = local.Writer(path)
    assert.Nil(t, err)
    _, err = writer.Write([]byte("1,5\n"))
    assert.Nil(t, err)
    assert.Nil(t, writer.Close())

    reader, err := local.Reader(path)
    assert.Nil(t, err)
    defer reader.Close()

    data, err := ioutil.ReadAll(reader)
    assert.Nil(t, err)
    assert.Equal(t, string(data), "1,5\n")
}

func TestForPath(t *testing.T) {
    local, err := ForPath("/tmp/vectors.csv")
    assert.Nil(t, err)
    assert.NotNil(t, local)

    _, isLocal := local.(*localStorage)
    assert.True(t, isLocal)
}
