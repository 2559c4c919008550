package utils

import (
    "testing";

    "github.com/stretchr/testify/assert";
)

func TestParseSeqId(t *testing.T) {
    seqId, err := ParseSeqId("_c_24cf2dca53f1b575c64502ee9b26c717-n0000000042")

    assert.Nil(t, err)
    assert.Equal(t, seqId, int64(42))
}

func TestParseSeqIdOrdersNumerically(t *testing.T) {
    lo, err := ParseSeqId("_c_aa-n0000000002")
    assert.Nil(t, err)
    hi, err := ParseSeqId("_c_bb-n0000000010")
    assert.Nil(t, err)

    assert.True(t, lo < hi)
}

func TestParseSeqIdInvalid(t *testing.T) {
    _, err := ParseSeqId("not-a-sequential-znode")

    assert.NotNil(t, err)
}
