package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the types the storage layer persists. Field order
// follows the struct definitions; timestamps travel as Unix microseconds.

// IDMUS serializes ID values.
var IDMUS = idMUS{}

type idMUS struct{}

func (idMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (idMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	u, n, err := varint.Uint64.Unmarshal(bs)
	return ID(u), n, err
}

func (idMUS) Size(v ID) (size int) {
	return varint.Uint64.Size(uint64(v))
}

func (idMUS) Skip(bs []byte) (n int, err error) {
	return varint.Uint64.Skip(bs)
}

// CheckpointMUS serializes Checkpoint values.
var CheckpointMUS = checkpointMUS{}

type checkpointMUS struct{}

func (checkpointMUS) Marshal(v Checkpoint, bs []byte) (n int) {
	n = ord.String.Marshal(v.DocumentKey, bs)
	n += ord.String.Marshal(v.Fingerprint, bs[n:])
	n += varint.Int.Marshal(v.TotalChunks, bs[n:])
	n += varint.Int.Marshal(v.NextBatch, bs[n:])
	n += varint.Int.Marshal(v.TokensUsed, bs[n:])
	n += varint.Int64.Marshal(v.UpdatedAt.UnixMicro(), bs[n:])
	return n
}

func (checkpointMUS) Unmarshal(bs []byte) (v Checkpoint, n int, err error) {
	var n1 int
	v.DocumentKey, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	v.Fingerprint, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.TotalChunks, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.NextBatch, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.TokensUsed, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var usec int64
	usec, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UpdatedAt = time.UnixMicro(usec).UTC()
	return
}

func (checkpointMUS) Size(v Checkpoint) (size int) {
	size = ord.String.Size(v.DocumentKey)
	size += ord.String.Size(v.Fingerprint)
	size += varint.Int.Size(v.TotalChunks)
	size += varint.Int.Size(v.NextBatch)
	size += varint.Int.Size(v.TokensUsed)
	size += varint.Int64.Size(v.UpdatedAt.UnixMicro())
	return size
}

func (checkpointMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	for i := 0; i < 3; i++ {
		n1, err = varint.Int.Skip(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	n1, err = varint.Int64.Skip(bs[n:])
	n += n1
	return
}
