// Package wire frames bundle bytes persisted in a provider.
//
//	magic(4) | ver(1) | rev(u64 be) | crc32(u32 be) | vlen(u32 be) | payload(vlen)
//
// rev is the bundle revision observed when the bytes were fetched; crc32 is
// the IEEE checksum of payload.
package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
)

const (
	version byte = 1
	hdrLen       = 4 + 1 + 8 + 4 + 4
)

var (
	ErrCorrupt = errors.New("wardrobe: corrupt bundle entry")
	magic4     = [...]byte{'W', 'R', 'D', 'B'}
)

func Encode(rev uint64, payload []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(hdrLen + len(payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)

	var u8 [8]byte
	var u4 [4]byte

	binary.BigEndian.PutUint64(u8[:], rev)
	buf.Write(u8[:])

	binary.BigEndian.PutUint32(u4[:], crc32.ChecksumIEEE(payload))
	buf.Write(u4[:])

	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])

	buf.Write(payload)
	return buf.Bytes()
}

// Decode returns the revision and payload of b. The payload aliases b.
func Decode(b []byte) (rev uint64, payload []byte, err error) {
	if len(b) < hdrLen || !bytes.Equal(b[:4], magic4[:]) || b[4] != version {
		return 0, nil, ErrCorrupt
	}
	off := 5

	rev = binary.BigEndian.Uint64(b[off : off+8])
	off += 8

	sum := binary.BigEndian.Uint32(b[off : off+4])
	off += 4

	vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	// exact length: trailing bytes are corruption too
	if vlen < 0 || vlen != len(b)-off {
		return 0, nil, ErrCorrupt
	}

	payload = b[off:]
	if crc32.ChecksumIEEE(payload) != sum {
		return 0, nil, ErrCorrupt
	}
	return rev, payload, nil
}
