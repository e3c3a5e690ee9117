package node

import (
	"encoding/binary"
	"hash"
	"sync"

	"github.com/minio/highwayhash"
)

// FriendTableSize is the number of friend buckets (§3.3); FriendBucket
// reduces a HighwayHash of (tag, line) modulo it.
const FriendTableSize = 1024

// friendKey is a fixed, arbitrary 32-byte HighwayHash key. The spec only
// requires that bucket membership be a deterministic function of
// (tag, line) (invariant P9); HighwayHash gives the table a real,
// well-distributed hash instead of the bare (tag+line) mod N a direct port
// would use, the same way the teacher reaches for a vetted hash library
// instead of hand-rolling one for its document hashing (see DESIGN.md).
var friendKey = [32]byte{
	0x73, 0x79, 0x6e, 0x63, 0x74, 0x65, 0x78, 0x00,
	0x66, 0x72, 0x69, 0x65, 0x6e, 0x64, 0x00, 0x01,
	0x02, 0x03, 0x05, 0x08, 0x0d, 0x15, 0x22, 0x37,
	0x59, 0x90, 0xe9, 0x79, 0x62, 0xdb, 0x3d, 0xa2,
}

var hasherPool = sync.Pool{New: func() any {
	h, err := highwayhash.New64(friendKey[:])
	if err != nil {
		// friendKey is a fixed 32-byte constant: New64 can only fail on key
		// length, so this can never happen at runtime.
		panic(err)
	}
	return h
}}

// FriendBucket computes the bucket index for a (tag, line) pair.
func FriendBucket(tag, line int32) int {
	h := hasherPool.Get().(hash.Hash64)
	defer func() {
		h.Reset()
		hasherPool.Put(h)
	}()

	var buf [8]byte
	binary.LittleEndian.PutUint32(buf[0:4], uint32(tag))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(line))
	_, _ = h.Write(buf[:])
	return int(h.Sum64() % FriendTableSize)
}

// FriendTable is the fixed-size bucket array backing display queries
// (§4.G), one slice per bucket so full bucket chains can be walked and
// compared against (tag, line) exactly as the source's friend chains are.
type FriendTable [FriendTableSize][]*Node

// Insert links n into its (tag, line) bucket. Only nodes with HasTagLine
// kinds (or their proxies, which share the target's tag/line via TLC)
// should be inserted (§3.4 invariant 7).
func (t *FriendTable) Insert(n *Node) {
	tag, line, _ := n.TLC()
	b := FriendBucket(tag, line)
	t[b] = append(t[b], n)
}

// Bucket returns the chain for (tag, line) without allocating.
func (t *FriendTable) Bucket(tag, line int32) []*Node {
	return t[FriendBucket(tag, line)]
}
