package cmt

import (
	"encoding/binary"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// testKey encodes i as a fixed-width 32-byte big-endian key.
func testKey(i uint64) []byte {
	k := make([]byte, 32)
	binary.BigEndian.PutUint64(k[:8], i)
	return k
}

func testValue(i uint64) []byte {
	return []byte(fmt.Sprintf("value-%d", i))
}

// buildTree inserts keys 0..n-1 in a seeded random order.
func buildTree(t testing.TB, n int, seed int64) *Tree {
	t.Helper()

	tree := New()
	for _, i := range rand.New(rand.NewSource(seed)).Perm(n) {
		require.NoError(t, tree.Insert(testKey(uint64(i)), testValue(uint64(i))))
	}
	return tree
}

// nodeSet collects every node pointer reachable from n.
func nodeSet(n *node, into map[*node]struct{}) {
	if n == nil {
		return
	}
	into[n] = struct{}{}
	nodeSet(n.left, into)
	nodeSet(n.right, into)
}

func inorderKeys(n *node) [][]byte {
	var keys [][]byte
	forEach(n, func(k, _ []byte) bool {
		keys = append(keys, k)
		return true
	})
	return keys
}
