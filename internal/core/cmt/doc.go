// Package cmt implements a Cartesian Merkle Tree, an authenticated key-value
// dictionary.
//
// The tree is a treap: nodes are ordered by key like a binary search tree and
// by priority like a max-heap. Priorities are derived from the keys with the
// tree's hash function instead of being random, so a given key set always
// produces the same shape and the same root hash, whatever order the keys
// were inserted in.
//
// Every node carries a commitment
//
//	hash(n) = H(n.key || min(hash(l), hash(r)) || max(hash(l), hash(r)))
//
// where a missing child contributes an empty byte string. Sorting the child
// hashes lets a verifier fold a proof without knowing which side each child
// sits on.
//
// Proofs record, for every ancestor of the proven node, the ancestor's key
// and the commitment of its child off the search path. A membership proof
// ends at the node holding the key; a non-membership proof ends at the
// witness node whose empty child slot is where the key would be inserted.
// VerifyProof folds the proof from the bottom up and compares the result to a
// trusted root hash.
//
// Each step carries the hash of the ancestor's off-path child rather than the
// ancestor's own hash, and a non-membership proof carries the witness's child
// hashes rather than two empty entries; with the ancestor hash or an empty
// suffix the fold does not reproduce the root once the tree is more than one
// level deep. The witness's occupied child is opened as well: sorted child
// hashes do not record sides, and without the child's key a verifier could
// not tell which slot is free.
//
// Tree is single-threaded. ConcurrentTree guards a Tree with a reader/writer
// lock and offers the same operations.
//
// Because priorities depend only on keys, a party that can choose keys freely
// can search for keys with extreme priorities and skew the shape. This is the
// price of a canonical shape; it affects balance, not soundness.
package cmt
