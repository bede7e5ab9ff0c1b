package cmt

import (
	"bytes"
)

// ProofStep is one ancestor on the path from the root to the proven node:
// the ancestor's key and the commitment of its child that is off the path.
type ProofStep struct {
	Key  []byte
	Hash []byte
}

// ProofNode opens a node commitment: its key and its two child commitments.
type ProofNode struct {
	Key      []byte
	Children [2][]byte
}

// Proof is a membership or non-membership witness for a single key.
//
// Prefix lists the ancestors in root-to-target order. Suffix holds the left
// and right child commitments of the target (membership) or of the witness
// node (non-membership). For non-membership, NonExistenceKey is the key of
// the node whose empty child slot is where the absent key would be inserted,
// and WitnessChild opens the witness's other child when it has one, so the
// verifier can tell which slot is free.
type Proof struct {
	Prefix          []ProofStep
	Suffix          [2][]byte
	Existence       bool
	NonExistenceKey []byte
	WitnessChild    *ProofNode
}

// GenerateProof builds a proof for key against the current root. A key that
// is not present yields a non-membership proof; the empty tree yields a proof
// with no prefix, no witness and an empty suffix.
func (t *Tree) GenerateProof(key []byte) *Proof {
	p := &Proof{}

	n := t.root
	for n != nil {
		c := bytes.Compare(key, n.key)
		if c == 0 {
			p.Existence = true
			p.Suffix = childHashes(n)
			return p
		}

		next, other := n.left, n.right
		if c > 0 {
			next, other = n.right, n.left
		}
		if next == nil {
			p.NonExistenceKey = bytes.Clone(n.key)
			p.Suffix = childHashes(n)
			if other != nil {
				p.WitnessChild = &ProofNode{Key: bytes.Clone(other.key), Children: childHashes(other)}
			}
			return p
		}

		p.Prefix = append(p.Prefix, ProofStep{
			Key:  bytes.Clone(n.key),
			Hash: bytes.Clone(hashOf(other)),
		})
		n = next
	}

	return p
}

func childHashes(n *node) [2][]byte {
	return [2][]byte{bytes.Clone(hashOf(n.left)), bytes.Clone(hashOf(n.right))}
}

// Depth returns the number of ancestors recorded in the proof.
func (p *Proof) Depth() int {
	return len(p.Prefix)
}

// VerifyProof checks p for key against a trusted SHA-256 root hash.
func VerifyProof(p *Proof, key, root []byte) bool {
	return VerifyProofWith(DefaultHasher, p, key, root)
}

// VerifyProofWith checks p for key against a trusted root hash using h.
// It never needs the tree and never panics: malformed proofs are rejected.
//
// Every ancestor in the prefix must send key the same way as the proven node,
// so a proof only holds for keys whose search path it describes.
//
// The empty tree is a special case: a non-membership proof with no prefix,
// no witness and an empty suffix is valid exactly when root is empty.
func VerifyProofWith(h Hasher, p *Proof, key, root []byte) bool {
	if p == nil || h == nil {
		return false
	}

	var (
		start = key
		acc   []byte
	)
	if p.Existence {
		if p.NonExistenceKey != nil || p.WitnessChild != nil {
			return false
		}
		acc = HashNode(h, key, p.Suffix[0], p.Suffix[1])
	} else {
		if p.NonExistenceKey == nil {
			return len(p.Prefix) == 0 && p.WitnessChild == nil &&
				len(p.Suffix[0]) == 0 && len(p.Suffix[1]) == 0 &&
				len(root) == 0
		}
		var ok bool
		if acc, ok = witnessHash(h, p, key); !ok {
			return false
		}
		start = p.NonExistenceKey
	}
	if len(root) == 0 {
		return false
	}

	for i := len(p.Prefix) - 1; i >= 0; i-- {
		step := p.Prefix[i]
		c := bytes.Compare(key, step.Key)
		if c == 0 || c != bytes.Compare(start, step.Key) {
			return false
		}
		acc = HashNode(h, step.Key, acc, step.Hash)
	}

	return bytes.Equal(acc, root)
}

// witnessHash recomputes the witness commitment of a non-membership proof
// after checking that the witness's free slot is the one key descends into.
func witnessHash(h Hasher, p *Proof, key []byte) ([]byte, bool) {
	witness := p.NonExistenceKey
	side := bytes.Compare(key, witness)
	if side == 0 {
		return nil, false
	}

	free, taken := 0, 1
	if side > 0 {
		free, taken = 1, 0
	}
	if len(p.Suffix[free]) != 0 {
		return nil, false
	}

	c := p.WitnessChild
	if c == nil {
		if len(p.Suffix[taken]) != 0 {
			return nil, false
		}
	} else {
		// The occupied child must sit on the other side of the witness.
		if len(c.Key) == 0 || bytes.Compare(c.Key, witness) != -side {
			return nil, false
		}
		if !bytes.Equal(p.Suffix[taken], HashNode(h, c.Key, c.Children[0], c.Children[1])) {
			return nil, false
		}
	}

	return HashNode(h, witness, p.Suffix[0], p.Suffix[1]), true
}
