package cmt

// Option configures a Tree or ConcurrentTree.
type Option func(*Tree)

// WithHasher replaces the default SHA-256 primitive. Every party that needs
// to agree on root hashes must use the same hasher.
func WithHasher(h Hasher) Option {
	return func(t *Tree) {
		if h != nil {
			t.hasher = h
		}
	}
}
