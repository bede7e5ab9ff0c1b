// Package proofcodec serializes cmt proofs so they can be handed to a
// verifier that does not hold the tree.
package proofcodec

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/LeJamon/gocmt/internal/core/cmt"
	"github.com/ugorji/go/codec"
)

// Format selects the wire encoding.
type Format int

const (
	// FormatCBOR is the compact binary encoding.
	FormatCBOR Format = iota
	// FormatJSON encodes byte fields as lowercase hex strings.
	FormatJSON
)

var (
	// ErrMalformedProof is returned when decoded data does not describe a proof.
	ErrMalformedProof = errors.New("malformed proof")
	// ErrUnknownFormat is returned for an unsupported Format value or name.
	ErrUnknownFormat = errors.New("unknown proof format")
)

var (
	cborHandle = &codec.CborHandle{}
	jsonHandle = &codec.JsonHandle{}
)

func init() {
	cborHandle.Canonical = true
	jsonHandle.Canonical = true
	jsonHandle.Indent = 2
}

// String returns the format name accepted by ParseFormat.
func (f Format) String() string {
	switch f {
	case FormatCBOR:
		return "cbor"
	case FormatJSON:
		return "json"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ParseFormat maps a format name to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "cbor":
		return FormatCBOR, nil
	case "json":
		return FormatJSON, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

type binaryStep struct {
	Key  []byte `codec:"k"`
	Hash []byte `codec:"h"`
}

type binaryNode struct {
	Key      []byte   `codec:"k"`
	Children [][]byte `codec:"c"`
}

type binaryProof struct {
	Prefix          []binaryStep `codec:"prefix"`
	Suffix          [][]byte     `codec:"suffix"`
	Existence       bool         `codec:"existence"`
	NonExistenceKey []byte       `codec:"witness,omitempty"`
	WitnessChild    *binaryNode  `codec:"witness_child,omitempty"`
}

type textStep struct {
	Key  string `codec:"key"`
	Hash string `codec:"hash"`
}

type textNode struct {
	Key      string   `codec:"key"`
	Children []string `codec:"children"`
}

type textProof struct {
	Prefix          []textStep `codec:"prefix"`
	Suffix          []string   `codec:"suffix"`
	Existence       bool       `codec:"existence"`
	NonExistenceKey string     `codec:"witness,omitempty"`
	WitnessChild    *textNode  `codec:"witness_child,omitempty"`
}

// Encode serializes p in format f.
func Encode(p *cmt.Proof, f Format) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil proof", ErrMalformedProof)
	}

	var (
		out []byte
		err error
	)
	switch f {
	case FormatCBOR:
		err = codec.NewEncoderBytes(&out, cborHandle).Encode(toBinary(p))
	case FormatJSON:
		err = codec.NewEncoderBytes(&out, jsonHandle).Encode(toText(p))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, f)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode proof: %w", err)
	}
	return out, nil
}

// Decode parses data produced by Encode with the same format.
func Decode(data []byte, f Format) (*cmt.Proof, error) {
	switch f {
	case FormatCBOR:
		var w binaryProof
		if err := codec.NewDecoderBytes(data, cborHandle).Decode(&w); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedProof, err)
		}
		return fromBinary(&w)
	case FormatJSON:
		var w textProof
		if err := codec.NewDecoderBytes(data, jsonHandle).Decode(&w); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedProof, err)
		}
		return fromText(&w)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, f)
	}
}

func toBinary(p *cmt.Proof) *binaryProof {
	w := &binaryProof{
		Prefix:          make([]binaryStep, len(p.Prefix)),
		Suffix:          [][]byte{p.Suffix[0], p.Suffix[1]},
		Existence:       p.Existence,
		NonExistenceKey: p.NonExistenceKey,
	}
	for i, s := range p.Prefix {
		w.Prefix[i] = binaryStep{Key: s.Key, Hash: s.Hash}
	}
	if c := p.WitnessChild; c != nil {
		w.WitnessChild = &binaryNode{Key: c.Key, Children: [][]byte{c.Children[0], c.Children[1]}}
	}
	return w
}

func fromBinary(w *binaryProof) (*cmt.Proof, error) {
	if len(w.Suffix) != 2 {
		return nil, fmt.Errorf("%w: suffix has %d entries", ErrMalformedProof, len(w.Suffix))
	}

	p := &cmt.Proof{
		Suffix:          [2][]byte{nilIfEmpty(w.Suffix[0]), nilIfEmpty(w.Suffix[1])},
		Existence:       w.Existence,
		NonExistenceKey: nilIfEmpty(w.NonExistenceKey),
	}
	for i, s := range w.Prefix {
		if len(s.Key) == 0 {
			return nil, fmt.Errorf("%w: step %d has an empty key", ErrMalformedProof, i)
		}
		p.Prefix = append(p.Prefix, cmt.ProofStep{Key: s.Key, Hash: nilIfEmpty(s.Hash)})
	}
	if c := w.WitnessChild; c != nil {
		if len(c.Key) == 0 || len(c.Children) != 2 {
			return nil, fmt.Errorf("%w: witness child needs a key and two children", ErrMalformedProof)
		}
		p.WitnessChild = &cmt.ProofNode{
			Key:      c.Key,
			Children: [2][]byte{nilIfEmpty(c.Children[0]), nilIfEmpty(c.Children[1])},
		}
	}
	return p, nil
}

func toText(p *cmt.Proof) *textProof {
	w := &textProof{
		Prefix:          make([]textStep, len(p.Prefix)),
		Suffix:          []string{hex.EncodeToString(p.Suffix[0]), hex.EncodeToString(p.Suffix[1])},
		Existence:       p.Existence,
		NonExistenceKey: hex.EncodeToString(p.NonExistenceKey),
	}
	for i, s := range p.Prefix {
		w.Prefix[i] = textStep{Key: hex.EncodeToString(s.Key), Hash: hex.EncodeToString(s.Hash)}
	}
	if c := p.WitnessChild; c != nil {
		w.WitnessChild = &textNode{
			Key:      hex.EncodeToString(c.Key),
			Children: []string{hex.EncodeToString(c.Children[0]), hex.EncodeToString(c.Children[1])},
		}
	}
	return w
}

func fromText(w *textProof) (*cmt.Proof, error) {
	b := &binaryProof{
		Prefix:    make([]binaryStep, len(w.Prefix)),
		Suffix:    make([][]byte, len(w.Suffix)),
		Existence: w.Existence,
	}

	var err error
	if b.NonExistenceKey, err = decodeHex("witness", w.NonExistenceKey); err != nil {
		return nil, err
	}
	for i, s := range w.Suffix {
		if b.Suffix[i], err = decodeHex(fmt.Sprintf("suffix[%d]", i), s); err != nil {
			return nil, err
		}
	}
	for i, s := range w.Prefix {
		if b.Prefix[i].Key, err = decodeHex(fmt.Sprintf("prefix[%d].key", i), s.Key); err != nil {
			return nil, err
		}
		if b.Prefix[i].Hash, err = decodeHex(fmt.Sprintf("prefix[%d].hash", i), s.Hash); err != nil {
			return nil, err
		}
	}
	if c := w.WitnessChild; c != nil {
		b.WitnessChild = &binaryNode{Children: make([][]byte, len(c.Children))}
		if b.WitnessChild.Key, err = decodeHex("witness_child.key", c.Key); err != nil {
			return nil, err
		}
		for i, h := range c.Children {
			if b.WitnessChild.Children[i], err = decodeHex(fmt.Sprintf("witness_child.children[%d]", i), h); err != nil {
				return nil, err
			}
		}
	}
	return fromBinary(b)
}

func decodeHex(field, s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedProof, field, err)
	}
	return b, nil
}

func nilIfEmpty(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return b
}
