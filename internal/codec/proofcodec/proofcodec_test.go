package proofcodec

import (
	"encoding/binary"
	"encoding/json"
	"testing"

	"github.com/LeJamon/gocmt/internal/core/cmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(i uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, i)
	return k
}

func sampleTree(t *testing.T) *cmt.Tree {
	t.Helper()
	tree := cmt.New()
	for i := uint64(0); i < 64; i += 2 {
		require.NoError(t, tree.Insert(key(i), []byte("v")))
	}
	return tree
}

func TestRoundTrip(t *testing.T) {
	tree := sampleTree(t)
	root := tree.RootHash()

	for _, f := range []Format{FormatCBOR, FormatJSON} {
		t.Run(f.String(), func(t *testing.T) {
			for _, k := range []uint64{0, 10, 62, 11, 63, 1000} {
				p := tree.GenerateProof(key(k))
				data, err := Encode(p, f)
				require.NoError(t, err)

				got, err := Decode(data, f)
				require.NoError(t, err)
				assert.Equal(t, p.Existence, got.Existence)
				assert.Equal(t, p.Depth(), got.Depth())
				assert.Equal(t, p.WitnessChild, got.WitnessChild)
				assert.True(t, cmt.VerifyProof(got, key(k), root), "key %d", k)
			}
		})
	}
}

func TestEmptyTreeProofRoundTrip(t *testing.T) {
	p := cmt.New().GenerateProof(key(1))

	for _, f := range []Format{FormatCBOR, FormatJSON} {
		data, err := Encode(p, f)
		require.NoError(t, err)

		got, err := Decode(data, f)
		require.NoError(t, err)
		assert.Nil(t, got.NonExistenceKey)
		assert.True(t, cmt.VerifyProof(got, key(1), nil), f.String())
	}
}

func TestJSONUsesHex(t *testing.T) {
	tree := sampleTree(t)
	p := tree.GenerateProof(key(3))
	require.False(t, p.Existence)

	data, err := Encode(p, FormatJSON)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, false, raw["existence"])
	assert.Regexp(t, "^[0-9a-f]{16}$", raw["witness"])
	assert.Len(t, raw["suffix"], 2)
}

func TestDecodeRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"NotJSON", `{`},
		{"OneSuffixEntry", `{"prefix":[],"suffix":[""],"existence":true}`},
		{"ThreeSuffixEntries", `{"prefix":[],"suffix":["","",""],"existence":true}`},
		{"BadHex", `{"prefix":[],"suffix":["zz",""],"existence":true}`},
		{"EmptyStepKey", `{"prefix":[{"key":"","hash":"00"}],"suffix":["",""],"existence":true}`},
		{"WitnessChildOneHash", `{"prefix":[],"suffix":["",""],"existence":false,"witness":"01","witness_child":{"key":"02","children":[""]}}`},
		{"WitnessChildNoKey", `{"prefix":[],"suffix":["",""],"existence":false,"witness":"01","witness_child":{"key":"","children":["",""]}}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode([]byte(tc.data), FormatJSON)
			assert.ErrorIs(t, err, ErrMalformedProof)
		})
	}

	data, err := Encode(sampleTree(t).GenerateProof(key(10)), FormatCBOR)
	require.NoError(t, err)
	_, err = Decode(data[:len(data)/2], FormatCBOR)
	assert.ErrorIs(t, err, ErrMalformedProof)
}

func TestFormats(t *testing.T) {
	f, err := ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	f, err = ParseFormat("cbor")
	require.NoError(t, err)
	assert.Equal(t, FormatCBOR, f)

	_, err = ParseFormat("xml")
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = Encode(&cmt.Proof{}, Format(9))
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = Encode(nil, FormatCBOR)
	assert.ErrorIs(t, err, ErrMalformedProof)
}
