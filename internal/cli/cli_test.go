package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the root command with args and returns its standard output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	configFile, debug, quiet, hexInput = "", false, false, false
	proveOut, proofFormat = "", "json"

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(context.Background())
	return strings.TrimSpace(out.String()), err
}

func useStore(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("CMT_STORE_BACKEND", "leveldb")
	t.Setenv("CMT_STORE_PATH", filepath.Join(dir, "store"))
	return dir
}

func TestPutGetDeleteCommands(t *testing.T) {
	useStore(t)

	_, err := run(t, "put", "alice", "1")
	require.NoError(t, err)
	root, err := run(t, "put", "bob", "2")
	require.NoError(t, err)
	assert.Len(t, root, 64)

	value, err := run(t, "get", "bob")
	require.NoError(t, err)
	assert.Equal(t, "2", value)

	status, err := run(t, "root")
	require.NoError(t, err)
	assert.Equal(t, root+"\nentries: 2", status)

	afterDelete, err := run(t, "delete", "bob")
	require.NoError(t, err)
	assert.NotEqual(t, root, afterDelete)

	_, err = run(t, "get", "bob")
	assert.Error(t, err)

	_, err = run(t, "check")
	assert.NoError(t, err)
}

func TestHexArguments(t *testing.T) {
	useStore(t)

	_, err := run(t, "--hex", "put", "00ff", "cafe")
	require.NoError(t, err)

	value, err := run(t, "--hex", "get", "00ff")
	require.NoError(t, err)
	assert.Equal(t, "cafe", value)

	_, err = run(t, "--hex", "put", "zz", "00")
	assert.Error(t, err)
}

func TestProveAndVerify(t *testing.T) {
	dir := useStore(t)

	for _, kv := range [][2]string{{"a", "1"}, {"b", "2"}, {"c", "3"}} {
		_, err := run(t, "put", kv[0], kv[1])
		require.NoError(t, err)
	}

	for _, format := range []string{"json", "cbor"} {
		t.Run(format, func(t *testing.T) {
			proofPath := filepath.Join(dir, "b."+format)
			root, err := run(t, "prove", "b", "--out", proofPath, "--format", format)
			require.NoError(t, err)
			require.Len(t, root, 64)

			out, err := run(t, "verify", proofPath, "b", root, "--format", format)
			require.NoError(t, err)
			assert.Equal(t, "valid: key is present", out)

			_, err = run(t, "verify", proofPath, "c", root, "--format", format)
			assert.ErrorIs(t, err, errProofRejected)
		})
	}

	stale := filepath.Join(dir, "b.json")
	_, err := run(t, "delete", "b")
	require.NoError(t, err)
	root, err := run(t, "root", "--quiet")
	require.NoError(t, err)

	_, err = run(t, "verify", stale, "b", root)
	assert.ErrorIs(t, err, errProofRejected)

	// Without --out the proof goes to stdout.
	proof, err := run(t, "prove", "b")
	require.NoError(t, err)
	absentPath := filepath.Join(dir, "absent.json")
	require.NoError(t, os.WriteFile(absentPath, []byte(proof), 0644))

	out, err := run(t, "verify", absentPath, "b", root)
	require.NoError(t, err)
	assert.Equal(t, "valid: key is absent", out)
}

func TestImportCommand(t *testing.T) {
	dir := useStore(t)

	path := filepath.Join(dir, "entries.txt")
	content := "# fixtures\nk1=v1\n\nk2=v2\nk3=with=equals\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	root, err := run(t, "import", path)
	require.NoError(t, err)

	status, err := run(t, "root")
	require.NoError(t, err)
	assert.Equal(t, root+"\nentries: 3", status)

	value, err := run(t, "get", "k3")
	require.NoError(t, err)
	assert.Equal(t, "with=equals", value)

	bad := filepath.Join(dir, "bad.txt")
	require.NoError(t, os.WriteFile(bad, []byte("novalue\n"), 0644))
	_, err = run(t, "import", bad)
	assert.Error(t, err)
}

func TestParseEntries(t *testing.T) {
	hexInput = true
	defer func() { hexInput = false }()

	entries, err := parseEntries(strings.NewReader("0a=0b\n  0c=  \n"))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, []byte{0x0a}, entries[0].Key)
	assert.Equal(t, []byte{0x0b}, entries[0].Value)
	assert.Equal(t, []byte{0x0c}, entries[1].Key)
	assert.Empty(t, entries[1].Value)

	_, err = parseEntries(strings.NewReader("=0b\n"))
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "cmt version 0.1.0-dev")
}

func TestBadConfig(t *testing.T) {
	t.Setenv("CMT_STORE_BACKEND", "rocksdb")
	_, err := run(t, "root")
	assert.Error(t, err)
}
