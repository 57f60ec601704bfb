package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreLoadJSONMissingFile(t *testing.T) {
	st, err := New(t.TempDir(), nil)
	require.NoError(t, err)

	var out []string
	found, err := st.LoadJSON("missing.json", &out)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, out)
}

func TestStoreSaveAndLoadJSON(t *testing.T) {
	st, err := New(t.TempDir(), nil)
	require.NoError(t, err)

	in := map[string]int{"a": 1, "b": 2}
	require.NoError(t, st.SaveJSON("data.json", in))

	out := map[string]int{}
	found, err := st.LoadJSON("data.json", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, in, out)

	raw, err := os.ReadFile(st.Path("data.json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "  \"a\": 1")
}

func TestStoreAppendCSVWritesHeaderOnce(t *testing.T) {
	st, err := New(t.TempDir(), nil)
	require.NoError(t, err)

	header := []string{"Date", "TeacherName", "Status", "Period", "Notes"}
	require.NoError(t, st.AppendCSV("log.csv", header, [][]string{{"2025-03-03", "Sana Ahmed", "present", "", ""}}))
	require.NoError(t, st.AppendCSV("log.csv", header, [][]string{{"2025-03-04", "Sana Ahmed", "absent", "2", "sick"}}))

	rows, err := st.ReadCSV("log.csv")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, header, rows[0])
	assert.Equal(t, "2025-03-04", rows[2][0])
}

func TestStoreReadCSVMissingFile(t *testing.T) {
	st, err := New(t.TempDir(), nil)
	require.NoError(t, err)

	rows, err := st.ReadCSV("absent.csv")
	require.NoError(t, err)
	assert.Nil(t, rows)
}

func TestStoreReadCSVRaggedRows(t *testing.T) {
	dir := t.TempDir()
	st, err := New(dir, nil)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ragged.csv"), []byte("a,b,c\nx,y\n"), 0o644))

	rows, err := st.ReadCSV("ragged.csv")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Len(t, rows[1], 2)
}

func TestStoreObserverSeesOperations(t *testing.T) {
	st, err := New(t.TempDir(), nil)
	require.NoError(t, err)

	var ops []string
	st.SetObserver(func(op, file string, err error) {
		ops = append(ops, op+":"+file)
	})

	require.NoError(t, st.SaveJSON("x.json", 1))
	var v int
	_, err = st.LoadJSON("x.json", &v)
	require.NoError(t, err)

	assert.Equal(t, []string{"save:x.json", "load:x.json"}, ops)
}
