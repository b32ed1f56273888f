package main

import (
	"bytes"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"pets-gateway/internal/domain/pets"
	"pets-gateway/internal/router"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func run(t *testing.T, db string, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(append([]string{"--db", db}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestPetctl_Lifecycle(t *testing.T) {
	db := filepath.Join(t.TempDir(), "pets.db")

	out, err := run(t, db, "insert", "--set", "name=Rex", "--set", "gender=male", "--set", "weight=10")
	require.NoError(t, err)
	assert.Equal(t, "uri: content://com.example.android.pets/pets/1\n", out)

	_, err = run(t, db, "insert", "--set", "name=Luna", "--set", "gender=2")
	require.NoError(t, err)

	out, err = run(t, db, "update", "1", "--set", "breed=Boxer")
	require.NoError(t, err)
	assert.Equal(t, "rows_affected: 1\n", out)

	out, err = run(t, db, "-o", "yaml", "query", "--projection", "name,breed", "--sort", "name")
	require.NoError(t, err)
	var rows []map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &rows))
	assert.Equal(t, []map[string]any{
		{"name": "Luna", "breed": nil},
		{"name": "Rex", "breed": "Boxer"},
	}, rows)

	out, err = run(t, db, "query", "--where", "gender = ?", "--arg", "2")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "Luna")
	assert.Contains(t, lines[1], "female")
	assert.Contains(t, lines[1], "NULL")

	out, err = run(t, db, "-o", "json", "delete", "content://com.example.android.pets/pets/1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"rows_affected":1}`, out)

	out, err = run(t, db, "delete", "1")
	require.NoError(t, err)
	assert.Equal(t, "rows_affected: 0\n", out)
}

func TestPetctl_Errors(t *testing.T) {
	db := filepath.Join(t.TempDir(), "pets.db")

	_, err := run(t, db, "insert", "--set", "name=", "--set", "gender=male")
	assert.ErrorIs(t, err, pets.ErrInvalidField)

	_, err = run(t, db, "insert", "1", "--set", "name=Rex", "--set", "gender=male")
	assert.ErrorIs(t, err, pets.ErrUnsupportedIdentifier)

	_, err = run(t, db, "query", "content://com.example.android.pets/pets/abc")
	assert.ErrorIs(t, err, pets.ErrMalformedIdentifierSuffix)

	_, err = run(t, db, "insert", "--set", "bogus")
	assert.Error(t, err)

	_, err = run(t, db, "-o", "xml", "type")
	assert.Error(t, err)
}

func TestPetctl_Type(t *testing.T) {
	db := filepath.Join(t.TempDir(), "pets.db")

	out, err := run(t, db, "type")
	require.NoError(t, err)
	assert.Equal(t, "type: vnd.android.cursor.dir/com.example.android.pets/pets\n", out)

	out, err = run(t, db, "--authority", "org.vet", "type", "3")
	require.NoError(t, err)
	assert.Equal(t, "type: vnd.android.cursor.item/org.vet/pets\n", out)
}

func TestParseSets(t *testing.T) {
	fs, err := parseSets([]string{"name=Tom", "gender=female", "weight=7", "breed=null"})
	require.NoError(t, err)
	assert.Equal(t, pets.FieldSet{
		pets.ColumnName:   "Tom",
		pets.ColumnGender: pets.GenderFemale,
		pets.ColumnWeight: int64(7),
		pets.ColumnBreed:  nil,
	}, fs)

	fs, err = parseSets([]string{"weight=heavy"})
	require.NoError(t, err)
	assert.Equal(t, "heavy", fs[pets.ColumnWeight])
}

func TestPetctl_Remote(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{}))
	defer ts.Close()

	var out, errOut bytes.Buffer
	exec := func(args ...string) error {
		out.Reset()
		cmd := newRootCmd(&out, &errOut)
		cmd.SetArgs(append([]string{"--server", ts.URL}, args...))
		return cmd.Execute()
	}

	require.NoError(t, exec("insert", "--set", "name=Kiwi", "--set", "gender=unknown"))
	assert.Equal(t, "uri: content://com.example.android.pets/pets/1\n", out.String())

	require.NoError(t, exec("-o", "json", "query", "1", "--projection", "_id,name"))
	assert.JSONEq(t, `[{"_id":1,"name":"Kiwi"}]`, out.String())

	err := exec("update", "1", "--set", "weight=-4")
	assert.ErrorIs(t, err, pets.ErrInvalidField)

	require.NoError(t, exec("delete", "1"))
	assert.Equal(t, "rows_affected: 1\n", out.String())
}
