package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreiashu/tripgeo"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	err := cmd.Execute()
	return out.String(), err
}

func TestSearchCommand(t *testing.T) {
	out, err := run(t, "", "search", "Del", "--limit", "5")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "Delhi "), lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "New Delhi "), lines[2])

	out, err = run(t, "", "search", "zz")
	require.NoError(t, err)
	assert.Equal(t, "no matches\n", out)
}

func TestSearchCommandJSON(t *testing.T) {
	out, err := run(t, "", "--json", "search", "kedar")
	require.NoError(t, err)

	var cities []tripgeo.City
	require.NoError(t, json.Unmarshal([]byte(out), &cities))
	require.Len(t, cities, 1)
	assert.Equal(t, "Kedarnath", cities[0].Name)
}

func TestLookupCommand(t *testing.T) {
	out, err := run(t, "", "lookup", "new", "delhi")
	require.NoError(t, err)
	assert.Contains(t, out, "New Delhi")

	_, err = run(t, "", "lookup", "Atlantis")
	assert.ErrorIs(t, err, tripgeo.ErrNotFound)
}

func TestDistanceCommand(t *testing.T) {
	out, err := run(t, "", "distance", "Haridwar", "Kedarnath", "--terrain", "mountains")
	require.NoError(t, err)
	assert.Equal(t, "Haridwar, Uttarakhand -> Kedarnath, Uttarakhand: 160 km, about 6.4 h over mountains\n", out)

	_, err = run(t, "", "distance", "Delhi", "Mumbai", "--terrain", "desert")
	assert.ErrorIs(t, err, tripgeo.ErrUnknownTerrain)
}

func TestETACommand(t *testing.T) {
	out, err := run(t, "", "eta", "250", "-t", "mountains")
	require.NoError(t, err)
	assert.Equal(t, "10.0 h\n", out)

	_, err = run(t, "", "eta", "far")
	assert.Error(t, err)
}

func TestCuratedCommands(t *testing.T) {
	out, err := run(t, "", "--json", "popular")
	require.NoError(t, err)
	var cities []tripgeo.City
	require.NoError(t, json.Unmarshal([]byte(out), &cities))
	assert.Len(t, cities, len(tripgeo.PopularSourceNames))

	out, err = run(t, "", "shortcuts")
	require.NoError(t, err)
	assert.Contains(t, out, "char-dham")
	assert.Contains(t, out, "Haridwar")
}

func TestNearbyAndNearestCommands(t *testing.T) {
	out, err := run(t, "", "nearby", "Haridwar", "-k", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Rishikesh")
	assert.Contains(t, out, "18.6")

	out, err = run(t, "", "nearest", "29.95", "78.16")
	require.NoError(t, err)
	assert.Contains(t, out, "Haridwar")

	_, err = run(t, "", "nearest", "22", "60")
	assert.ErrorIs(t, err, tripgeo.ErrNotFound)
}

func TestSuggestCommand(t *testing.T) {
	out, err := run(t, "", "suggest", "Hardwar")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Haridwar, Uttarakhand (1 edits)"), out)
}

func TestExtractCommand(t *testing.T) {
	out, err := run(t, "Bus from Rishikesh to Badrinath\n", "--json", "extract")
	require.NoError(t, err)
	var cities []tripgeo.City
	require.NoError(t, json.Unmarshal([]byte(out), &cities))
	require.Len(t, cities, 2)
	assert.Equal(t, "Rishikesh", cities[0].Name)
	assert.Equal(t, "Badrinath", cities[1].Name)
}

func TestValidateCommand(t *testing.T) {
	out, err := run(t, "", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "Catalog is valid.")

	path := filepath.Join(t.TempDir(), "tiny.tsv")
	require.NoError(t, os.WriteFile(path, []byte("Leh\tLadakh\t34.1526\t77.5771\t30870\ttown\n"), 0644))
	_, err = run(t, "", "--data", path, "validate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "city count too low")
}
