package write

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neo-overwatch/pkg/ontology"
)

func sample(t *testing.T) []*ontology.CloseApproach {
	t.Helper()
	eros, err := ontology.NewNearEarthObject("433", "Eros", 16.84, false)
	require.NoError(t, err)
	unknown, err := ontology.NewNearEarthObject("2020 AB", "", math.NaN(), true)
	require.NoError(t, err)

	ts := time.Date(2029, time.April, 13, 21, 46, 0, 0, time.UTC)
	a, err := ontology.NewCloseApproach("433", ts, 0.0002, 7.4)
	require.NoError(t, err)
	a.NEO = eros
	b, err := ontology.NewCloseApproach("2020 AB", ts, math.NaN(), 20)
	require.NoError(t, err)
	b.NEO = unknown
	c, err := ontology.NewCloseApproach("999999", ts, 0.5, 1)
	require.NoError(t, err)
	return []*ontology.CloseApproach{a, b, c}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	n, err := WriteCSV(&buf, slices.Values(sample(t)))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	want := strings.Join([]string{
		"datetime_utc,distance_au,velocity_km_s,designation,name,diameter_km,potentially_hazardous",
		"2029-04-13 21:46,0.0002,7.4,433,Eros,16.84,False",
		"2029-04-13 21:46,nan,20,2020 AB,,nan,True",
		"2029-04-13 21:46,0.5,1,999999,,nan,False",
	}, "\n") + "\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	n, err := WriteJSON(&buf, slices.Values(sample(t)))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 3)

	assert.Equal(t, "2029-04-13 21:46", got[0]["datetime_utc"])
	assert.Equal(t, 0.0002, got[0]["distance_au"])
	neo := got[0]["neo"].(map[string]any)
	assert.Equal(t, "Eros", neo["name"])
	assert.Equal(t, 16.84, neo["diameter_km"])
	assert.Equal(t, false, neo["potentially_hazardous"])

	assert.Nil(t, got[1]["distance_au"])
	assert.Nil(t, got[1]["neo"].(map[string]any)["diameter_km"])
	assert.Equal(t, "", got[1]["neo"].(map[string]any)["name"])

	assert.Equal(t, "999999", got[2]["neo"].(map[string]any)["designation"])
}

func TestWriteJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	n, err := WriteJSON(&buf, slices.Values([]*ontology.CloseApproach(nil)))
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, "[]\n", buf.String())
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()

	n, err := WriteFile(filepath.Join(dir, "out.CSV"), slices.Values(sample(t)))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	data, err := os.ReadFile(filepath.Join(dir, "out.CSV"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "datetime_utc,"))

	_, err = WriteFile(filepath.Join(dir, "out.json"), slices.Values(sample(t)))
	require.NoError(t, err)

	_, err = WriteFile(filepath.Join(dir, "out.xml"), slices.Values(sample(t)))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
