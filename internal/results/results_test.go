package results

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/climagination/climeval/internal/grid"
)

func mkArray(t *testing.T, name string, dims []string, shape []int, values []float64) *grid.DataArray {
	t.Helper()
	da, err := grid.NewDataArray(name, dims, shape)
	require.NoError(t, err)
	copy(da.Values.Elements, values)
	return da
}

func TestSet_AddScalar(t *testing.T) {
	s := NewSet()
	require.NoError(t, s.Add("bias_tas_global", -0.5, map[string]string{"variable": "tas"}))

	o, ok := s.Get("bias_tas_global")
	require.True(t, ok)
	assert.True(t, o.IsScalar())
	assert.Equal(t, -0.5, *o.Scalar)
	assert.Equal(t, "tas", o.Metadata["variable"])
}

func TestSet_ZeroDimArrayStoredAsScalar(t *testing.T) {
	da, err := grid.NewDataArray("bias", nil, nil)
	require.NoError(t, err)
	da.Values.Elements[0] = 1.25

	s := NewSet()
	require.NoError(t, s.Add("bias_pr_global", da, nil))

	o, _ := s.Get("bias_pr_global")
	require.True(t, o.IsScalar())
	assert.Equal(t, 1.25, *o.Scalar)
}

func TestSet_AddArray(t *testing.T) {
	s := NewSet()
	da := mkArray(t, "bias_tas", []string{"lat", "lon"}, []int{2, 2}, []float64{1, 2, 3, 4})
	require.NoError(t, s.Add("bias_tas", da, nil))

	o, _ := s.Get("bias_tas")
	assert.False(t, o.IsScalar())
	require.NotNil(t, o.Array)
	assert.True(t, o.IsSpatial())
}

func TestSet_UnsupportedValueType(t *testing.T) {
	s := NewSet()
	assert.Error(t, s.Add("bad", "a string", nil))
}

func TestSet_LastWriteWinsKeepsPosition(t *testing.T) {
	s := NewSet()
	require.NoError(t, s.Add("a", 1.0, nil))
	require.NoError(t, s.Add("b", 2.0, nil))
	require.NoError(t, s.Add("a", 9.0, nil))

	assert.Equal(t, []string{"a", "b"}, s.Names())
	assert.Equal(t, 2, s.Len())
	o, _ := s.Get("a")
	assert.Equal(t, 9.0, *o.Scalar)
}

func TestSet_SummaryScalarsOnly(t *testing.T) {
	s := NewSet()
	require.NoError(t, s.Add("bias_global", -0.5, nil))
	require.NoError(t, s.Add("bias_map",
		mkArray(t, "bias_map", []string{"lat"}, []int{2}, []float64{1, 2}), nil))

	summary := s.Summary()
	assert.Equal(t, map[string]float64{"bias_global": -0.5}, summary)
}

func TestSet_SpatialResults(t *testing.T) {
	s := NewSet()
	require.NoError(t, s.Add("scalar", 1.0, nil))
	require.NoError(t, s.Add("acf",
		mkArray(t, "acf", []string{"lag"}, []int{3}, []float64{1, 0.5, 0.2}), nil))
	require.NoError(t, s.Add("bias_map",
		mkArray(t, "bias_map", []string{"lat", "lon"}, []int{1, 1}, []float64{0}), nil))

	spatial := s.SpatialResults()
	require.Len(t, spatial, 1)
	assert.Equal(t, "bias_map", spatial[0].Name)
}

func TestOutcome_IsSpatialLongNames(t *testing.T) {
	s := NewSet()
	require.NoError(t, s.Add("m",
		mkArray(t, "m", []string{"latitude", "longitude"}, []int{1, 1}, []float64{0}), nil))
	o, _ := s.Get("m")
	assert.True(t, o.IsSpatial())
}
