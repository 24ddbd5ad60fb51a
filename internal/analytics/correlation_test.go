package analytics

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/k-shtanenko/bike-rental-dashboard/internal/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrelate(t *testing.T) {
	filtered, err := Filter(sampleDailyTable(), FilterOptions{
		Start:    day("2011-01-01"),
		End:      day("2011-01-06"),
		UserType: entities.UserTypeCasual,
	})
	require.NoError(t, err)

	t.Run("default columns", func(t *testing.T) {
		matrix, err := Correlate(filtered)
		require.NoError(t, err)

		assert.Equal(t, DefaultCorrelationColumns, matrix.Columns)
		require.Len(t, matrix.Values, 5)
		for i := range matrix.Values {
			assert.Equal(t, 1.0, matrix.Values[i][i])
		}
	})

	t.Run("symmetric and bounded", func(t *testing.T) {
		matrix, err := Correlate(filtered, entities.ColumnCnt, entities.ColumnRegistered, entities.ColumnCasual)
		require.NoError(t, err)

		for i := range matrix.Values {
			for j := range matrix.Values[i] {
				v := matrix.Values[i][j]
				assert.Equal(t, v, matrix.Values[j][i])
				assert.LessOrEqual(t, v, 1.0)
				assert.GreaterOrEqual(t, v, -1.0)
			}
		}

		v, ok := matrix.Get(entities.ColumnCnt, entities.ColumnCasual)
		require.True(t, ok)
		assert.InDelta(t, 1.0, v, 1e-12)
	})

	t.Run("zero variance is undefined", func(t *testing.T) {
		matrix, err := Correlate(filtered)
		require.NoError(t, err)

		v, ok := matrix.Get(entities.ColumnCnt, entities.ColumnTemp)
		require.True(t, ok)
		assert.True(t, math.IsNaN(v))
		assert.Equal(t, "n/a", FormatCoefficient(v))
	})

	t.Run("known coefficient", func(t *testing.T) {
		records := []entities.RentalRecord{
			dailyRecord("2011-01-01", 1, 0, 0),
			dailyRecord("2011-01-02", 1, 0, 0),
			dailyRecord("2011-01-03", 1, 0, 0),
		}
		records[0].Temp, records[1].Temp, records[2].Temp = 0.1, 0.2, 0.3
		records[0].Hum, records[1].Hum, records[2].Hum = 0.9, 0.8, 0.7
		table := derived(entities.GranularityDaily, records, []int{10, 20, 30})

		matrix, err := Correlate(table, entities.ColumnCnt, entities.ColumnTemp, entities.ColumnHum)
		require.NoError(t, err)

		v, _ := matrix.Get(entities.ColumnCnt, entities.ColumnTemp)
		assert.InDelta(t, 1.0, v, 1e-9)
		v, _ = matrix.Get(entities.ColumnCnt, entities.ColumnHum)
		assert.InDelta(t, -1.0, v, 1e-9)
		assert.Equal(t, "-1.00", FormatCoefficient(v))
	})

	t.Run("unknown column", func(t *testing.T) {
		_, err := Correlate(filtered, entities.ColumnCnt, "pressure")
		assert.ErrorIs(t, err, entities.ErrUnknownColumn)
	})

	t.Run("empty table", func(t *testing.T) {
		_, err := Correlate(entities.NewDerivedTable(entities.GranularityDaily, nil))
		assert.ErrorIs(t, err, entities.ErrNoData)
	})
}

func TestCorrelationMatrix_JSON(t *testing.T) {
	matrix := entities.CorrelationMatrix{
		Columns: []string{"cnt", "temp"},
		Values:  [][]float64{{1, math.NaN()}, {math.NaN(), 1}},
	}

	data, err := json.Marshal(matrix)
	require.NoError(t, err)
	assert.JSONEq(t, `{"columns":["cnt","temp"],"values":[[1,null],[null,1]]}`, string(data))

	var decoded entities.CorrelationMatrix
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 1.0, decoded.Values[0][0])
	assert.True(t, math.IsNaN(decoded.Values[0][1]))
}

func TestPearson(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{2, 4, 5, 4, 5}
	assert.InDelta(t, 6/math.Sqrt(60), pearson(x, y), 1e-12)
	assert.InDelta(t, pearson(x, y), pearson(y, x), 1e-12)

	// Constant series whose mean does not round-trip exactly.
	assert.True(t, math.IsNaN(pearson([]float64{0.1, 0.1, 0.1}, []float64{1, 2, 3})))
	assert.True(t, math.IsNaN(pearson([]float64{1}, []float64{2})))
	assert.True(t, math.IsNaN(pearson([]float64{1, 2}, []float64{1, 2, 3})))
}
