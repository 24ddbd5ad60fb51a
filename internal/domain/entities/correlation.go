package entities

import (
	"encoding/json"
	"math"
)

// CorrelationMatrix is a square matrix of Pearson coefficients. Coefficients
// that are undefined (a column without variance) are stored as NaN and
// encoded as null.
type CorrelationMatrix struct {
	Columns []string
	Values  [][]float64
}

func (m CorrelationMatrix) Get(a, b string) (float64, bool) {
	i, j := m.index(a), m.index(b)
	if i < 0 || j < 0 {
		return 0, false
	}
	return m.Values[i][j], true
}

func (m CorrelationMatrix) index(column string) int {
	for i, c := range m.Columns {
		if c == column {
			return i
		}
	}
	return -1
}

type correlationPayload struct {
	Columns []string     `json:"columns"`
	Values  [][]*float64 `json:"values"`
}

func (m CorrelationMatrix) MarshalJSON() ([]byte, error) {
	payload := correlationPayload{
		Columns: m.Columns,
		Values:  make([][]*float64, len(m.Values)),
	}
	for i, row := range m.Values {
		payload.Values[i] = make([]*float64, len(row))
		for j, v := range row {
			if math.IsNaN(v) {
				continue
			}
			v := v
			payload.Values[i][j] = &v
		}
	}
	return json.Marshal(payload)
}

func (m *CorrelationMatrix) UnmarshalJSON(data []byte) error {
	var payload correlationPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	m.Columns = payload.Columns
	m.Values = make([][]float64, len(payload.Values))
	for i, row := range payload.Values {
		m.Values[i] = make([]float64, len(row))
		for j, v := range row {
			if v == nil {
				m.Values[i][j] = math.NaN()
				continue
			}
			m.Values[i][j] = *v
		}
	}
	return nil
}
