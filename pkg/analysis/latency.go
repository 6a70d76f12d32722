package analysis

import (
	"encoding/json"
	"math"
	"strconv"
)

// Latency is a latency in milliseconds. A Latency which is not Valid is the "no data" value
// reported for groups without any successful query, it is distinct from a real latency of 0ms.
type Latency struct {
	Value float64
	Valid bool
}

// NoData is the latency reported when there is nothing to compute it from.
var NoData = Latency{}

// Ms creates valid Latency from milliseconds.
func Ms(v float64) Latency {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NoData
	}
	return Latency{Value: v, Valid: true}
}

// String formats the latency for humans, N/A is used for no data.
func (l Latency) String() string {
	if !l.Valid {
		return "N/A"
	}
	return strconv.FormatFloat(l.Value, 'f', 2, 64)
}

// CSV formats the latency for CSV exports, empty cell is used for no data.
func (l Latency) CSV() string {
	if !l.Valid {
		return ""
	}
	return strconv.FormatFloat(l.Value, 'f', 3, 64)
}

// MarshalJSON encodes no data as null.
func (l Latency) MarshalJSON() ([]byte, error) {
	if !l.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(l.Value)
}

// UnmarshalJSON decodes null as no data.
func (l *Latency) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*l = NoData
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*l = Ms(v)
	return nil
}

// Less orders latencies ascending, no data is ordered after any real latency.
func (l Latency) Less(o Latency) bool {
	switch {
	case !l.Valid:
		return false
	case !o.Valid:
		return true
	default:
		return l.Value < o.Value
	}
}
