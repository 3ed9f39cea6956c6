// internal/listing/record.go
package listing

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Raw is a listing as received from an external source. Its schema is not ours.
type Raw map[string]interface{}

// Record is the canonical listing every consumer works with.
type Record struct {
	ID           ID      `json:"id"`
	Title        string  `json:"title"`
	Location     string  `json:"location"`
	PropertyType string  `json:"type"`
	Price        float64 `json:"price"`
	Bedrooms     int     `json:"beds"`
	Bathrooms    int     `json:"baths"`
	Area         float64 `json:"area"`
	PhotoURL     string  `json:"photoUrl"`
}

// ID identifies a listing. It holds either an integer or a free-form string and
// is comparable, so it can key maps.
type ID struct {
	num   int64
	str   string
	isNum bool
}

// IntID returns a numeric id.
func IntID(n int64) ID { return ID{num: n, isNum: true} }

// StringID returns a string id. Numeric strings still order numerically.
func StringID(s string) ID { return ID{str: s} }

// IsNumeric reports whether the id was given as a number.
func (id ID) IsNumeric() bool { return id.isNum }

// IsZero reports whether the id is unset.
func (id ID) IsZero() bool { return id == ID{} }

// Int returns the numeric value used for ordering. String ids that do not parse
// as a finite number order as 0.
func (id ID) Int() float64 {
	if id.isNum {
		return float64(id.num)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(id.str), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func (id ID) String() string {
	if id.isNum {
		return strconv.FormatInt(id.num, 10)
	}
	return id.str
}

// MarshalJSON writes numeric ids as numbers and others as strings.
func (id ID) MarshalJSON() ([]byte, error) {
	if id.isNum {
		return []byte(strconv.FormatInt(id.num, 10)), nil
	}
	return json.Marshal(id.str)
}

// UnmarshalJSON accepts a number or a string.
func (id *ID) UnmarshalJSON(data []byte) error {
	var n json.Number
	if len(data) > 0 && data[0] != '"' && json.Unmarshal(data, &n) == nil {
		if i, err := n.Int64(); err == nil {
			*id = IntID(i)
			return nil
		}
		*id = StringID(n.String())
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*id = StringID(s)
	return nil
}

// ParseID reads an id from a path segment or query value.
func ParseID(s string) ID {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return IntID(n)
	}
	return StringID(s)
}
