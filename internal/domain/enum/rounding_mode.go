package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// RoundingMode represents how a computed tax or subtotal is rounded
type RoundingMode int

const (
	RoundingModeDown   RoundingMode = 0
	RoundingModeUp     RoundingMode = 1
	RoundingModeHalfUp RoundingMode = 2
)

func (r RoundingMode) String() string {
	names := [...]string{"Down", "Up", "HalfUp"}
	if int(r) < 0 || int(r) >= len(names) {
		return "Down"
	}
	return names[r]
}

func (r RoundingMode) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *RoundingMode) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*r = RoundingMode(i)
		return nil
	}
	switch str {
	case "Down":
		*r = RoundingModeDown
	case "Up":
		*r = RoundingModeUp
	case "HalfUp":
		*r = RoundingModeHalfUp
	}
	return nil
}

func (r RoundingMode) Value() (driver.Value, error) {
	return int64(r), nil
}

func (r *RoundingMode) Scan(value interface{}) error {
	if value == nil {
		*r = RoundingModeDown
		return nil
	}
	switch v := value.(type) {
	case int64:
		*r = RoundingMode(v)
	case int:
		*r = RoundingMode(v)
	}
	return nil
}
