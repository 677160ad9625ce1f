package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// TaxMode represents how tax is applied to an amount
type TaxMode int

const (
	TaxModeExclusive TaxMode = 0
	TaxModeInclusive TaxMode = 1
	TaxModeExempt    TaxMode = 2
)

func (t TaxMode) String() string {
	names := [...]string{"Exclusive", "Inclusive", "Exempt"}
	if int(t) < 0 || int(t) >= len(names) {
		return "Exclusive"
	}
	return names[t]
}

func (t TaxMode) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TaxMode) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*t = TaxMode(i)
		return nil
	}
	switch str {
	case "Exclusive":
		*t = TaxModeExclusive
	case "Inclusive":
		*t = TaxModeInclusive
	case "Exempt":
		*t = TaxModeExempt
	}
	return nil
}

func (t TaxMode) Value() (driver.Value, error) {
	return int64(t), nil
}

func (t *TaxMode) Scan(value interface{}) error {
	if value == nil {
		*t = TaxModeExclusive
		return nil
	}
	switch v := value.(type) {
	case int64:
		*t = TaxMode(v)
	case int:
		*t = TaxMode(v)
	}
	return nil
}
