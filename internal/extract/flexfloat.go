package extract

import (
	"encoding/json"
	"fmt"
)

// flexFloat decodes a JSON number that models sometimes emit as a quoted
// string with currency formatting.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexFloat(num)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("flexFloat: %s is neither number nor string", data)
	}
	if s == "" {
		*f = 0
		return nil
	}
	num, err := ParseAmount(s)
	if err != nil {
		return fmt.Errorf("flexFloat: %w", err)
	}
	*f = flexFloat(num)
	return nil
}
