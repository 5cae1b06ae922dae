package patient

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/Skufu/hepatostage/internal/catalog"
)

// ValidationError describes the first rule a submitted record broke.
type ValidationError struct {
	Field   string   `json:"field,omitempty"`
	Missing []string `json:"missing,omitempty"`
	Message string   `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

var requiredFields = catalog.RequiredFields

// Validate reports whether raw would be accepted by Parse, and if not, why.
func Validate(raw map[string]any) (bool, string) {
	if _, err := Parse(raw); err != nil {
		return false, err.Error()
	}
	return true, ""
}

// Parse checks raw against the catalog and builds a typed Record. Checks
// run in a fixed order and stop at the first failure: missing fields,
// numeric type and range, sex code, then the 0/1 clinical signs. The
// returned error is always a *ValidationError.
func Parse(raw map[string]any) (rec Record, err error) {
	defer func() {
		if p := recover(); p != nil {
			rec = Record{}
			err = &ValidationError{Message: fmt.Sprintf("Validation error: %v", p)}
		}
	}()

	var missing []string
	for _, f := range requiredFields() {
		if _, ok := raw[f]; !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return Record{}, &ValidationError{
			Missing: missing,
			Message: "Missing required fields: " + strings.Join(missing, ", "),
		}
	}

	nums := make(map[string]float64, 10)
	for _, f := range catalog.NumericFields() {
		r, _ := catalog.RangeOf(f)
		v, ok := asNumber(raw[f])
		if !ok {
			return Record{}, &ValidationError{Field: f, Message: f + " must be a number"}
		}
		if !r.Contains(v) {
			return Record{}, &ValidationError{
				Field:   f,
				Message: fmt.Sprintf("%s must be between %s and %s", f, formatBound(r.Min), formatBound(r.Max)),
			}
		}
		nums[f] = v
	}

	sex, _ := raw[catalog.Sex].(string)
	if !isSexCode(sex) {
		return Record{}, &ValidationError{Field: catalog.Sex, Message: "Sex must be either 'M' or 'F'"}
	}

	flags := make(map[string]bool, 4)
	for _, f := range catalog.FlagFields() {
		v, ok := asFlag(raw[f])
		if !ok {
			return Record{}, &ValidationError{Field: f, Message: f + " must be 0 or 1"}
		}
		flags[f] = v
	}

	return Record{
		Age:          nums[catalog.Age],
		Sex:          Sex(sex),
		Albumin:      nums[catalog.Albumin],
		Bilirubin:    nums[catalog.Bilirubin],
		ALT:          nums[catalog.ALT],
		AST:          nums[catalog.AST],
		ALP:          nums[catalog.ALP],
		INR:          nums[catalog.INR],
		Platelets:    nums[catalog.Platelets],
		Sodium:       nums[catalog.Sodium],
		Creatinine:   nums[catalog.Creatinine],
		Ascites:      flags[catalog.Ascites],
		Hepatomegaly: flags[catalog.Hepatomegaly],
		Spiders:      flags[catalog.Spiders],
		Edema:        flags[catalog.Edema],
	}, nil
}

// asNumber accepts Go integer and float kinds and json.Number. Booleans and
// strings are not numbers.
func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// asFlag accepts only integer 0 or 1. A float 1.0, the string "1" and
// true are all rejected.
func asFlag(v any) (bool, bool) {
	var i int64
	switch n := v.(type) {
	case int:
		i = int64(n)
	case int8:
		i = int64(n)
	case int16:
		i = int64(n)
	case int32:
		i = int64(n)
	case int64:
		i = n
	case uint:
		i = int64(n)
	case uint8:
		i = int64(n)
	case uint16:
		i = int64(n)
	case uint32:
		i = int64(n)
	case uint64:
		if n > 1 {
			return false, false
		}
		i = int64(n)
	case json.Number:
		switch n.String() {
		case "0":
			return false, true
		case "1":
			return true, true
		}
		return false, false
	default:
		return false, false
	}
	switch i {
	case 0:
		return false, true
	case 1:
		return true, true
	}
	return false, false
}

func isSexCode(s string) bool {
	for _, code := range catalog.SexCodes {
		if s == code {
			return true
		}
	}
	return false
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
