// Package patient defines the typed patient record and the rules that turn
// loosely typed form or JSON input into one.
package patient

import "github.com/Skufu/hepatostage/internal/catalog"

type Sex string

const (
	Male   Sex = "M"
	Female Sex = "F"
)

// Record is one patient's measurements and clinical signs. A Record
// returned by Parse always satisfies the catalog constraints.
type Record struct {
	Age        float64
	Sex        Sex
	Albumin    float64
	Bilirubin  float64
	ALT        float64
	AST        float64
	ALP        float64
	INR        float64
	Platelets  float64
	Sodium     float64
	Creatinine float64

	Ascites      bool
	Hepatomegaly bool
	Spiders      bool
	Edema        bool
}

// Numerics returns the range-checked measurements keyed by field name.
func (r Record) Numerics() map[string]float64 {
	return map[string]float64{
		catalog.Age:        r.Age,
		catalog.Albumin:    r.Albumin,
		catalog.Bilirubin:  r.Bilirubin,
		catalog.ALT:        r.ALT,
		catalog.AST:        r.AST,
		catalog.ALP:        r.ALP,
		catalog.INR:        r.INR,
		catalog.Platelets:  r.Platelets,
		catalog.Sodium:     r.Sodium,
		catalog.Creatinine: r.Creatinine,
	}
}

// Flags returns the clinical signs keyed by field name.
func (r Record) Flags() map[string]bool {
	return map[string]bool{
		catalog.Ascites:      r.Ascites,
		catalog.Hepatomegaly: r.Hepatomegaly,
		catalog.Spiders:      r.Spiders,
		catalog.Edema:        r.Edema,
	}
}

// Raw converts the record back to the untyped shape accepted by Parse.
func (r Record) Raw() map[string]any {
	raw := make(map[string]any, 15)
	for k, v := range r.Numerics() {
		raw[k] = v
	}
	for k, v := range r.Flags() {
		raw[k] = boolToInt(v)
	}
	raw[catalog.Sex] = string(r.Sex)
	return raw
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
