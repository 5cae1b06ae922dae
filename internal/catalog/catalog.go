// Package catalog holds the static reference data for patient fields:
// accepted ranges for the numeric measurements and a description for
// every field shown on the form.
package catalog

// Field names as they appear in submitted records and model rows.
const (
	Age          = "Age"
	Sex          = "Sex"
	Albumin      = "Albumin"
	Bilirubin    = "Bilirubin"
	ALT          = "ALT"
	AST          = "AST"
	ALP          = "ALP"
	INR          = "INR"
	Platelets    = "Platelets"
	Sodium       = "Sodium"
	Creatinine   = "Creatinine"
	Ascites      = "Ascites"
	Hepatomegaly = "Hepatomegaly"
	Spiders      = "Spiders"
	Edema        = "Edema"
)

// Range is an inclusive [Min, Max] interval.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v lies within the closed interval. NaN is never
// contained.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

var numericFields = []string{
	Age, Albumin, Bilirubin, ALT, AST, ALP, INR, Platelets, Sodium, Creatinine,
}

var flagFields = []string{Ascites, Hepatomegaly, Spiders, Edema}

var requiredFields = []string{
	Age, Sex, Albumin, Bilirubin, ALT, AST, ALP, INR, Platelets, Sodium,
	Creatinine, Ascites, Hepatomegaly, Spiders, Edema,
}

var ranges = map[string]Range{
	Age:        {Min: 18, Max: 90},
	Albumin:    {Min: 2.0, Max: 6.0},
	Bilirubin:  {Min: 0.3, Max: 10.0},
	ALT:        {Min: 7, Max: 2000},
	AST:        {Min: 10, Max: 2000},
	ALP:        {Min: 44, Max: 500},
	INR:        {Min: 0.5, Max: 5.0},
	Platelets:  {Min: 20, Max: 500},
	Sodium:     {Min: 125, Max: 145},
	Creatinine: {Min: 0.5, Max: 4.0},
}

var descriptions = map[string]string{
	Age:          "Patient's age in years",
	Sex:          "Patient's biological sex (M/F)",
	Albumin:      "Serum albumin level (Normal: 3.5-5.5 g/dL)",
	Bilirubin:    "Total bilirubin level (Normal: 0.3-1.2 mg/dL)",
	ALT:          "Alanine aminotransferase (Normal: 7-56 U/L)",
	AST:          "Aspartate aminotransferase (Normal: 10-40 U/L)",
	ALP:          "Alkaline phosphatase (Normal: 44-147 U/L)",
	INR:          "International normalized ratio (Normal: 0.8-1.1)",
	Platelets:    "Platelet count (Normal: 150-450 ×10⁹/L)",
	Sodium:       "Serum sodium level (Normal: 135-145 mEq/L)",
	Creatinine:   "Serum creatinine (Normal: 0.7-1.3 mg/dL)",
	Ascites:      "Accumulation of fluid in the peritoneal cavity",
	Hepatomegaly: "Enlarged liver",
	Spiders:      "Spider angiomas (spider-like blood vessels)",
	Edema:        "Swelling caused by fluid retention",
}

// FeatureRanges returns the accepted range of each numeric field. The map
// is a fresh copy; callers may modify it.
func FeatureRanges() map[string]Range {
	out := make(map[string]Range, len(ranges))
	for k, v := range ranges {
		out[k] = v
	}
	return out
}

// FeatureDescriptions returns a human-readable description of every field.
func FeatureDescriptions() map[string]string {
	out := make(map[string]string, len(descriptions))
	for k, v := range descriptions {
		out[k] = v
	}
	return out
}

// RangeOf returns the range for a numeric field.
func RangeOf(field string) (Range, bool) {
	r, ok := ranges[field]
	return r, ok
}

// NumericFields lists the range-checked fields in form order.
func NumericFields() []string {
	return append([]string(nil), numericFields...)
}

// FlagFields lists the 0/1 clinical-sign fields.
func FlagFields() []string {
	return append([]string(nil), flagFields...)
}

// RequiredFields lists all fields a record must carry, in form order.
func RequiredFields() []string {
	return append([]string(nil), requiredFields...)
}

// SexCodes are the accepted values of the Sex field.
var SexCodes = []string{"M", "F"}
