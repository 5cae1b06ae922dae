package main

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/Skufu/hepatostage/internal/catalog"
	"github.com/Skufu/hepatostage/internal/prediction"
)

type numberInput struct {
	Name  string
	Label string
	Help  string
	Min   string
	Max   string
	Step  string
	Value string
}

type checkInput struct {
	Name    string
	Label   string
	Help    string
	Checked bool
}

type pageView struct {
	Basic   []numberInput
	SexHelp string
	Sex     string
	Labs    []numberInput
	Signs   []checkInput
	Result  *resultView
	Error   string
}

type probabilityRow struct {
	Stage   string
	Percent string
	Width   string
}

type resultView struct {
	Stage string
	Rows  []probabilityRow
}

type numberSpec struct {
	name  string
	label string
	step  float64
	value float64
}

var basicInputs = []numberSpec{
	{catalog.Age, "Age", 1, 50},
}

var labInputs = []numberSpec{
	{catalog.Albumin, "Albumin (g/dL)", 0.1, 4.0},
	{catalog.Bilirubin, "Bilirubin (mg/dL)", 0.1, 1.0},
	{catalog.ALT, "ALT (U/L)", 1, 30},
	{catalog.AST, "AST (U/L)", 1, 30},
	{catalog.ALP, "ALP (U/L)", 1, 100},
	{catalog.INR, "INR", 0.1, 1.0},
	{catalog.Platelets, "Platelets (×10⁹/L)", 1, 150},
	{catalog.Sodium, "Sodium (mEq/L)", 1, 135},
	{catalog.Creatinine, "Creatinine (mg/dL)", 0.1, 1.0},
}

var signLabels = map[string]string{
	catalog.Ascites:      "Ascites",
	catalog.Hepatomegaly: "Hepatomegaly",
	catalog.Spiders:      "Spider Angiomas",
	catalog.Edema:        "Edema",
}

// newPageView builds the form, echoing back submitted values when form is
// non-nil.
func newPageView(form url.Values) *pageView {
	desc := catalog.FeatureDescriptions()

	view := &pageView{
		Basic:   numberInputs(basicInputs, desc, form),
		SexHelp: desc[catalog.Sex],
		Sex:     "M",
		Labs:    numberInputs(labInputs, desc, form),
	}
	if form != nil && form.Get(catalog.Sex) != "" {
		view.Sex = form.Get(catalog.Sex)
	}
	for _, f := range catalog.FlagFields() {
		view.Signs = append(view.Signs, checkInput{
			Name:    f,
			Label:   signLabels[f],
			Help:    desc[f],
			Checked: form != nil && form.Get(f) != "",
		})
	}
	return view
}

func numberInputs(specs []numberSpec, desc map[string]string, form url.Values) []numberInput {
	out := make([]numberInput, 0, len(specs))
	for _, s := range specs {
		r, _ := catalog.RangeOf(s.name)
		value := formatNumber(s.value)
		if form != nil {
			if _, ok := form[s.name]; ok {
				value = form.Get(s.name)
			}
		}
		out = append(out, numberInput{
			Name:  s.name,
			Label: s.label,
			Help:  desc[s.name],
			Min:   formatNumber(r.Min),
			Max:   formatNumber(r.Max),
			Step:  formatNumber(s.step),
			Value: value,
		})
	}
	return out
}

func newResultView(res *prediction.Result) *resultView {
	view := &resultView{Stage: res.Stage}
	for _, stage := range res.Classes {
		p := res.Probabilities[stage]
		view.Rows = append(view.Rows, probabilityRow{
			Stage:   stage,
			Percent: fmt.Sprintf("%.1f%%", p*100),
			Width:   fmt.Sprintf("%.1f", p*100),
		})
	}
	return view
}

// rawFromForm converts submitted form strings into the loosely typed
// record the adapter validates. Numbers become float64; unparsable text is
// passed through so validation can name the field. Unchecked boxes are not
// submitted by browsers and therefore mean 0.
func rawFromForm(form url.Values) map[string]any {
	raw := make(map[string]any, 15)

	for _, f := range catalog.NumericFields() {
		if _, ok := form[f]; !ok {
			continue
		}
		text := strings.TrimSpace(form.Get(f))
		if text == "" {
			continue
		}
		if v, err := strconv.ParseFloat(text, 64); err == nil {
			raw[f] = v
		} else {
			raw[f] = text
		}
	}

	if _, ok := form[catalog.Sex]; ok {
		raw[catalog.Sex] = form.Get(catalog.Sex)
	}

	for _, f := range catalog.FlagFields() {
		switch form.Get(f) {
		case "":
			raw[f] = 0
		case "on", "1":
			raw[f] = 1
		default:
			raw[f] = form.Get(f)
		}
	}
	return raw
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
