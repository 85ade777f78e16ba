package lca

import (
	"encoding/json"
	"strconv"
	"strings"
	"text/template"
)

// HypotheticalPrefix marks content the model could not ground in industry data.
const HypotheticalPrefix = "Hypothetical:"

const notSpecified = "Not specified"

var promptTemplate = template.Must(template.New("lca").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(`You are an expert in Lifecycle Assessment (LCA) for the metallurgy and mining industries.
Analyze the following input and produce a comprehensive lifecycle assessment.

INPUT DATA:
- Material: {{.Material}}
- Process: {{.Process}}
- Location: {{.Location}}
- Production Volume: {{.ProductionVolume}}
- Energy Source: {{.EnergySource}}
- Emissions Data: {{.Emissions}}
{{- if .Context}}
- Additional Context: {{.Context}}
{{- end}}

REQUIREMENTS:
Cover ALL of the following lifecycle stages:
{{- range $i, $s := .Stages}}
{{inc $i}}. {{$s}}
{{- end}}

For each stage, provide EXACTLY this JSON structure:
{
  "stage": "stage name",
  "impact": {
    "carbon_emission": "specific value with units or estimation method",
    "water_usage": "specific value with units or estimation method",
    "energy_consumption": "specific value with units or estimation method",
    "waste": "specific value with units or estimation method"
  },
  "main_cause": "primary contributor to environmental impact in this stage",
  "alternative_methods": ["method1", "method2", "method3"],
  "reduction_suggestions": ["suggestion1", "suggestion2", "suggestion3"],
  "circularity_opportunities": ["opportunity1", "opportunity2", "opportunity3"]
}

IMPORTANT INSTRUCTIONS:
- Provide realistic, industry-specific data when possible.
- If a value is estimated, say so in the value itself.
- Include numerical values with appropriate units when available.
- Prefix any suggestion or value that is speculative or not verified by industry practice with "{{.Hypothetical}}".
- Consider regional variations and technology availability.
- Include both current and emerging technologies in alternatives.

Return ONLY a valid JSON array containing one object per lifecycle stage. Do not add any text before or after the array and do not wrap it in markdown.
`))

type promptData struct {
	Material         string
	Process          string
	Location         string
	ProductionVolume string
	EnergySource     string
	Emissions        string
	Context          string
	Stages           []string
	Hypothetical     string
}

// BuildPrompt renders the assessment instruction for req. The output depends
// only on req.
func BuildPrompt(req *AssessmentRequest) string {
	data := promptData{
		Material:         req.Material,
		Process:          req.Process,
		Location:         describe(req.Location),
		ProductionVolume: describe(req.ProductionVolume),
		EnergySource:     describe(req.EnergySource),
		Emissions:        encode(req.Emissions, "{}"),
		Stages:           CanonicalStages,
		Hypothetical:     HypotheticalPrefix,
	}
	if len(req.Extra) > 0 {
		data.Context = encode(req.Extra, "")
	}

	var b strings.Builder
	if err := promptTemplate.Execute(&b, data); err != nil {
		panic("lca: render prompt: " + err.Error())
	}
	return b.String()
}

// describe renders an optional scalar field for the prompt.
func describe(v any) string {
	switch t := v.(type) {
	case nil:
		return notSpecified
	case string:
		if strings.TrimSpace(t) == "" {
			return notSpecified
		}
		return t
	case json.Number:
		return t.String()
	case bool:
		if !t {
			return notSpecified
		}
		return strconv.FormatBool(t)
	default:
		return encode(t, notSpecified)
	}
}

// encode serializes v as JSON. Map keys come out sorted, keeping the prompt
// stable for equal inputs.
func encode(v any, empty string) string {
	if v == nil {
		return empty
	}
	b, err := json.Marshal(v)
	if err != nil {
		return empty
	}
	return string(b)
}
