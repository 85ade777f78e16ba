package lca

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/tjfontaine/lca-gateway/internal/domain"
)

// Field names with a dedicated slot in AssessmentRequest.
const (
	FieldMaterial         = "material"
	FieldProcess          = "process"
	FieldLocation         = "location"
	FieldProductionVolume = "production_volume"
	FieldEnergySource     = "energy_source"
	FieldEmissions        = "emissions"
)

// DecodeFields decodes a request body into a generic JSON object. Numbers
// are kept as json.Number so they reach the prompt exactly as sent.
func DecodeFields(body []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, domain.ErrInvalidRequest("Request body must be valid JSON").
			WithCode(domain.ErrorCodeMalformedBody)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, domain.ErrInvalidRequest("Request body must contain a single JSON object").
			WithCode(domain.ErrorCodeMalformedBody)
	}

	fields, ok := v.(map[string]any)
	if !ok {
		return nil, domain.ErrInvalidRequest("Request body must be a JSON object").
			WithCode(domain.ErrorCodeMalformedBody)
	}
	return fields, nil
}

// Validate checks the required fields and builds the normalized request.
// Material is checked before process; the first failure is returned.
func Validate(fields map[string]any) (*AssessmentRequest, error) {
	material, err := requiredString(fields, FieldMaterial, "Material")
	if err != nil {
		return nil, err
	}
	process, err := requiredString(fields, FieldProcess, "Process")
	if err != nil {
		return nil, err
	}

	req := &AssessmentRequest{
		Material:         material,
		Process:          process,
		Location:         fields[FieldLocation],
		ProductionVolume: fields[FieldProductionVolume],
		EnergySource:     fields[FieldEnergySource],
		Emissions:        fields[FieldEmissions],
	}

	for k, v := range fields {
		switch k {
		case FieldMaterial, FieldProcess, FieldLocation, FieldProductionVolume, FieldEnergySource, FieldEmissions:
			continue
		}
		if req.Extra == nil {
			req.Extra = make(map[string]any)
		}
		req.Extra[k] = v
	}

	return req, nil
}

func requiredString(fields map[string]any, key, label string) (string, error) {
	s, ok := fields[key].(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", domain.ErrInvalidRequest(label+" is required and must be a non-empty string").
			WithParam(key).
			WithCode(domain.ErrorCodeMissingField)
	}
	return strings.TrimSpace(s), nil
}

// Fields returns the normalized request as a flat object: the trimmed
// required fields plus every other field as received.
func (r *AssessmentRequest) Fields() map[string]any {
	out := make(map[string]any, len(r.Extra)+6)
	for k, v := range r.Extra {
		out[k] = v
	}
	out[FieldMaterial] = r.Material
	out[FieldProcess] = r.Process
	for k, v := range map[string]any{
		FieldLocation:         r.Location,
		FieldProductionVolume: r.ProductionVolume,
		FieldEnergySource:     r.EnergySource,
		FieldEmissions:        r.Emissions,
	} {
		if v != nil {
			out[k] = v
		}
	}
	return out
}
