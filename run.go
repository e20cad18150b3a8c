package youte

import (
	"encoding/json"
	"maps"
	"slices"
	"strings"
)

// RunParams is the exact parameter set of a collection run. It is stored
// with the run's progress so a resumed run replays identical filters.
type RunParams struct {
	// Endpoint is the catalog name of the endpoint.
	Endpoint string `json:"endpoint"`

	// Params are the query parameters, excluding the API key, page token
	// and id parameter.
	Params map[string]string `json:"params,omitempty"`

	// IDs drive batched and per-item runs.
	IDs []string `json:"ids,omitempty"`

	// MaxPages caps the pages retrieved per scope. Zero means no cap.
	MaxPages int `json:"maxPages,omitempty"`
}

// Validate returns an error if the parameters cannot describe a run.
func (p *RunParams) Validate() error {
	e, err := FindEndpoint(p.Endpoint)
	if err != nil {
		return Errorf(EINVALID, "run endpoint %q unknown", p.Endpoint)
	}
	if p.MaxPages < 0 {
		return Errorf(EINVALID, "max pages must not be negative")
	}
	switch e.Mode {
	case ModePlain:
		if len(p.IDs) > 0 {
			return Errorf(EINVALID, "%s does not take ids", e.Name)
		}
	default:
		if len(p.IDs) == 0 {
			return Errorf(EINVALID, "%s requires at least one id", e.Name)
		}
	}
	for _, id := range p.IDs {
		if strings.TrimSpace(id) == "" || strings.Contains(id, ",") {
			return Errorf(EINVALID, "invalid id %q", id)
		}
	}
	for k := range p.Params {
		switch k {
		case "key", "pageToken":
			return Errorf(EINVALID, "parameter %q is managed by the collector", k)
		case e.IDParam:
			return Errorf(EINVALID, "parameter %q is set from ids", k)
		}
	}
	return nil
}

// Normalize removes duplicate ids, keeping first occurrences in order, and
// drops empty parameter values.
func (p *RunParams) Normalize() {
	seen := make(map[string]struct{}, len(p.IDs))
	ids := p.IDs[:0:0]
	for _, id := range p.IDs {
		id = strings.TrimSpace(id)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	p.IDs = ids

	for k, v := range p.Params {
		if v == "" {
			delete(p.Params, k)
		}
	}
	if len(p.Params) == 0 {
		p.Params = nil
	}
}

// Equal reports whether two parameter sets describe the same run.
func (p RunParams) Equal(o RunParams) bool {
	return p.Endpoint == o.Endpoint &&
		p.MaxPages == o.MaxPages &&
		maps.Equal(p.Params, o.Params) &&
		slices.Equal(p.IDs, o.IDs)
}

// Canonical returns a deterministic encoding of the parameters.
func (p RunParams) Canonical() []byte {
	// Map keys are marshaled in sorted order.
	b, _ := json.Marshal(p)
	return b
}
