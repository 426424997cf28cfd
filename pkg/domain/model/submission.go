package model

import (
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
)

// SubmissionResult is the response of the generation webhook
type SubmissionResult struct {
	ProductURL string
	// Extra keeps any other properties of the response
	Extra map[string]any
}

// UnmarshalJSON decodes {"productUrl": "...", ...}
func (r *SubmissionResult) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return goerr.Wrap(err, "failed to decode submission result")
	}

	result := SubmissionResult{}
	if v, ok := raw["productUrl"]; ok {
		s, ok := v.(string)
		if !ok {
			return goerr.New("productUrl is not a string", goerr.V("productUrl", v))
		}
		result.ProductURL = s
		delete(raw, "productUrl")
	}
	if len(raw) > 0 {
		result.Extra = raw
	}

	*r = result
	return nil
}
