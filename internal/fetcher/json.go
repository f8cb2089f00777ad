package fetcher

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
)

// Envelope is the wire shape both registries use: a success flag gating
// whether the data array may be trusted.
type Envelope[T any] struct {
	Success bool `json:"success"`
	Data    []T  `json:"data"`
}

// DecodeEnvelope decodes a success-gated JSON array payload. A response with
// success=false decodes without error but reports ok=false; callers treat it
// as an unavailable source and keep whatever collection they already have.
func DecodeEnvelope[T any](r io.Reader) (items []T, ok bool, err error) {
	var env Envelope[T]
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return nil, false, eris.Wrap(err, "fetcher: decode envelope")
	}
	if !env.Success {
		return nil, false, nil
	}
	return env.Data, true, nil
}
