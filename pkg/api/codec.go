// Package api defines the request and response messages of the BillBeam RPC services.
// Messages are plain structs carried as JSON by Codec.
package api

import "encoding/json"

// Codec marshals messages with encoding/json. It registers under the name "json",
// so Connect serves it for application/json and application/connect+json.
type Codec struct{}

func (Codec) Name() string { return "json" }

func (Codec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (Codec) Unmarshal(data []byte, msg any) error {
	// Connect sends an empty body for empty unary requests.
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}
