package resources

import "encoding/json"

// Page holds one page of records from a listable endpoint. Horizon wraps
// records in a HAL `_embedded` envelope on the wire.
type Page[T any] struct {
	Records []T
}

type pageEnvelope[T any] struct {
	Embedded struct {
		Records []T `json:"records"`
	} `json:"_embedded"`
}

// UnmarshalJSON decodes the `_embedded.records` envelope.
func (p *Page[T]) UnmarshalJSON(data []byte) error {
	var env pageEnvelope[T]
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	p.Records = env.Embedded.Records
	return nil
}

// MarshalJSON re-encodes the page in the same envelope it was decoded from.
func (p Page[T]) MarshalJSON() ([]byte, error) {
	var env pageEnvelope[T]
	env.Embedded.Records = p.Records
	return json.Marshal(env)
}
