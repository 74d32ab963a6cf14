package genesis

import (
	"encoding/json"

	"github.com/rbb-data/cpisync/errors"
)

// Envelope is the JSON status document the service returns instead of a
// table when it rejects a request.
type Envelope struct {
	Status *EnvelopeStatus `json:"Status"`
}

// EnvelopeStatus carries the service's internal status code and message.
type EnvelopeStatus struct {
	Code    *int   `json:"Code"`
	Content string `json:"Content"`
}

// ClassifyBody decides whether body is a table or a rejection.
//
// The body is first decoded as an Envelope. Only a JSON syntax or type
// mismatch, or a document without Status.Code, means "not an envelope" and
// the body is treated as table data. A non-zero code yields request_invalid
// with the envelope's Content as message.
func ClassifyBody(body []byte) error {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
			return nil
		}
		return errors.Wrap(err, "failed to decode status envelope")
	}

	if env.Status == nil || env.Status.Code == nil {
		return nil
	}
	if *env.Status.Code != 0 {
		return errors.RequestInvalid(env.Status.Content)
	}
	return nil
}
