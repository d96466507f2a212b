package requests

import (
	"encoding/json"
	"fmt"

	"github.com/bitly/go-simplejson"
)

// Result holds a response body read in full, or the error that stopped the
// request.
type Result struct {
	err    error
	status int
	body   []byte
}

func (r *Result) Error() error { return r.err }

// StatusCode is 0 when no response arrived.
func (r *Result) StatusCode() int { return r.status }

func (r *Result) Body() []byte { return r.body }

// UnmarshalInto decodes a 2xx JSON body into v.
func (r *Result) UnmarshalInto(v interface{}) error {
	body, err := r.successBody()
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("error unmarshalling body: %w", err)
	}
	return nil
}

// UnmarshalJSON decodes a 2xx body for loose access. Canvas answers some
// calls with no body at all, which reads as an empty object.
func (r *Result) UnmarshalJSON() (*simplejson.Json, error) {
	body, err := r.successBody()
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return simplejson.New(), nil
	}
	data, err := simplejson.NewJson(body)
	if err != nil {
		return nil, fmt.Errorf("error reading json: %w", err)
	}
	return data, nil
}

func (r *Result) successBody() ([]byte, error) {
	switch {
	case r.err != nil:
		return nil, r.err
	case r.status < 200 || r.status > 299:
		return nil, fmt.Errorf("unexpected status \"%d\": %s", r.status, r.body)
	}
	return r.body, nil
}
