package baseapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// jsonUnmarshaler is the default Unmarshaler, a thin wrapper over
// encoding/json.
type jsonUnmarshaler struct{}

func (jsonUnmarshaler) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// StrictUnmarshaler decodes JSON rejecting fields absent from the target
// struct. Use it through WithUnmarshaler to catch schema drift early.
type StrictUnmarshaler struct{}

// Unmarshal implements Unmarshaler.
func (StrictUnmarshaler) Unmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// GetJSON performs a GET and decodes the response into out using the
// configured Unmarshaler.
func (c *Client) GetJSON(ctx context.Context, pathQuery string, out any) error {
	raw, err := c.call(ctx, http.MethodGet, pathQuery, nil)
	if err != nil {
		return err
	}
	return c.decodeInto(raw, out)
}

// PutJSON performs a PUT and decodes the response into out.
func (c *Client) PutJSON(ctx context.Context, pathQuery string, payload Payload, out any) error {
	raw, err := c.call(ctx, http.MethodPut, pathQuery, payload)
	if err != nil {
		return err
	}
	return c.decodeInto(raw, out)
}

// PostJSON performs a POST and decodes the response into out.
func (c *Client) PostJSON(ctx context.Context, pathQuery string, payload Payload, out any) error {
	raw, err := c.call(ctx, http.MethodPost, pathQuery, payload)
	if err != nil {
		return err
	}
	return c.decodeInto(raw, out)
}

// DeleteJSON performs a DELETE and decodes the response into out.
func (c *Client) DeleteJSON(ctx context.Context, pathQuery string, payload Payload, out any) error {
	raw, err := c.call(ctx, http.MethodDelete, pathQuery, payload)
	if err != nil {
		return err
	}
	return c.decodeInto(raw, out)
}

// GetJSONCached is GetJSON through the memoization layer, keyed by the query
// string under the "GetJSON" method name so typed and untyped cached reads
// never share a slot.
func GetJSONCached[T any](ctx context.Context, c *Client, pathQuery string) (T, error) {
	return Memoize(ctx, c, CallKey{Method: "GetJSON", Args: []any{pathQuery}}, func() (T, error) {
		var out T
		if err := c.GetJSON(ctx, pathQuery, &out); err != nil {
			var zero T
			return zero, err
		}
		return out, nil
	})
}

func (c *Client) decodeInto(raw []byte, out any) error {
	if err := c.unmarshaler.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("baseapi: decode response: %w", err)
	}
	return nil
}
