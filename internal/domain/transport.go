package domain

import "context"

// Transport performs a blocking POST of a JSON body and returns the raw
// response body. It has no knowledge of the payload and never retries.
type Transport interface {
	Post(ctx context.Context, url string, body []byte) ([]byte, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, url string, body []byte) ([]byte, error)

func (f TransportFunc) Post(ctx context.Context, url string, body []byte) ([]byte, error) {
	return f(ctx, url, body)
}
