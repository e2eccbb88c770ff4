package finlex

import (
	"context"
	"net/url"
)

// stubCall records one request seen by the stub transport.
type stubCall struct {
	Path   string
	Params url.Values
	Accept string
}

// stubTransport implements Getter for tests, recording every call.
type stubTransport struct {
	calls   []stubCall
	handler func(path string, params url.Values, accept string) (*Response, error)
}

func (s *stubTransport) Get(_ context.Context, path string, params url.Values, accept string) (*Response, error) {
	s.calls = append(s.calls, stubCall{Path: path, Params: params, Accept: accept})
	return s.handler(path, params, accept)
}

func okResponse(body string) (*Response, error) {
	return &Response{StatusCode: 200, Body: []byte(body)}, nil
}

func statusResponse(status int) (*Response, error) {
	return &Response{StatusCode: status}, nil
}
