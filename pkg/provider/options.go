package provider

import (
	"bytes"
	"io"
	"net/http"
)

type RequestOption = func(*http.Request)

func WithQuery(key string, value string) RequestOption {
	return func(req *http.Request) {
		q := req.URL.Query()
		q.Add(key, value)
		req.URL.RawQuery = q.Encode()
	}
}

func WithHeaders(headers http.Header) RequestOption {
	return func(req *http.Request) {
		for k, v := range headers {
			req.Header[k] = v
		}
	}
}

func ReplaceBody(data []byte) RequestOption {
	return func(req *http.Request) {
		if oldBody := req.Body; oldBody != nil {
			oldBody.Close()
		}
		req.ContentLength = int64(len(data))
		req.Body = io.NopCloser(bytes.NewReader(data))
		req.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		}
	}
}
