package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// loggingTransport dumps request and response wire traffic to stdout for
// debugging, pretty-printing JSON bodies where possible.
type loggingTransport struct{}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	fmt.Printf(">>> %s %s %s\n", req.Method, req.URL, req.Proto)
	for k, v := range req.Header {
		fmt.Printf(">>> %s: %s\n", k, v)
	}

	if req.Body != nil {
		reqBody, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		req.Body = io.NopCloser(bytes.NewBuffer(reqBody))
		dumpJSON(">>>", reqBody)
	}

	resp, err := http.DefaultTransport.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	fmt.Printf("<<< %s %s\n", resp.Status, resp.Proto)
	for k, v := range resp.Header {
		fmt.Printf("<<< %s: %s\n", k, v)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	resp.Body = io.NopCloser(bytes.NewBuffer(respBody))
	dumpJSON("<<<", respBody)

	return resp, nil
}

func dumpJSON(prefix string, body []byte) {
	var data interface{}
	if err := json.Unmarshal(body, &data); err == nil {
		pretty, _ := json.MarshalIndent(data, "", "  ")
		fmt.Printf("%s %s\n", prefix, pretty)
	} else {
		fmt.Printf("%s %s\n", prefix, body)
	}
}
