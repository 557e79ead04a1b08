// Copyright 2024 The RuleKit Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package collaborator implements the external collaborators an evaluation
// reaches out to: the HTTP client behind rest_get/rest_post/.../RestCall
// nodes, and the persistence store a rule_code or a constant name resolves
// against (spec.md §4.7, §6 "External interfaces").
package collaborator

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"

	"github.com/rulekit/ruleengine/value"
)

// RetryableHTTP backs every rest_get/rest_post/.../RestCall by way of
// eval.HTTPClient's Do method. It retries transient failures with capped
// exponential backoff and tags every outbound request with a correlation id
// for log correlation, the way a service client in front of this rule
// engine would.
type RetryableHTTP struct {
	client *retryablehttp.Client
}

// NewRetryableHTTP builds an HTTP collaborator with the given retry bound.
// retryMax <= 0 uses retryablehttp's default of 4.
func NewRetryableHTTP(retryMax int) *RetryableHTTP {
	c := retryablehttp.NewClient()
	c.Logger = nil
	if retryMax > 0 {
		c.RetryMax = retryMax
	}
	return &RetryableHTTP{client: c}
}

// Do implements eval.HTTPClient. body is marshaled to canonical JSON unless
// it is Null, in which case no request body is sent. The response body is
// decoded back into a value.Value: a JSON document decodes structurally,
// anything else is carried as a string.
func (h *RetryableHTTP) Do(method, url string, headers map[string]string, body value.Value, timeout time.Duration) (int, value.Value, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var reader io.Reader
	if _, isNull := body.(value.Null); !isNull && body != nil {
		raw, err := value.ToJSON(body)
		if err != nil {
			return 0, nil, errors.Wrap(err, "encoding rest_call request body")
		}
		reader = bytes.NewReader(raw)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, strings.ToUpper(method), url, reader)
	if err != nil {
		return 0, nil, errors.Wrap(err, "building rest_call request")
	}
	req.Header.Set("X-Request-Id", uuid.NewString())
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return 0, nil, errors.Wrap(err, "rest_call transport failure")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, errors.Wrap(err, "reading rest_call response body")
	}

	return resp.StatusCode, decodeResponseBody(raw, resp.Header.Get("Content-Type")), nil
}

func decodeResponseBody(raw []byte, contentType string) value.Value {
	if len(raw) == 0 {
		return value.Null{}
	}
	if strings.Contains(contentType, "json") || json.Valid(raw) {
		var generic interface{}
		if err := json.Unmarshal(raw, &generic); err == nil {
			return value.FromGo(generic)
		}
	}
	return value.String(string(raw))
}
