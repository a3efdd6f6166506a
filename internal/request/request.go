/*
Copyright 2025 Leadrail Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package request

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ToJsonReq serializes a payload into a buffer ready to be used as a JSON
// request body.
func ToJsonReq(payload interface{}) (*bytes.Buffer, error) {
	c, e := json.Marshal(payload)
	if e != nil {
		return nil, e
	}

	bytePayload := bytes.NewBuffer(c)
	return bytePayload, nil
}

// Call sends the request with a JSON content type and decodes the response
// body into the provided structure.
func Call(req *http.Request, response interface{}) (*http.Response, error) {
	req.Header.Set("Content-Type", "application/json")
	client := &http.Client{Timeout: 30 * time.Second}

	resp, err := client.Do(req)
	if err != nil {
		return resp, err
	}

	err = json.NewDecoder(resp.Body).Decode(&response)
	if err != nil {
		return resp, err
	}
	return resp, err
}

// Retryable reports whether an HTTP status represents a transient condition
// worth one more attempt: the rate-limit status and server-side errors.
func Retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

var errRetryableStatus = errors.New("retryable response status")

// CallWithRetry runs Call under a bounded exponential backoff. build is
// invoked per attempt so request bodies are never re-read. Retryable statuses
// trigger another attempt until maxElapsed runs out; the last response is
// handed back either way so the caller can classify the outcome.
func CallWithRetry(build func() (*http.Request, error), response interface{}, maxElapsed time.Duration) (*http.Response, error) {
	var resp *http.Response

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxElapsedTime = maxElapsed

	err := backoff.Retry(func() error {
		req, buildErr := build()
		if buildErr != nil {
			return backoff.Permanent(buildErr)
		}
		r, callErr := Call(req, response)
		if callErr != nil {
			return callErr
		}
		resp = r
		if Retryable(r.StatusCode) {
			return errRetryableStatus
		}
		return nil
	}, bo)

	if errors.Is(err, errRetryableStatus) {
		// retries exhausted on a retryable status, the response tells the story
		return resp, nil
	}
	return resp, err
}
