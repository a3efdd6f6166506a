package request

import (
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
)

func TestToJsonReq(t *testing.T) {
	buf, err := ToJsonReq(map[string]string{"name": "Jane Doe"})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"name":"Jane Doe"}`, buf.String())
}

func TestRetryable(t *testing.T) {
	assert.True(t, Retryable(http.StatusTooManyRequests))
	assert.True(t, Retryable(http.StatusInternalServerError))
	assert.True(t, Retryable(http.StatusBadGateway))
	assert.False(t, Retryable(http.StatusOK))
	assert.False(t, Retryable(http.StatusBadRequest))
	assert.False(t, Retryable(http.StatusUnauthorized))
}

func TestCall(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", "https://crm.example.com/ping",
		httpmock.NewStringResponder(200, `{"ok":true}`))

	req, err := http.NewRequest("GET", "https://crm.example.com/ping", nil)
	assert.NoError(t, err)

	var response map[string]interface{}
	resp, err := Call(req, &response)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, response["ok"])
}

func TestCallWithRetry_RecoversAfterRateLimit(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	calls := 0
	httpmock.RegisterResponder("GET", "https://crm.example.com/contacts",
		func(req *http.Request) (*http.Response, error) {
			calls++
			if calls == 1 {
				return httpmock.NewStringResponse(429, `{"message":"rate limited"}`), nil
			}
			return httpmock.NewStringResponse(200, `{"ok":true}`), nil
		})

	build := func() (*http.Request, error) {
		return http.NewRequest("GET", "https://crm.example.com/contacts", nil)
	}

	var response map[string]interface{}
	resp, err := CallWithRetry(build, &response, 5*time.Second)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, calls)
}

func TestCallWithRetry_ExhaustedReturnsLastResponse(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", "https://crm.example.com/contacts",
		httpmock.NewStringResponder(429, `{"message":"rate limited"}`))

	build := func() (*http.Request, error) {
		return http.NewRequest("GET", "https://crm.example.com/contacts", nil)
	}

	var response map[string]interface{}
	resp, err := CallWithRetry(build, &response, 1*time.Second)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}
