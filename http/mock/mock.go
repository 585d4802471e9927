// Package mock provides helpers for testing API handlers.
package mock

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/klever-desktop/core/http/errorhandler"
	"github.com/klever-desktop/core/http/validator"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

// DummyEcho returns an echo router configured like the server, without any
// routes or middleware.
func DummyEcho() *echo.Echo {
	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.HTTPErrorHandler = errorhandler.HTTPErrorHandler
	router.Logger.SetOutput(io.Discard)
	router.Validator = validator.New()

	return router
}

// Response is the raw body of a recorded request.
type Response struct {
	Code int
	Raw  []byte
}

// Request records one request against the router and requires the given
// HTTP status.
func Request(t require.TestingT, httpstatus int, router http.Handler, method, path string, data io.Reader) *Response {
	w := httptest.NewRecorder()

	req, _ := http.NewRequest(method, path, data)
	if data != nil {
		req.Header.Add(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}

	router.ServeHTTP(w, req)

	body, err := io.ReadAll(w.Result().Body)
	require.NoError(t, err)

	require.Equal(t, httpstatus, w.Code, "%s %s: %s", method, path, body)

	return &Response{
		Code: w.Code,
		Raw:  body,
	}
}

// Unmarshal decodes the recorded JSON body into the target.
func Unmarshal(t require.TestingT, response *Response, target interface{}) {
	require.NoError(t, json.Unmarshal(response.Raw, target))
}
