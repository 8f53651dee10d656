package apierror_test

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/jrsteele09/go-ordercloud/apierror"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func response(status int) *http.Response {
	return &http.Response{StatusCode: status, Status: fmt.Sprintf("%d %s", status, http.StatusText(status))}
}

func TestFromResponse(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "https://api.example.test/v1/products/abc", nil)
	require.NoError(t, err)

	t.Run("not found", func(t *testing.T) {
		body := `{"Errors":[{"ErrorCode":"NotFound","Message":"Object not found","Data":{"ObjectType":"Product","ObjectID":"abc"}}]}`
		resp := response(http.StatusNotFound)
		e := apierror.FromResponse(req, resp, []byte(body))

		require.Equal(t, "Product abc not found", e.Message)
		require.Equal(t, "NotFound", e.ErrorCode)
		require.Equal(t, http.StatusNotFound, e.Status)
		require.Equal(t, "Not Found", e.StatusText)
		require.Len(t, e.Errors, 1)
		require.Same(t, req, e.Request)
		require.Same(t, resp, e.Response)
		require.True(t, e.NotFound())
	})

	t.Run("first error message", func(t *testing.T) {
		body := `{"Errors":[{"ErrorCode":"InvalidRequest","Message":"Name is required"},{"ErrorCode":"Other","Message":"second"}]}`
		e := apierror.FromResponse(req, response(http.StatusBadRequest), []byte(body))

		require.Equal(t, "Name is required", e.Message)
		require.Equal(t, "InvalidRequest", e.ErrorCode)
		require.Len(t, e.Errors, 2)
		require.False(t, e.NotFound())
	})

	t.Run("leading BOM", func(t *testing.T) {
		body := "\ufeff" + `{"Errors":[{"ErrorCode":"NotFound","Message":"x","Data":{"ObjectType":"Order","ObjectID":"o1"}}]}`
		e := apierror.FromResponse(req, response(http.StatusNotFound), []byte(body))

		require.Equal(t, "Order o1 not found", e.Message)
		require.Equal(t, "NotFound", e.ErrorCode)
	})

	t.Run("plain text body", func(t *testing.T) {
		e := apierror.FromResponse(req, response(http.StatusBadGateway), []byte("  upstream unavailable \n"))

		require.Equal(t, "upstream unavailable", e.Message)
		require.Equal(t, apierror.DefaultErrorCode, e.ErrorCode)
		require.Empty(t, e.Errors)
	})

	t.Run("long html body is truncated", func(t *testing.T) {
		html := "<html>" + strings.Repeat("x", 300) + "</html>"
		e := apierror.FromResponse(req, response(http.StatusInternalServerError), []byte(html))

		require.Equal(t, html[:200]+"...", e.Message)
	})

	t.Run("json without errors uses status text", func(t *testing.T) {
		e := apierror.FromResponse(req, response(http.StatusUnauthorized), []byte(`{"error":"invalid_grant"}`))

		require.Equal(t, "Unauthorized", e.Message)
		require.Equal(t, apierror.DefaultErrorCode, e.ErrorCode)
	})

	t.Run("empty body uses status text", func(t *testing.T) {
		e := apierror.FromResponse(req, response(http.StatusForbidden), nil)
		require.Equal(t, "Forbidden", e.Message)
	})

	t.Run("unknown status", func(t *testing.T) {
		e := apierror.FromResponse(req, response(599), nil)
		require.Equal(t, "Unknown error", e.Message)
	})

	t.Run("no response", func(t *testing.T) {
		e := apierror.FromResponse(req, nil, nil)
		require.Equal(t, "Unknown error", e.Message)
		require.Zero(t, e.Status)
	})
}

func TestAs(t *testing.T) {
	body := `{"Errors":[{"ErrorCode":"NotFound","Message":"x","Data":{"ObjectType":"Product","ObjectID":"p"}}]}`
	err := errors.Wrap(apierror.FromResponse(nil, response(http.StatusNotFound), []byte(body)), "Products.Get")

	apiErr, ok := apierror.As(err)
	require.True(t, ok)
	require.Equal(t, http.StatusNotFound, apiErr.Status)
	require.True(t, apierror.IsNotFound(err))

	_, ok = apierror.As(errors.New("other"))
	require.False(t, ok)
	require.False(t, apierror.IsNotFound(errors.New("other")))
}
