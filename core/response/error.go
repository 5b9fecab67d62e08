package response

import (
	"net/http"

	"github.com/relaykit/relay/core/handler"
)

// Error returns a handler response that propagates the given error.
// Handlers use it to surface typed errors to the router's error handler
// without writing anything themselves:
//
//	return response.Error(response.ErrForbidden)
func Error(err error) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		return err
	}
}
