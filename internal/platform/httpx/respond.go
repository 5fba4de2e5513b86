// Package httpx writes JSON and RFC 7807 problem responses for the admin
// handlers.
package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrEncode is returned by JSON when the payload could not be serialised.
// The client then receives a 500 problem instead of a truncated body.
var ErrEncode = errors.New("httpx: encode response")

const problemContentType = "application/problem+json"

// ProblemDetail is an RFC 7807 problem document. Type is a URN naming the
// error class so that front ends can branch without parsing Title.
type ProblemDetail struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// JSON writes data with status. The body is encoded before any header is
// sent.
func JSON(w http.ResponseWriter, status int, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		writeProblem(w, ProblemDetail{
			Type:   problemType("encoding"),
			Title:  "Internal Error",
			Status: http.StatusInternalServerError,
		})
		return fmt.Errorf("%w: %w", ErrEncode, err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(payload, '\n'))
	return nil
}

// Problem writes a problem document of the given class.
func Problem(w http.ResponseWriter, status int, class, title, detail string) {
	writeProblem(w, ProblemDetail{
		Type:   problemType(class),
		Title:  title,
		Status: status,
		Detail: detail,
	})
}

func writeProblem(w http.ResponseWriter, p ProblemDetail) {
	payload, _ := json.Marshal(p)
	w.Header().Set("Content-Type", problemContentType)
	w.WriteHeader(p.Status)
	_, _ = w.Write(append(payload, '\n'))
}

func problemType(class string) string {
	return "urn:odyssey-admin:problem:" + class
}
