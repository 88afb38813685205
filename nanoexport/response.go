package nanoexport

import (
	"fmt"

	"github.com/arthur-debert/nanoexport/nanoexport/export"
)

// Response is the binary outcome of one export as seen by callers
type Response struct {
	OK     bool   `json:"ok" yaml:"ok"`
	Result string `json:"result,omitempty" yaml:"result,omitempty"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`

	// Err keeps the typed error for in-process callers
	Err error `json:"-" yaml:"-"`
}

// NewResponse translates an engine outcome into a Response.
// Error codes are produced here and nowhere else.
func NewResponse(result string, err error) Response {
	if err != nil {
		return Response{OK: false, Error: export.CodeOf(err), Err: err}
	}
	return Response{OK: true, Result: result}
}

// String renders the response as a single line of text
func (r Response) String() string {
	if r.OK {
		return r.Result
	}
	return fmt.Sprintf("error: %s", r.Error)
}
