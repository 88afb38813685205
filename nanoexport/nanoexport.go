// Package nanoexport is the public entry point for exporting named text
// payloads to a directory as plain files or a single zip archive.
//
// Example usage:
//
//	zip := false
//	resp := nanoexport.Save(&nanoexport.Request{
//	    ExportType: "json",
//	    Path:       "/tmp/out",
//	    IsZip:      &zip,
//	    Data:       map[string]string{"a": "1", "b": "2"},
//	}, nanoexport.Options{})
//	if !resp.OK {
//	    fmt.Println("export failed:", resp.Error)
//	}
package nanoexport

import (
	"github.com/arthur-debert/nanoexport/nanoexport/export"
)

// Request is the wire-level export request
type Request = export.Request

// Options configures the export engine
type Options = export.Options

// Save runs a single export synchronously and translates the outcome into
// a Response. Invalid options are reported as a failed Response.
func Save(req *Request, opts Options) Response {
	coordinator, err := export.New(opts)
	if err != nil {
		return NewResponse("", err)
	}
	return NewResponse(coordinator.Export(req))
}

// SaveAsync runs Save on its own goroutine. The channel receives exactly one
// Response and is then closed.
func SaveAsync(req *Request, opts Options) <-chan Response {
	responses := make(chan Response, 1)
	go func() {
		defer close(responses)
		responses <- Save(req, opts)
	}()
	return responses
}
