package types

import "github.com/m-mizutani/goerr/v2"

// TagNotFound marks errors that should surface as HTTP 404.
var TagNotFound = goerr.NewTag("not_found")

// TagBadRequest marks errors caused by invalid client input.
var TagBadRequest = goerr.NewTag("bad_request")

// IsNotFound reports whether err carries the not-found tag.
func IsNotFound(err error) bool {
	return goerr.HasTag(err, TagNotFound)
}

// IsBadRequest reports whether err carries the bad-request tag.
func IsBadRequest(err error) bool {
	return goerr.HasTag(err, TagBadRequest)
}
