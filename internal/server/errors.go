package server

import "errors"

var (
	errNoHTTPAddress = errors.New("no http address is configured")
)
