package core

import "errors"

// Internal sentinels used between the core's components. The facade maps them
// onto the application error taxonomy in pkg/errors before they escape.
var (
	errTokenInvalid  = errors.New("core: invalid access token")
	errActiveSession = errors.New("core: active session exists for login id")
	errLoginTaken    = errors.New("core: login id already registered")
)
