package triage

import "github.com/pkg/errors"

var (
	ErrMissingUserID  = errors.New("userId is required")
	ErrMissingEmailID = errors.New("emailId is required")
)
