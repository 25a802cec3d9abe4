package domain

import "errors"

var (
	ErrInvalidURL          = errors.New("invalid url")
	ErrURIMalformed        = errors.New("URI malformed")
	ErrNoUserData          = errors.New("no user data")
	ErrMalformedUser       = errors.New("malformed user data")
	ErrNoToken             = errors.New("no token acquired")
	ErrAccountsFileCreated = errors.New("accounts file was missing and has been created")
)
