package models

import "errors"

// ErrInvalidInput indicates malformed case construction or mutation arguments.
var ErrInvalidInput = errors.New("invalid input")
