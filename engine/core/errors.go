package core

import (
	"errors"
)

var (
	ErrInvalidHandle = errors.New("invalid or released handle")
	ErrInvalidConfig = errors.New("invalid configuration")
)
