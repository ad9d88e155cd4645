package model

import "errors"

// ErrInvalidCriteria marks a search request that cannot be executed as given.
var ErrInvalidCriteria = errors.New("invalid search criteria")
