package repository

import "errors"

// ErrNotFound is returned (wrapped) when a row does not exist.
var ErrNotFound = errors.New("not found")

// dateLayout stores calendar dates without a time component.
const dateLayout = "2006-01-02"
