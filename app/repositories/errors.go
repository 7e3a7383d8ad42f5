package repositories

import "errors"

// ErrProductNotFound is returned when no catalog record has the given id.
var ErrProductNotFound = errors.New("product not found")

// ErrCorruptLog is returned when the order log document cannot be decoded.
// The document is left untouched so no recorded order is lost.
var ErrCorruptLog = errors.New("order log: corrupt document")
