package sqlgen

import "errors"

var (
	ErrEmptyConditions = errors.New("refusing to build a statement without conditions")
	ErrInvalidBetween  = errors.New("BETWEEN requires a two-element sequence")
	ErrInvalidGlue     = errors.New("glue must be AND or OR")
	ErrMissingTable    = errors.New("missing table")
	ErrRawInInsert     = errors.New("raw fragments are not allowed in INSERT")
	ErrEmptyData       = errors.New("no data to write")
	ErrInvalidField    = errors.New("field name contains an operator")
	ErrBindMismatch    = errors.New("placeholder count does not match binds")
	ErrUnsupported     = errors.New("not supported by dialect")
)
