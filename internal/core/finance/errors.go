package finance

import "errors"

var (
	ErrInvalidPeriod      = errors.New("finance: invalid period")
	ErrInvalidTransaction = errors.New("finance: invalid transaction")
)
