// Package usageerr defines the failure classes of a report run.
package usageerr

import "errors"

var (
	// ErrFileNotFound means an input file does not exist
	ErrFileNotFound = errors.New("file not found")
	// ErrParse means the input is not a usage export (bad CSV or missing columns)
	ErrParse = errors.New("parse error")
	// ErrDateParse means a Startdate value could not be read as a date
	ErrDateParse = errors.New("date parse error")
	// ErrIO means a file or directory could not be read, created or written
	ErrIO = errors.New("io error")
)
