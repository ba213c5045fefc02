package main

import "errors"

// usageError marks errors caused by how the command was invoked.
// They are reported together with the usage text.
type usageError struct {
	err error
}

func (e usageError) Error() string {
	return e.err.Error()
}

func (e usageError) Unwrap() error {
	return e.err
}

func isUsageError(err error) bool {
	var ue usageError
	return errors.As(err, &ue)
}
