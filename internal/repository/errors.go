package repository

import (
	"errors"
	"strings"
)

// ErrPermissionDenied indicates the database rejected a write for lack of
// privileges. Callers that treat writes as best-effort check for this.
var ErrPermissionDenied = errors.New("permission denied")

// wrapPermissionError surfaces driver-level privilege failures as
// ErrPermissionDenied while passing every other error through unchanged.
func wrapPermissionError(err error) error {
	if err == nil {
		return nil
	}
	message := strings.ToLower(err.Error())
	if strings.Contains(message, "permission denied") || strings.Contains(message, "insufficient privilege") {
		return errors.Join(ErrPermissionDenied, err)
	}
	return err
}
