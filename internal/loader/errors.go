package loader

import (
	"errors"
	"fmt"
)

var (
	errMalformed = errors.New("malformed JSON")
	errRejected  = errors.New("definition rejected")
)

type unknownKindError struct {
	kind string
}

func (e *unknownKindError) Error() string {
	return fmt.Sprintf("unknown definition kind %q", e.kind)
}
