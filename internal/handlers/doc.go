// Package handlers provides the built-in pre and post handlers: payload
// validation, permission checks, record ID autofill, audit logging, result
// logging, and syncing stored definitions into the registries.
package handlers

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Handler names. The pre handler names carry the keywords the default
// classifier recognises.
const (
	NameValidation     = "validation"
	NamePermission     = "permission"
	NameAutofill       = "autofill"
	NameAudit          = "audit"
	NameResultLog      = "result-log"
	NameDefinitionSync = "definition-sync"
)

// AllowUnfiltered is the plugin attribute that lets update and delete run
// without a filter.
const AllowUnfiltered = "allow_unfiltered"

func orDiscard(l logrus.FieldLogger) logrus.FieldLogger {
	if l != nil {
		return l
	}
	d := logrus.New()
	d.SetOutput(io.Discard)
	return d
}
