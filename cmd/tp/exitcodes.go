package main

import (
	"errors"

	"github.com/todopath/todopath/internal/client"
	"github.com/todopath/todopath/internal/config"
	"github.com/todopath/todopath/internal/domain"
)

// Process exit codes. Scripts rely on these values.
const (
	ExitSuccess              = 0
	ExitGeneralError         = 1
	ExitServerNotRunning     = 2
	ExitProjectNotConfigured = 3
	ExitTaskNotFound         = 4
	ExitPrecedenceViolation  = 5
	ExitInvalidInput         = 6
)

var exitByCode = map[domain.ErrorCode]int{
	domain.ErrCodeTaskNotFound:        ExitTaskNotFound,
	domain.ErrCodeProjectNotFound:     ExitProjectNotConfigured,
	domain.ErrCodePrecedenceViolation: ExitPrecedenceViolation,
	domain.ErrCodeValidationFailed:    ExitInvalidInput,
	domain.ErrCodeCycleDetected:       ExitInvalidInput,
}

// exitCodeFor picks the exit status reported for err.
func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, client.ErrServerNotRunning):
		return ExitServerNotRunning
	case errors.Is(err, config.ErrNoProjectConfig):
		return ExitProjectNotConfigured
	}

	var de *domain.DomainError
	if errors.As(err, &de) {
		if code, ok := exitByCode[de.Code]; ok {
			return code
		}
	}
	return ExitGeneralError
}
