package moderation

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound              = errors.New("not found")
	ErrReportNotFound        = fmt.Errorf("report %w", ErrNotFound)
	ErrContentNotFound       = fmt.Errorf("content %w", ErrNotFound)
	ErrAlreadyResolved       = errors.New("report is already resolved")
	ErrValidation            = errors.New("validation failed")
	ErrSelfReport            = errors.New("cannot report your own content")
	ErrSelfVote              = errors.New("reporters and authors cannot vote on this report")
	ErrVotingDisabled        = errors.New("community voting is disabled")
	ErrClassifierUnavailable = errors.New("content classifier unavailable")
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
