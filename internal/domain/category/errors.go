package category

import "errors"

var (
	ErrCategoryNotFound    = errors.New("Category not found.")
	ErrCategoryInvalidName = errors.New("category name is required and must be at most 255 characters")
	ErrCommitFailed        = errors.New("category transaction could not be committed")
	ErrRetryExhausted      = errors.New("max retry exceeded during category update")
	ErrUnknownRelation     = errors.New("unknown category relation")
	ErrInvalidFilter       = errors.New("invalid category filter")
)

// CommitError wraps whatever failed inside the create transaction. The
// transaction has always been rolled back by the time it is returned.
type CommitError struct {
	Err error
}

func (e *CommitError) Error() string {
	return ErrCommitFailed.Error() + ": " + e.Err.Error()
}

func (e *CommitError) Unwrap() error {
	return e.Err
}

func (e *CommitError) Is(target error) bool {
	return target == ErrCommitFailed
}
