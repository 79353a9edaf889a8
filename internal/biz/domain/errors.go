package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrCommunityNotFound is returned when a guild is unknown to the platform
	ErrCommunityNotFound = errors.New("community not found")

	// ErrInvalidUsername is returned for an empty subscriber username
	ErrInvalidUsername = errors.New("invalid username")
)

// ResolutionError reports that a notification channel could not be provisioned
type ResolutionError struct {
	CommunityID string
	Err         error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("guild with ID '%s' does not exist: %v", e.CommunityID, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}
