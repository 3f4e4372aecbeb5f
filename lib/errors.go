package lib

import "errors"

// Expected failure modes of the alert flow. Callers branch on these with
// errors.Is; anything else is a storage or internal error.
var (
	ErrNotAuthenticated    = errors.New("not authenticated")
	ErrNoGuardians         = errors.New("no guardians configured")
	ErrAllDispatchesFailed = errors.New("all alert deliveries failed")
	ErrInternal            = errors.New("internal error")
)
