package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrTokenExpired     = fmt.Errorf("access token expired")

	// Catalog errors
	ErrAPIRequest       = fmt.Errorf("API request failed")
	ErrRateLimited      = fmt.Errorf("rate limited by catalog")
	ErrPlaylistNotFound = fmt.Errorf("playlist not found")

	// Job and sync lifecycle errors
	ErrJobNotFound    = fmt.Errorf("job not found")
	ErrJobNotPending  = fmt.Errorf("job is not pending")
	ErrConfigNotFound = fmt.Errorf("sync config not found")
	ErrSyncDisabled   = fmt.Errorf("sync config is disabled")
	ErrAccessDenied   = fmt.Errorf("access denied")
	ErrNotEntitled    = fmt.Errorf("user is not entitled")
	ErrUserNotFound   = fmt.Errorf("user not found")
	ErrPersistence    = fmt.Errorf("persistence failure")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")

	// Operation errors
	ErrTimeout            = fmt.Errorf("operation timed out")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
)
