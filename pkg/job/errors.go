package job

import "errors"

var (
	// ErrPoolRequired is returned when a manager or enqueuer is created
	// without a database pool.
	ErrPoolRequired = errors.New("job: pool is required")

	// ErrUnknownTask is returned when a job names a task that was never
	// registered.
	ErrUnknownTask = errors.New("job: unknown task")

	// ErrInvalidPayload is returned when a payload cannot be unmarshaled
	// into the type the task handler expects.
	ErrInvalidPayload = errors.New("job: invalid payload")

	// ErrAlreadyStarted is returned by Start on a running manager.
	ErrAlreadyStarted = errors.New("job: already started")

	// ErrNotStarted is returned by Stop on a manager that is not running.
	ErrNotStarted = errors.New("job: not started")

	// ErrHealthcheckFailed is returned when the manager health check fails.
	ErrHealthcheckFailed = errors.New("job: healthcheck failed")
)
