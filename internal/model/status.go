package model

// JobState represents the lifecycle state of a queued download job
type JobState string

const (
	// JobPending means the job is queued but not started
	JobPending JobState = "Pending"

	// JobRunning means the stream fetcher is working on the job
	JobRunning JobState = "Running"

	// JobCompleted means the fetcher exited successfully
	JobCompleted JobState = "Completed"

	// JobFailed means the fetcher exited nonzero or could not be driven
	JobFailed JobState = "Failed"

	// JobCancelled means the user cancelled the job while it was running
	JobCancelled JobState = "Cancelled"
)

// String returns the string representation of JobState
func (s JobState) String() string {
	return string(s)
}

// IsActive returns true if the job currently owns the fetcher
func (s JobState) IsActive() bool {
	return s == JobRunning
}

// IsFinished returns true if the job reached a terminal state
func (s JobState) IsFinished() bool {
	return s == JobCompleted || s == JobFailed || s == JobCancelled
}
