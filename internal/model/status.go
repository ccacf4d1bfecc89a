package model

// JobState represents the lifecycle state of an acquisition job
type JobState string

const (
	// JobStateCreated means the job has an identifier and paths but nothing ran yet
	JobStateCreated JobState = "Created"

	// JobStateDownloading means the download engine is running
	JobStateDownloading JobState = "Downloading"

	// JobStateReconciling means engine output is being renamed or merged into the input path
	JobStateReconciling JobState = "Reconciling"

	// JobStateReady means the input file exists and conversion may begin
	JobStateReady JobState = "Ready"

	// JobStateConverting means the monochrome transform is running
	JobStateConverting JobState = "Converting"

	// JobStateConverted means the output file is waiting for delivery
	JobStateConverted JobState = "Converted"

	// JobStateDelivered means the output was handed to the user
	JobStateDelivered JobState = "Delivered"

	// JobStateFailed means the job aborted; its files must be cleaned up
	JobStateFailed JobState = "Failed"
)

var jobTransitions = map[JobState][]JobState{
	JobStateCreated:     {JobStateDownloading},
	JobStateDownloading: {JobStateReconciling, JobStateFailed},
	JobStateReconciling: {JobStateReady, JobStateFailed},
	JobStateReady:       {JobStateConverting},
	JobStateConverting:  {JobStateConverted, JobStateFailed},
	JobStateConverted:   {JobStateDelivered},
}

// String returns the string representation of JobState
func (s JobState) String() string {
	return string(s)
}

// IsActive returns true while the engine or the converter is working on the job
func (s JobState) IsActive() bool {
	return s == JobStateDownloading || s == JobStateReconciling || s == JobStateConverting
}

// IsFinished returns true for terminal states (delivered or failed)
func (s JobState) IsFinished() bool {
	return s == JobStateDelivered || s == JobStateFailed
}

// CanTransition reports whether the state machine allows moving from s to next
func (s JobState) CanTransition(next JobState) bool {
	for _, allowed := range jobTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
