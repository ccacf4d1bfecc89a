package model

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidURL indicates the input is not an http(s) URL.
	ErrInvalidURL = errors.New("invalid url")
	// ErrNoFormats indicates the source reported no downloadable formats.
	ErrNoFormats = errors.New("no formats available")
	// ErrNoResolutions indicates no video format carried a usable height.
	ErrNoResolutions = errors.New("no selectable resolutions")
	// ErrNothingDownloaded indicates the engine finished without writing any file for the job.
	ErrNothingDownloaded = errors.New("download produced no file")
	// ErrAmbiguousOutput indicates the engine output cannot be mapped onto a single file.
	ErrAmbiguousOutput = errors.New("ambiguous download output")
	// ErrNotReady indicates conversion was requested for a job that is not Ready.
	ErrNotReady = errors.New("job is not ready for conversion")
	// ErrInvalidTransition indicates a state change the job lifecycle does not allow.
	ErrInvalidTransition = errors.New("invalid job state transition")
)

// ProbeError is returned when metadata for a URL cannot be retrieved
type ProbeError struct {
	URL string
	Err error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("probe %s: %v", e.URL, e.Err)
}

func (e *ProbeError) Unwrap() error { return e.Err }

// AcquisitionError is returned when a job fails to produce its input file
type AcquisitionError struct {
	JobID string
	Stage JobState // state the job was in when it failed
	Err   error
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("acquire job %s (%s): %v", e.JobID, e.Stage, e.Err)
}

func (e *AcquisitionError) Unwrap() error { return e.Err }

// ConversionError wraps failures of the external monochrome transform
type ConversionError struct {
	JobID string
	Err   error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("convert job %s: %v", e.JobID, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }
