// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import "fmt"

// Stage names the step of a job that failed.
type Stage string

const (
	StagePrimary   Stage = "primary"
	StageSecondary Stage = "secondary"
)

// ConversionError reports an external conversion that failed. It aborts
// the batch.
type ConversionError struct {
	Stage  Stage
	Input  string
	Output string
	Err    error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("%s conversion %s -> %s failed: %v", e.Stage, e.Input, e.Output, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// FilesystemError reports a directory or file that could not be created.
type FilesystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error { return e.Err }
