// Package model provides the data structures shared across the pipeline packages.
// It defines the stage descriptors registered with the executor, the stage
// statuses reported after a run, and the option interface used to observe
// the pipeline lifecycle.
package model
