// Package pipeline provides a restartable, strictly sequential batch pipeline.
//
// A pipeline is a fixed linear chain of stages over a working directory.
// Every stage owns one output directory, named after the stage, which doubles
// as its durable checkpoint: once a stage has run to completion its directory
// is never touched again, and re-running the pipeline against the same
// working directory skips every stage whose checkpoint is already populated.
//
// The pipeline stops on the first error. Nothing is retried; the only
// recovery path is fixing the underlying cause and re-running, at which point
// the checkpoint guard re-attempts only the stage that failed.
package pipeline
