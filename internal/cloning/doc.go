// Package cloning plans and runs sequential git clone batches for the
// projects of a GitLab group, reporting one ordered outcome per repository.
package cloning
