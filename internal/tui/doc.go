// Package tui implements the interactive terminal flow for cloning a GitLab
// group: credential and group entry, project multi-select, and a live
// per-repository progress display.
package tui
