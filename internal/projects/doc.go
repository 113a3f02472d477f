// Package projects implements the command that lists a GitLab group's projects.
package projects
