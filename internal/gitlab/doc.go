// Package gitlab lists a GitLab group's projects through the REST API.
//
// The Service resolves a group name to its identifier via the group search
// endpoint and concatenates every project page in API order. Failures are
// mapped onto a small taxonomy: ErrAuthenticationFailed, ErrGroupNotFound, and
// NetworkError.
package gitlab
