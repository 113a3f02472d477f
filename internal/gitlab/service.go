package gitlab

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	gitlabapi "gitlab.com/gitlab-org/api/client-go"
)

const (
	defaultRemoteURLConstant                = "https://gitlab.com"
	projectsPageSizeConstant                = 100
	groupNameRequiredMessageConstant        = "group name must be provided"
	authenticationFailedMessageConstant     = "access token rejected by the GitLab API"
	groupNotFoundMessageConstant            = "no GitLab group matches the requested name"
	clientCreationErrorTemplateConstant     = "unable to create GitLab client: %w"
	groupSearchOperationNameConstant        = "group search"
	projectListingOperationNameConstant     = "project listing"
	networkErrorTemplateConstant            = "%s failed: %v"
	networkErrorUnknownCauseMessageConstant = "no response received"
)

// ErrGroupNameRequired indicates the listing options omitted the group name.
var ErrGroupNameRequired = errors.New(groupNameRequiredMessageConstant)

// ErrAuthenticationFailed indicates the API rejected the supplied access token.
var ErrAuthenticationFailed = errors.New(authenticationFailedMessageConstant)

// ErrGroupNotFound indicates the group name did not resolve to any group.
var ErrGroupNotFound = errors.New(groupNotFoundMessageConstant)

// NetworkError reports a transport-level failure talking to the GitLab API.
type NetworkError struct {
	Operation string
	Cause     error
}

// Error renders the failed operation and its cause.
func (failure *NetworkError) Error() string {
	causeDescription := networkErrorUnknownCauseMessageConstant
	if failure.Cause != nil {
		causeDescription = failure.Cause.Error()
	}
	return fmt.Sprintf(networkErrorTemplateConstant, failure.Operation, causeDescription)
}

// Unwrap exposes the underlying cause for errors.Is and errors.As inspection.
func (failure *NetworkError) Unwrap() error {
	return failure.Cause
}

// Project describes a GitLab repository eligible for cloning.
type Project struct {
	ID                int64
	Name              string
	Path              string
	PathWithNamespace string
	CloneURL          string
}

// ListingOptions configures a group project listing request.
type ListingOptions struct {
	GroupName        string
	IncludeSubgroups bool
}

// ProjectLister retrieves the ordered projects of a GitLab group.
type ProjectLister interface {
	ListGroupProjects(executionContext context.Context, options ListingOptions) ([]Project, error)
}

// ServiceConfiguration carries the connection settings for the GitLab API.
type ServiceConfiguration struct {
	RemoteURL   string
	AccessToken string
}

// Service resolves group names and lists group projects through the GitLab REST API.
type Service struct {
	apiClient *gitlabapi.Client
}

// NewService constructs a Service connected to the configured GitLab instance.
func NewService(configuration ServiceConfiguration) (*Service, error) {
	remoteURL := strings.TrimSpace(configuration.RemoteURL)
	if len(remoteURL) == 0 {
		remoteURL = defaultRemoteURLConstant
	}

	apiClient, clientError := gitlabapi.NewClient(configuration.AccessToken, gitlabapi.WithBaseURL(remoteURL))
	if clientError != nil {
		return nil, fmt.Errorf(clientCreationErrorTemplateConstant, clientError)
	}

	return &Service{apiClient: apiClient}, nil
}

// ListGroupProjects resolves the group name and returns every project of the group in API order.
func (service *Service) ListGroupProjects(executionContext context.Context, options ListingOptions) ([]Project, error) {
	trimmedGroupName := strings.TrimSpace(options.GroupName)
	if len(trimmedGroupName) == 0 {
		return nil, ErrGroupNameRequired
	}

	groupIdentifier, resolutionError := service.resolveGroupIdentifier(executionContext, trimmedGroupName)
	if resolutionError != nil {
		return nil, resolutionError
	}

	return service.listProjects(executionContext, groupIdentifier, options.IncludeSubgroups)
}

// resolveGroupIdentifier searches groups by name and selects the exact match when one exists.
func (service *Service) resolveGroupIdentifier(executionContext context.Context, groupName string) (int, error) {
	searchOptions := &gitlabapi.ListGroupsOptions{Search: gitlabapi.Ptr(groupName)}
	matchingGroups, searchResponse, searchError := service.apiClient.Groups.ListGroups(searchOptions, gitlabapi.WithContext(executionContext))
	if searchError != nil {
		return 0, service.classifyRequestFailure(groupSearchOperationNameConstant, searchResponse, searchError)
	}
	if len(matchingGroups) == 0 {
		return 0, ErrGroupNotFound
	}

	for _, candidateGroup := range matchingGroups {
		if strings.EqualFold(candidateGroup.Path, groupName) || strings.EqualFold(candidateGroup.Name, groupName) {
			return candidateGroup.ID, nil
		}
	}

	return matchingGroups[0].ID, nil
}

// listProjects walks every result page until the API reports no continuation.
func (service *Service) listProjects(executionContext context.Context, groupIdentifier int, includeSubgroups bool) ([]Project, error) {
	collectedProjects := []Project{}
	pageOptions := gitlabapi.ListOptions{PerPage: projectsPageSizeConstant, Page: 1}

	for {
		listingOptions := &gitlabapi.ListGroupProjectsOptions{
			ListOptions:      pageOptions,
			IncludeSubGroups: gitlabapi.Ptr(includeSubgroups),
		}

		pageProjects, pageResponse, listError := service.apiClient.Groups.ListGroupProjects(groupIdentifier, listingOptions, gitlabapi.WithContext(executionContext))
		if listError != nil {
			return nil, service.classifyRequestFailure(projectListingOperationNameConstant, pageResponse, listError)
		}

		for _, apiProject := range pageProjects {
			collectedProjects = append(collectedProjects, Project{
				ID:                int64(apiProject.ID),
				Name:              apiProject.Name,
				Path:              apiProject.Path,
				PathWithNamespace: apiProject.PathWithNamespace,
				CloneURL:          apiProject.HTTPURLToRepo,
			})
		}

		if pageResponse == nil || pageResponse.NextPage == 0 {
			break
		}
		pageOptions.Page = pageResponse.NextPage
	}

	return collectedProjects, nil
}

// classifyRequestFailure maps API responses onto the listing error taxonomy.
func (service *Service) classifyRequestFailure(operationName string, response *gitlabapi.Response, requestError error) error {
	if response != nil {
		switch response.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return ErrAuthenticationFailed
		case http.StatusNotFound:
			return ErrGroupNotFound
		}
	}
	return &NetworkError{Operation: operationName, Cause: requestError}
}
