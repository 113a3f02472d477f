package gitlab_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AoNovae/Git-Toolkit/internal/gitlab"
)

const (
	groupsEndpointConstant             = "/api/v4/groups"
	groupProjectsEndpointTemplateConst = "/api/v4/groups/%d/projects"
	nextPageHeaderNameConstant         = "X-Next-Page"
	testGroupNameConstant              = "platform"
	testGroupIdentifierConstant        = 42
	testAccessTokenConstant            = "glpat-test-token"
	privateTokenHeaderNameConstant     = "PRIVATE-TOKEN"
	includeSubgroupsQueryParameterName = "include_subgroups"
	searchQueryParameterNameConstant   = "search"
	pageQueryParameterNameConstant     = "page"
	malformedResponseBodyConstant      = "{not json"
	unauthorizedResponseBodyConstant   = `{"message":"401 Unauthorized"}`
	notFoundResponseBodyConstant       = `{"message":"404 Group Not Found"}`
	contentTypeHeaderNameConstant      = "Content-Type"
	jsonContentTypeConstant            = "application/json"
)

type stubGroup struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
}

type stubProject struct {
	ID                int    `json:"id"`
	Name              string `json:"name"`
	Path              string `json:"path"`
	PathWithNamespace string `json:"path_with_namespace"`
	HTTPURLToRepo     string `json:"http_url_to_repo"`
}

func writeJSONResponse(testInstance *testing.T, responseWriter http.ResponseWriter, payload any) {
	testInstance.Helper()
	responseWriter.Header().Set(contentTypeHeaderNameConstant, jsonContentTypeConstant)
	require.NoError(testInstance, json.NewEncoder(responseWriter).Encode(payload))
}

func newListingService(testInstance *testing.T, handler http.Handler) *gitlab.Service {
	testInstance.Helper()

	testServer := httptest.NewServer(handler)
	testInstance.Cleanup(testServer.Close)

	listingService, creationError := gitlab.NewService(gitlab.ServiceConfiguration{
		RemoteURL:   testServer.URL,
		AccessToken: testAccessTokenConstant,
	})
	require.NoError(testInstance, creationError)
	return listingService
}

func TestServiceRequiresGroupName(testInstance *testing.T) {
	listingService := newListingService(testInstance, http.NewServeMux())

	_, listingError := listingService.ListGroupProjects(context.Background(), gitlab.ListingOptions{GroupName: "   "})

	require.ErrorIs(testInstance, listingError, gitlab.ErrGroupNameRequired)
}

func TestServiceListsProjectsAcrossPages(testInstance *testing.T) {
	firstPageProjects := []stubProject{
		{ID: 1, Name: "Alpha", Path: "alpha", PathWithNamespace: "platform/alpha", HTTPURLToRepo: "https://gitlab.example.com/platform/alpha.git"},
		{ID: 2, Name: "Beta", Path: "beta", PathWithNamespace: "platform/beta", HTTPURLToRepo: "https://gitlab.example.com/platform/beta.git"},
	}
	secondPageProjects := []stubProject{
		{ID: 3, Name: "Gamma", Path: "gamma", PathWithNamespace: "platform/gamma", HTTPURLToRepo: "https://gitlab.example.com/platform/gamma.git"},
	}

	requestMux := http.NewServeMux()
	requestMux.HandleFunc(groupsEndpointConstant, func(responseWriter http.ResponseWriter, request *http.Request) {
		require.Equal(testInstance, testAccessTokenConstant, request.Header.Get(privateTokenHeaderNameConstant))
		require.Equal(testInstance, testGroupNameConstant, request.URL.Query().Get(searchQueryParameterNameConstant))
		writeJSONResponse(testInstance, responseWriter, []stubGroup{{ID: testGroupIdentifierConstant, Name: "Platform", Path: testGroupNameConstant}})
	})
	requestMux.HandleFunc(fmt.Sprintf(groupProjectsEndpointTemplateConst, testGroupIdentifierConstant), func(responseWriter http.ResponseWriter, request *http.Request) {
		require.Equal(testInstance, "true", request.URL.Query().Get(includeSubgroupsQueryParameterName))
		if request.URL.Query().Get(pageQueryParameterNameConstant) == "2" {
			writeJSONResponse(testInstance, responseWriter, secondPageProjects)
			return
		}
		responseWriter.Header().Set(nextPageHeaderNameConstant, "2")
		writeJSONResponse(testInstance, responseWriter, firstPageProjects)
	})

	listingService := newListingService(testInstance, requestMux)

	listedProjects, listingError := listingService.ListGroupProjects(context.Background(), gitlab.ListingOptions{
		GroupName:        testGroupNameConstant,
		IncludeSubgroups: true,
	})

	require.NoError(testInstance, listingError)
	require.Len(testInstance, listedProjects, 3)
	require.Equal(testInstance, []int64{1, 2, 3}, []int64{listedProjects[0].ID, listedProjects[1].ID, listedProjects[2].ID})
	require.Equal(testInstance, "platform/alpha", listedProjects[0].PathWithNamespace)
	require.Equal(testInstance, "https://gitlab.example.com/platform/gamma.git", listedProjects[2].CloneURL)
}

func TestServicePrefersExactGroupMatch(testInstance *testing.T) {
	exactMatchIdentifier := 9

	requestMux := http.NewServeMux()
	requestMux.HandleFunc(groupsEndpointConstant, func(responseWriter http.ResponseWriter, request *http.Request) {
		writeJSONResponse(testInstance, responseWriter, []stubGroup{
			{ID: 7, Name: "platform-tools", Path: "platform-tools"},
			{ID: exactMatchIdentifier, Name: "Platform", Path: testGroupNameConstant},
		})
	})
	requestMux.HandleFunc(fmt.Sprintf(groupProjectsEndpointTemplateConst, exactMatchIdentifier), func(responseWriter http.ResponseWriter, request *http.Request) {
		writeJSONResponse(testInstance, responseWriter, []stubProject{})
	})

	listingService := newListingService(testInstance, requestMux)

	listedProjects, listingError := listingService.ListGroupProjects(context.Background(), gitlab.ListingOptions{GroupName: testGroupNameConstant})

	require.NoError(testInstance, listingError)
	require.Empty(testInstance, listedProjects)
}

func TestServiceErrorTaxonomy(testInstance *testing.T) {
	testCases := []struct {
		name          string
		groupsHandler http.HandlerFunc
		expectedError error
		expectNetwork bool
	}{
		{
			name: "authentication_rejected",
			groupsHandler: func(responseWriter http.ResponseWriter, request *http.Request) {
				responseWriter.WriteHeader(http.StatusUnauthorized)
				fmt.Fprint(responseWriter, unauthorizedResponseBodyConstant)
			},
			expectedError: gitlab.ErrAuthenticationFailed,
		},
		{
			name: "group_search_forbidden",
			groupsHandler: func(responseWriter http.ResponseWriter, request *http.Request) {
				responseWriter.WriteHeader(http.StatusForbidden)
				fmt.Fprint(responseWriter, unauthorizedResponseBodyConstant)
			},
			expectedError: gitlab.ErrAuthenticationFailed,
		},
		{
			name: "group_search_empty",
			groupsHandler: func(responseWriter http.ResponseWriter, request *http.Request) {
				writeJSONResponse(testInstance, responseWriter, []stubGroup{})
			},
			expectedError: gitlab.ErrGroupNotFound,
		},
		{
			name: "group_search_not_found",
			groupsHandler: func(responseWriter http.ResponseWriter, request *http.Request) {
				responseWriter.WriteHeader(http.StatusNotFound)
				fmt.Fprint(responseWriter, notFoundResponseBodyConstant)
			},
			expectedError: gitlab.ErrGroupNotFound,
		},
		{
			name: "malformed_response_body",
			groupsHandler: func(responseWriter http.ResponseWriter, request *http.Request) {
				responseWriter.Header().Set(contentTypeHeaderNameConstant, jsonContentTypeConstant)
				fmt.Fprint(responseWriter, malformedResponseBodyConstant)
			},
			expectNetwork: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			requestMux := http.NewServeMux()
			requestMux.HandleFunc(groupsEndpointConstant, testCase.groupsHandler)

			listingService := newListingService(testInstance, requestMux)

			_, listingError := listingService.ListGroupProjects(context.Background(), gitlab.ListingOptions{GroupName: testGroupNameConstant})

			require.Error(testInstance, listingError)
			if testCase.expectNetwork {
				networkFailure := &gitlab.NetworkError{}
				require.ErrorAs(testInstance, listingError, &networkFailure)
				return
			}
			require.ErrorIs(testInstance, listingError, testCase.expectedError)
		})
	}
}

func TestServiceReportsNotFoundForMissingProjects(testInstance *testing.T) {
	requestMux := http.NewServeMux()
	requestMux.HandleFunc(groupsEndpointConstant, func(responseWriter http.ResponseWriter, request *http.Request) {
		writeJSONResponse(testInstance, responseWriter, []stubGroup{{ID: testGroupIdentifierConstant, Name: "Platform", Path: testGroupNameConstant}})
	})
	requestMux.HandleFunc(fmt.Sprintf(groupProjectsEndpointTemplateConst, testGroupIdentifierConstant), func(responseWriter http.ResponseWriter, request *http.Request) {
		responseWriter.WriteHeader(http.StatusNotFound)
		fmt.Fprint(responseWriter, notFoundResponseBodyConstant)
	})

	listingService := newListingService(testInstance, requestMux)

	_, listingError := listingService.ListGroupProjects(context.Background(), gitlab.ListingOptions{GroupName: testGroupNameConstant})

	require.True(testInstance, errors.Is(listingError, gitlab.ErrGroupNotFound))
}
