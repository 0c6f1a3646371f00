package registry_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/crates-smoke/internal/registry"
)

const (
	testCrateNameConstant        = "crates-staging-test-tb"
	testCrateSummaryPathConstant = "/api/v1/crates/" + testCrateNameConstant
	testVersionPathTemplate      = "/api/v1/crates/%s/%s"
)

type recordedRequest struct {
	path      string
	rawQuery  string
	userAgent string
	accept    string
}

func newRegistryServer(testInstance *testing.T, statusCode int, body string, recorded *[]recordedRequest) *httptest.Server {
	testInstance.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		*recorded = append(*recorded, recordedRequest{
			path:      request.URL.Path,
			rawQuery:  request.URL.RawQuery,
			userAgent: request.Header.Get("User-Agent"),
			accept:    request.Header.Get("Accept"),
		})
		responseWriter.Header().Set("Content-Type", "application/json")
		responseWriter.WriteHeader(statusCode)
		_, _ = responseWriter.Write([]byte(body))
	}))
	testInstance.Cleanup(server.Close)
	return server
}

func TestNewClientValidation(testInstance *testing.T) {
	testCases := []struct {
		name          string
		logger        *zap.Logger
		configuration registry.Configuration
		expectError   bool
	}{
		{name: "defaults", logger: zap.NewNop(), configuration: registry.Configuration{}},
		{name: "missing_logger", logger: nil, expectError: true},
		{name: "relative_base_url", logger: zap.NewNop(), configuration: registry.Configuration{BaseURL: "staging.crates.io"}, expectError: true},
		{name: "unparseable_base_url", logger: zap.NewNop(), configuration: registry.Configuration{BaseURL: "https://bad host"}, expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			client, creationError := registry.NewClient(testCase.logger, nil, testCase.configuration)
			if testCase.expectError {
				require.Error(testInstance, creationError)
				return
			}
			require.NoError(testInstance, creationError)
			require.Equal(testInstance, "staging.crates.io", client.Host())
		})
	}
}

func TestFetchCrateSummary(testInstance *testing.T) {
	testCases := []struct {
		name              string
		statusCode        int
		body              string
		expectedVersion   string
		expectedSentinel  error
		expectedSubstring string
	}{
		{
			name:            "max_version_decoded",
			statusCode:      http.StatusOK,
			body:            `{"crate": {"id": "crates-staging-test-tb", "max_version": "0.1.0"}, "versions": []}`,
			expectedVersion: "0.1.0",
		},
		{
			name:              "not_found_status",
			statusCode:        http.StatusNotFound,
			body:              `{"errors":[{"detail":"Not Found"}]}`,
			expectedSentinel:  registry.ErrUnexpectedStatus,
			expectedSubstring: "404",
		},
		{
			name:              "malformed_json",
			statusCode:        http.StatusOK,
			body:              `{"crate": `,
			expectedSentinel:  registry.ErrResponseDecoding,
			expectedSubstring: "response decoding failed",
		},
		{
			name:              "missing_max_version",
			statusCode:        http.StatusOK,
			body:              `{"crate": {}}`,
			expectedSentinel:  registry.ErrResponseDecoding,
			expectedSubstring: "crate.max_version",
		},
		{
			name:              "invalid_max_version",
			statusCode:        http.StatusOK,
			body:              `{"crate": {"max_version": "1.2"}}`,
			expectedSentinel:  registry.ErrResponseDecoding,
			expectedSubstring: "invalid version",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			var recorded []recordedRequest
			server := newRegistryServer(testInstance, testCase.statusCode, testCase.body, &recorded)

			client, creationError := registry.NewClient(zap.NewNop(), server.Client(), registry.Configuration{BaseURL: server.URL, UserAgent: "smoke-test-agent"})
			require.NoError(testInstance, creationError)

			maxVersion, fetchError := client.FetchCrateSummary(context.Background(), testCrateNameConstant)

			require.Len(testInstance, recorded, 1)
			require.Equal(testInstance, testCrateSummaryPathConstant, recorded[0].path)
			require.Equal(testInstance, "include=versions", recorded[0].rawQuery)
			require.Equal(testInstance, "smoke-test-agent", recorded[0].userAgent)
			require.Equal(testInstance, "application/json", recorded[0].accept)

			if testCase.expectedSentinel != nil {
				require.Error(testInstance, fetchError)
				require.Nil(testInstance, maxVersion)
				require.ErrorIs(testInstance, fetchError, testCase.expectedSentinel)
				require.ErrorContains(testInstance, fetchError, "Failed to load crate information")
				require.ErrorContains(testInstance, fetchError, testCase.expectedSubstring)

				var operationError registry.OperationError
				require.True(testInstance, errors.As(fetchError, &operationError))
				require.Equal(testInstance, registry.OperationLoadCrateInformation, operationError.Operation)
				return
			}

			require.NoError(testInstance, fetchError)
			require.Equal(testInstance, testCase.expectedVersion, maxVersion.String())
		})
	}
}

func TestFetchCrateSummaryReportsTransportFailure(testInstance *testing.T) {
	var recorded []recordedRequest
	server := newRegistryServer(testInstance, http.StatusOK, `{}`, &recorded)
	serverURL := server.URL
	server.Close()

	client, creationError := registry.NewClient(zap.NewNop(), nil, registry.Configuration{BaseURL: serverURL})
	require.NoError(testInstance, creationError)

	_, fetchError := client.FetchCrateSummary(context.Background(), testCrateNameConstant)
	require.Error(testInstance, fetchError)
	require.ErrorContains(testInstance, fetchError, "Failed to load crate information")
	require.NotErrorIs(testInstance, fetchError, registry.ErrUnexpectedStatus)
	require.NotErrorIs(testInstance, fetchError, registry.ErrResponseDecoding)
	require.Empty(testInstance, recorded)
}

func TestFetchVersionDetail(testInstance *testing.T) {
	requestedVersion := semver.MustParse("1.2.4")

	testCases := []struct {
		name              string
		statusCode        int
		body              string
		expectedCrate     string
		expectedNumber    string
		expectedSentinel  error
		expectedSubstring string
	}{
		{
			name:           "detail_decoded",
			statusCode:     http.StatusOK,
			body:           `{"version": {"id": 42, "crate": "crates-staging-test-tb", "num": "1.2.4", "yanked": false}}`,
			expectedCrate:  testCrateNameConstant,
			expectedNumber: "1.2.4",
		},
		{
			name:             "server_error",
			statusCode:       http.StatusInternalServerError,
			body:             ``,
			expectedSentinel: registry.ErrUnexpectedStatus,
		},
		{
			name:              "missing_crate_field",
			statusCode:        http.StatusOK,
			body:              `{"version": {"num": "1.2.4"}}`,
			expectedSentinel:  registry.ErrResponseDecoding,
			expectedSubstring: "version.crate",
		},
		{
			name:              "missing_number_field",
			statusCode:        http.StatusOK,
			body:              `{"version": {"crate": "crates-staging-test-tb"}}`,
			expectedSentinel:  registry.ErrResponseDecoding,
			expectedSubstring: "version.num",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			var recorded []recordedRequest
			server := newRegistryServer(testInstance, testCase.statusCode, testCase.body, &recorded)

			client, creationError := registry.NewClient(zap.NewNop(), server.Client(), registry.Configuration{BaseURL: server.URL})
			require.NoError(testInstance, creationError)

			detail, fetchError := client.FetchVersionDetail(context.Background(), testCrateNameConstant, requestedVersion)

			require.Len(testInstance, recorded, 1)
			require.Equal(testInstance, fmt.Sprintf(testVersionPathTemplate, testCrateNameConstant, "1.2.4"), recorded[0].path)
			require.Equal(testInstance, registry.DefaultUserAgent, recorded[0].userAgent)

			if testCase.expectedSentinel != nil {
				require.Error(testInstance, fetchError)
				require.ErrorIs(testInstance, fetchError, testCase.expectedSentinel)
				require.ErrorContains(testInstance, fetchError, "Failed to load version information")
				require.ErrorContains(testInstance, fetchError, testCase.expectedSubstring)
				return
			}

			require.NoError(testInstance, fetchError)
			require.Equal(testInstance, testCase.expectedCrate, detail.CrateName)
			require.Equal(testInstance, testCase.expectedNumber, detail.Number.String())
		})
	}
}

func TestFetchValidatesArguments(testInstance *testing.T) {
	client, creationError := registry.NewClient(zap.NewNop(), nil, registry.Configuration{})
	require.NoError(testInstance, creationError)

	_, summaryError := client.FetchCrateSummary(context.Background(), " ")
	require.ErrorIs(testInstance, summaryError, registry.ErrCrateNameMissing)

	_, detailError := client.FetchVersionDetail(context.Background(), testCrateNameConstant, nil)
	require.ErrorIs(testInstance, detailError, registry.ErrVersionMissing)
}
