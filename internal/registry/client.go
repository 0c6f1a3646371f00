package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"go.uber.org/zap"
)

const (
	// DefaultBaseURL points at the staging instance of crates.io.
	DefaultBaseURL = "https://staging.crates.io"
	// DefaultUserAgent identifies smoke test traffic to the registry.
	DefaultUserAgent = "crates.io smoke test"

	apiPathSegmentConstant               = "api"
	apiVersionPathSegmentConstant        = "v1"
	cratesPathSegmentConstant            = "crates"
	includeQueryParameterConstant        = "include"
	includeVersionsQueryValueConstant    = "versions"
	userAgentHeaderConstant              = "User-Agent"
	acceptHeaderConstant                 = "Accept"
	acceptHeaderValueConstant            = "application/json"
	maxVersionFieldNameConstant          = "crate.max_version"
	versionCrateFieldNameConstant        = "version.crate"
	versionNumberFieldNameConstant       = "version.num"
	loggerNotConfiguredMessageConstant   = "registry client logger not configured"
	baseURLInvalidTemplateConstant       = "invalid registry base URL %q: %w"
	baseURLNotAbsoluteTemplateConstant   = "registry base URL %q must be absolute"
	crateNameEmptyMessageConstant        = "crate name must be provided"
	versionMissingMessageConstant        = "version must be provided"
	requestCreationErrorTemplateConstant = "unable to build request: %w"
	logFieldURLConstant                  = "url"
	logFieldStatusCodeConstant           = "status_code"
	logFieldMaxVersionConstant           = "max_version"
	logFieldCrateConstant                = "crate"
	logFieldNumberConstant               = "num"
	requestIssuedMessageConstant         = "registry request issued"
	responseReceivedMessageConstant      = "registry response received"
	crateSummaryDecodedMessageConstant   = "crate summary decoded"
	versionDetailDecodedMessageConstant  = "version detail decoded"
)

var (
	// ErrLoggerNotConfigured indicates the client was constructed without a logger.
	ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)
	// ErrCrateNameMissing indicates an empty crate name argument.
	ErrCrateNameMissing = errors.New(crateNameEmptyMessageConstant)
	// ErrVersionMissing indicates a nil version argument.
	ErrVersionMissing = errors.New(versionMissingMessageConstant)
)

// HTTPClient executes HTTP requests.
type HTTPClient interface {
	Do(request *http.Request) (*http.Response, error)
}

// Configuration controls where and how the client talks to the registry.
type Configuration struct {
	BaseURL   string
	UserAgent string
	// Timeout applies only to the default HTTP client; zero means none.
	Timeout time.Duration
}

// VersionDetail is the crate name and version number echoed by the registry.
type VersionDetail struct {
	CrateName string
	Number    *semver.Version
}

// Client reads crate metadata from the registry API.
type Client struct {
	logger     *zap.Logger
	httpClient HTTPClient
	baseURL    *url.URL
	userAgent  string
}

type crateSummaryEnvelope struct {
	Crate struct {
		MaxVersion string `json:"max_version"`
	} `json:"crate"`
}

type versionDetailEnvelope struct {
	Version struct {
		Crate  string `json:"crate"`
		Number string `json:"num"`
	} `json:"version"`
}

// NewClient validates the configuration and constructs a Client. A nil httpClient selects net/http defaults.
func NewClient(logger *zap.Logger, httpClient HTTPClient, configuration Configuration) (*Client, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}

	baseURLValue := strings.TrimSpace(configuration.BaseURL)
	if len(baseURLValue) == 0 {
		baseURLValue = DefaultBaseURL
	}
	parsedBaseURL, parseError := url.Parse(baseURLValue)
	if parseError != nil {
		return nil, fmt.Errorf(baseURLInvalidTemplateConstant, baseURLValue, parseError)
	}
	if !parsedBaseURL.IsAbs() || len(parsedBaseURL.Host) == 0 {
		return nil, fmt.Errorf(baseURLNotAbsoluteTemplateConstant, baseURLValue)
	}

	userAgent := strings.TrimSpace(configuration.UserAgent)
	if len(userAgent) == 0 {
		userAgent = DefaultUserAgent
	}

	if httpClient == nil {
		httpClient = &http.Client{Timeout: configuration.Timeout}
	}

	return &Client{
		logger:     logger,
		httpClient: httpClient,
		baseURL:    parsedBaseURL,
		userAgent:  userAgent,
	}, nil
}

// Host returns the registry host used in error messages.
func (client *Client) Host() string {
	return client.baseURL.Host
}

// FetchCrateSummary returns the highest published version of the crate.
func (client *Client) FetchCrateSummary(executionContext context.Context, crateName string) (*semver.Version, error) {
	if len(strings.TrimSpace(crateName)) == 0 {
		return nil, client.operationError(OperationLoadCrateInformation, ErrCrateNameMissing)
	}

	requestURL := client.baseURL.JoinPath(apiPathSegmentConstant, apiVersionPathSegmentConstant, cratesPathSegmentConstant, crateName)
	query := requestURL.Query()
	query.Set(includeQueryParameterConstant, includeVersionsQueryValueConstant)
	requestURL.RawQuery = query.Encode()

	var envelope crateSummaryEnvelope
	if fetchError := client.getJSON(executionContext, requestURL, &envelope); fetchError != nil {
		return nil, client.operationError(OperationLoadCrateInformation, fetchError)
	}

	maxVersion, versionError := parseVersionField(maxVersionFieldNameConstant, envelope.Crate.MaxVersion)
	if versionError != nil {
		return nil, client.operationError(OperationLoadCrateInformation, versionError)
	}

	client.logger.Debug(crateSummaryDecodedMessageConstant, zap.String(logFieldMaxVersionConstant, maxVersion.String()))
	return maxVersion, nil
}

// FetchVersionDetail returns the crate name and version number the registry reports for version.
func (client *Client) FetchVersionDetail(executionContext context.Context, crateName string, version *semver.Version) (VersionDetail, error) {
	if len(strings.TrimSpace(crateName)) == 0 {
		return VersionDetail{}, client.operationError(OperationLoadVersionInformation, ErrCrateNameMissing)
	}
	if version == nil {
		return VersionDetail{}, client.operationError(OperationLoadVersionInformation, ErrVersionMissing)
	}

	requestURL := client.baseURL.JoinPath(apiPathSegmentConstant, apiVersionPathSegmentConstant, cratesPathSegmentConstant, crateName, version.String())

	var envelope versionDetailEnvelope
	if fetchError := client.getJSON(executionContext, requestURL, &envelope); fetchError != nil {
		return VersionDetail{}, client.operationError(OperationLoadVersionInformation, fetchError)
	}

	if len(envelope.Version.Crate) == 0 {
		return VersionDetail{}, client.operationError(OperationLoadVersionInformation, fmt.Errorf(missingFieldErrorTemplateConstant, ErrResponseDecoding, versionCrateFieldNameConstant))
	}
	number, versionError := parseVersionField(versionNumberFieldNameConstant, envelope.Version.Number)
	if versionError != nil {
		return VersionDetail{}, client.operationError(OperationLoadVersionInformation, versionError)
	}

	client.logger.Debug(
		versionDetailDecodedMessageConstant,
		zap.String(logFieldCrateConstant, envelope.Version.Crate),
		zap.String(logFieldNumberConstant, number.String()),
	)
	return VersionDetail{CrateName: envelope.Version.Crate, Number: number}, nil
}

func (client *Client) getJSON(executionContext context.Context, requestURL *url.URL, target any) error {
	request, requestError := http.NewRequestWithContext(executionContext, http.MethodGet, requestURL.String(), nil)
	if requestError != nil {
		return fmt.Errorf(requestCreationErrorTemplateConstant, requestError)
	}
	request.Header.Set(userAgentHeaderConstant, client.userAgent)
	request.Header.Set(acceptHeaderConstant, acceptHeaderValueConstant)

	client.logger.Debug(requestIssuedMessageConstant, zap.String(logFieldURLConstant, requestURL.String()))

	response, responseError := client.httpClient.Do(request)
	if responseError != nil {
		return responseError
	}
	defer response.Body.Close()

	client.logger.Debug(responseReceivedMessageConstant, zap.String(logFieldURLConstant, requestURL.String()), zap.Int(logFieldStatusCodeConstant, response.StatusCode))

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		bodyExcerpt, _ := io.ReadAll(io.LimitReader(response.Body, responseBodyExcerptLimitConstant))
		return StatusError{StatusCode: response.StatusCode, BodyExcerpt: string(bodyExcerpt)}
	}

	if decodeError := json.NewDecoder(response.Body).Decode(target); decodeError != nil {
		return fmt.Errorf(decodingErrorTemplateConstant, ErrResponseDecoding, decodeError)
	}
	return nil
}

func (client *Client) operationError(operation OperationName, cause error) error {
	return OperationError{Operation: operation, Host: client.Host(), Cause: cause}
}

func parseVersionField(fieldName string, fieldValue string) (*semver.Version, error) {
	trimmedValue := strings.TrimSpace(fieldValue)
	if len(trimmedValue) == 0 {
		return nil, fmt.Errorf(missingFieldErrorTemplateConstant, ErrResponseDecoding, fieldName)
	}
	parsedVersion, parseError := semver.StrictNewVersion(trimmedValue)
	if parseError != nil {
		return nil, fmt.Errorf(invalidVersionErrorTemplateConstant, ErrResponseDecoding, fieldName, trimmedValue, parseError)
	}
	return parsedVersion, nil
}
