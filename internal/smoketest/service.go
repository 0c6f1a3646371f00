package smoketest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/temirov/crates-smoke/internal/cargo"
	"github.com/temirov/crates-smoke/internal/registry"
	"github.com/temirov/crates-smoke/internal/secret"
)

const (
	loggerNotConfiguredMessageConstant     = "smoke test logger not configured"
	readerNotConfiguredMessageConstant     = "smoke test registry reader not configured"
	publisherNotConfiguredMessageConstant  = "smoke test publisher not configured"
	crateNameMissingMessageConstant        = "crate name must be provided"
	tokenMissingMessageConstant            = "registry token must be provided"
	verificationErrorTemplateConstant      = "API returned an unexpected %s; expected `%s` found `%s`"
	publishErrorTemplateConstant           = "failed to publish %s v%s: %w"
	verificationFieldCrateNameConstant     = "crate name"
	verificationFieldVersionNumberConstant = "version number"
	loadingCrateMessageTemplateConstant    = "Loading crate information from %s…"
	checkingVersionMessageTemplateConstant = "Checking %s API for the new version…"
	skippingPublishMessageConstant         = "Skipping publish step"
	calculatedVersionMessageConstant       = "Calculated new version number"
	concurrentRunWarningMessageConstant    = "publishing is not coordinated with other smoke test runs against the same crate"
	verificationSucceededMessageConstant   = "Smoke test succeeded"
	optionsResolvedMessageConstant         = "smoke test options resolved"
	logFieldOptionsConstant                = "options"
	logFieldCrateNameConstant              = "crate_name"
	logFieldTokenConstant                  = "token"
	logFieldSkipPublishConstant            = "skip_publish"
	logFieldOldVersionConstant             = "old_version"
	logFieldNewVersionConstant             = "new_version"
)

var (
	// ErrLoggerNotConfigured indicates the service was constructed without a logger.
	ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)
	// ErrRegistryReaderNotConfigured indicates the service was constructed without a registry reader.
	ErrRegistryReaderNotConfigured = errors.New(readerNotConfiguredMessageConstant)
	// ErrPublisherNotConfigured indicates the service was constructed without a publisher.
	ErrPublisherNotConfigured = errors.New(publisherNotConfiguredMessageConstant)
	// ErrCrateNameMissing indicates empty Options.CrateName.
	ErrCrateNameMissing = errors.New(crateNameMissingMessageConstant)
	// ErrTokenMissing indicates empty Options.Token.
	ErrTokenMissing = errors.New(tokenMissingMessageConstant)
)

// RegistryReader reads crate metadata from the registry API.
type RegistryReader interface {
	Host() string
	FetchCrateSummary(executionContext context.Context, crateName string) (*semver.Version, error)
	FetchVersionDetail(executionContext context.Context, crateName string, version *semver.Version) (registry.VersionDetail, error)
}

// CratePublisher publishes a crate version to the registry.
type CratePublisher interface {
	Publish(executionContext context.Context, request cargo.PublishRequest) error
}

// Options are the resolved inputs of a single run.
type Options struct {
	CrateName   string
	Token       secret.Value
	SkipPublish bool
}

// MarshalLogObject renders the options with the token redacted.
func (options Options) MarshalLogObject(encoder zapcore.ObjectEncoder) error {
	encoder.AddString(logFieldCrateNameConstant, options.CrateName)
	encoder.AddString(logFieldTokenConstant, options.Token.String())
	encoder.AddBool(logFieldSkipPublishConstant, options.SkipPublish)
	return nil
}

// Result reports the versions observed by a successful run.
type Result struct {
	OldVersion *semver.Version
	NewVersion *semver.Version
	Published  bool
}

// VerificationError reports a registry answer that disagrees with the published crate.
type VerificationError struct {
	Field    string
	Expected string
	Actual   string
}

func (verificationError VerificationError) Error() string {
	return fmt.Sprintf(verificationErrorTemplateConstant, verificationError.Field, verificationError.Expected, verificationError.Actual)
}

// Service runs the smoke test pipeline.
type Service struct {
	logger    *zap.Logger
	reader    RegistryReader
	publisher CratePublisher
}

// NewService validates collaborators.
func NewService(logger *zap.Logger, reader RegistryReader, publisher CratePublisher) (*Service, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if reader == nil {
		return nil, ErrRegistryReaderNotConfigured
	}
	if publisher == nil {
		return nil, ErrPublisherNotConfigured
	}
	return &Service{logger: logger, reader: reader, publisher: publisher}, nil
}

// Run reads the current version, publishes the next patch version unless skipped, and verifies the registry reports it.
func (service *Service) Run(executionContext context.Context, options Options) (Result, error) {
	if len(strings.TrimSpace(options.CrateName)) == 0 {
		return Result{}, ErrCrateNameMissing
	}
	if options.Token.IsEmpty() {
		return Result{}, ErrTokenMissing
	}

	service.logger.Debug(optionsResolvedMessageConstant, zap.Object(logFieldOptionsConstant, options))

	registryHost := service.reader.Host()
	service.logger.Info(fmt.Sprintf(loadingCrateMessageTemplateConstant, registryHost))
	oldVersion, summaryError := service.reader.FetchCrateSummary(executionContext, options.CrateName)
	if summaryError != nil {
		return Result{}, summaryError
	}

	result := Result{OldVersion: oldVersion, NewVersion: oldVersion}
	if options.SkipPublish {
		service.logger.Info(skippingPublishMessageConstant)
	} else {
		nextVersion, versionError := NextPatchVersion(oldVersion)
		if versionError != nil {
			return result, versionError
		}
		result.NewVersion = nextVersion
		service.logger.Info(
			calculatedVersionMessageConstant,
			zap.String(logFieldOldVersionConstant, oldVersion.String()),
			zap.String(logFieldNewVersionConstant, result.NewVersion.String()),
		)
		service.logger.Warn(concurrentRunWarningMessageConstant, zap.String(logFieldCrateNameConstant, options.CrateName))

		publishRequest := cargo.PublishRequest{
			CrateName: options.CrateName,
			Version:   result.NewVersion,
			Token:     options.Token,
		}
		if publishError := service.publisher.Publish(executionContext, publishRequest); publishError != nil {
			return result, fmt.Errorf(publishErrorTemplateConstant, options.CrateName, result.NewVersion, publishError)
		}
		result.Published = true
	}

	service.logger.Info(fmt.Sprintf(checkingVersionMessageTemplateConstant, registryHost))
	versionDetail, detailError := service.reader.FetchVersionDetail(executionContext, options.CrateName, result.NewVersion)
	if detailError != nil {
		return result, detailError
	}

	if versionDetail.CrateName != options.CrateName {
		return result, VerificationError{
			Field:    verificationFieldCrateNameConstant,
			Expected: options.CrateName,
			Actual:   versionDetail.CrateName,
		}
	}
	if !SameVersion(result.NewVersion, versionDetail.Number) {
		return result, VerificationError{
			Field:    verificationFieldVersionNumberConstant,
			Expected: result.NewVersion.String(),
			Actual:   describeVersion(versionDetail.Number),
		}
	}

	service.logger.Info(
		verificationSucceededMessageConstant,
		zap.String(logFieldCrateNameConstant, options.CrateName),
		zap.String(logFieldNewVersionConstant, result.NewVersion.String()),
	)

	return result, nil
}

func describeVersion(version *semver.Version) string {
	if version == nil {
		return ""
	}
	return version.String()
}
