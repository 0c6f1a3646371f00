package cargo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"go.uber.org/zap"

	"github.com/temirov/crates-smoke/internal/execshell"
	"github.com/temirov/crates-smoke/internal/secret"
)

const (
	// DefaultRegistryName is the cargo registry alias used for publishing.
	DefaultRegistryName = "staging"
	// DefaultIndexURL is the git index of the staging registry.
	DefaultIndexURL = "https://github.com/rust-lang/staging.crates.io-index"

	workspacePatternConstant                = "crates-smoke-*"
	newSubcommandConstant                   = "new"
	libraryFlagConstant                     = "--lib"
	publishSubcommandConstant               = "publish"
	registryFlagConstant                    = "--registry"
	allowDirtyFlagConstant                  = "--allow-dirty"
	terminalColorEnvironmentKeyConstant     = "CARGO_TERM_COLOR"
	terminalColorEnvironmentValueConstant   = "always"
	registryEnvironmentKeyTemplateConstant  = "CARGO_REGISTRIES_%s_%s"
	registryIndexEnvironmentSuffixConstant  = "INDEX"
	registryTokenEnvironmentSuffixConstant  = "TOKEN"
	filePermissionsConstant                 = 0o644
	loggerNotConfiguredMessageConstant      = "cargo publisher logger not configured"
	executorNotConfiguredMessageConstant    = "cargo publisher executor not configured"
	crateNameMissingMessageConstant         = "crate name must be provided"
	versionMissingMessageConstant           = "version must be provided"
	tokenMissingMessageConstant             = "registry token must be provided"
	cargoNewErrorTemplateConstant           = "Failed to run `cargo new`: %w"
	cargoPublishErrorTemplateConstant       = "Failed to run `cargo publish`: %w"
	manifestWriteErrorTemplateConstant      = "Failed to write `Cargo.toml` file content: %w"
	manifestValidationErrorTemplateConstant = "Failed to generate `Cargo.toml` file content: %w"
	readmeWriteErrorTemplateConstant        = "Failed to write `README.md` file content: %w"
	workspaceCleanupFailedMessageConstant   = "unable to remove temporary working folder"
	creatingWorkspaceMessageConstant        = "Creating temporary working folder…"
	creatingProjectMessageTemplateConstant  = "Creating `%s` project…"
	overridingManifestMessageConstant       = "Overriding `Cargo.toml` file…"
	creatingReadmeMessageConstant           = "Creating `README.md` file…"
	publishingMessageTemplateConstant       = "Publishing to the %s registry…"
	projectPathResolvedMessageConstant      = "project path resolved"
	logFieldProjectPathConstant             = "project_path"
	logFieldManifestPathConstant            = "manifest_path"
	logFieldReadmePathConstant              = "readme_path"
	logFieldErrorConstant                   = "error"
)

var (
	// ErrLoggerNotConfigured indicates the publisher was constructed without a logger.
	ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)
	// ErrExecutorNotConfigured indicates the publisher was constructed without a command executor.
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
	// ErrCrateNameMissing indicates an empty crate name in a PublishRequest.
	ErrCrateNameMissing = errors.New(crateNameMissingMessageConstant)
	// ErrVersionMissing indicates a nil version in a PublishRequest.
	ErrVersionMissing = errors.New(versionMissingMessageConstant)
	// ErrTokenMissing indicates an empty registry token in a PublishRequest.
	ErrTokenMissing = errors.New(tokenMissingMessageConstant)
)

// CommandExecutor is the subset of execshell.ShellExecutor the publisher needs.
type CommandExecutor interface {
	ExecuteCargo(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Configuration controls the registry cargo publishes to.
type Configuration struct {
	RegistryName string
	IndexURL     string
	// WorkspaceRoot is the parent of temporary workspaces; empty selects os.TempDir.
	WorkspaceRoot string
}

// PublishRequest names the crate version to scaffold and publish.
type PublishRequest struct {
	CrateName string
	Version   *semver.Version
	Token     secret.Value
}

// Publisher scaffolds and publishes crate versions.
type Publisher struct {
	logger        *zap.Logger
	executor      CommandExecutor
	configuration Configuration
}

// NewPublisher validates collaborators and applies configuration defaults.
func NewPublisher(logger *zap.Logger, executor CommandExecutor, configuration Configuration) (*Publisher, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}

	configuration.RegistryName = strings.TrimSpace(configuration.RegistryName)
	if len(configuration.RegistryName) == 0 {
		configuration.RegistryName = DefaultRegistryName
	}
	configuration.IndexURL = strings.TrimSpace(configuration.IndexURL)
	if len(configuration.IndexURL) == 0 {
		configuration.IndexURL = DefaultIndexURL
	}

	return &Publisher{logger: logger, executor: executor, configuration: configuration}, nil
}

// Publish scaffolds the crate in a temporary workspace and publishes it. The workspace is removed on every return path.
func (publisher *Publisher) Publish(executionContext context.Context, request PublishRequest) error {
	if len(strings.TrimSpace(request.CrateName)) == 0 {
		return ErrCrateNameMissing
	}
	if request.Version == nil {
		return ErrVersionMissing
	}
	if request.Token.IsEmpty() {
		return ErrTokenMissing
	}

	publisher.logger.Info(creatingWorkspaceMessageConstant)
	workspace, workspaceError := NewTemporaryWorkspace(publisher.logger, publisher.configuration.WorkspaceRoot, workspacePatternConstant)
	if workspaceError != nil {
		return workspaceError
	}
	defer func() {
		if closeError := workspace.Close(); closeError != nil {
			publisher.logger.Warn(workspaceCleanupFailedMessageConstant, zap.String(logFieldErrorConstant, closeError.Error()))
		}
	}()

	publisher.logger.Info(fmt.Sprintf(creatingProjectMessageTemplateConstant, request.CrateName))
	_, newError := publisher.executor.ExecuteCargo(executionContext, execshell.CommandDetails{
		Arguments:            []string{newSubcommandConstant, libraryFlagConstant, request.CrateName},
		WorkingDirectory:     workspace.Path(),
		EnvironmentVariables: map[string]string{terminalColorEnvironmentKeyConstant: terminalColorEnvironmentValueConstant},
	})
	if newError != nil {
		return fmt.Errorf(cargoNewErrorTemplateConstant, newError)
	}

	projectPath := filepath.Join(workspace.Path(), request.CrateName)
	publisher.logger.Debug(projectPathResolvedMessageConstant, zap.String(logFieldProjectPathConstant, projectPath))

	if overrideError := publisher.overrideProjectFiles(projectPath, request); overrideError != nil {
		return overrideError
	}

	publisher.logger.Info(fmt.Sprintf(publishingMessageTemplateConstant, publisher.configuration.RegistryName))
	_, publishCommandError := publisher.executor.ExecuteCargo(executionContext, execshell.CommandDetails{
		Arguments:            []string{publishSubcommandConstant, registryFlagConstant, publisher.configuration.RegistryName, allowDirtyFlagConstant},
		WorkingDirectory:     projectPath,
		EnvironmentVariables: publisher.publishEnvironment(request.Token),
	})
	if publishCommandError != nil {
		return fmt.Errorf(cargoPublishErrorTemplateConstant, publishCommandError)
	}

	return nil
}

func (publisher *Publisher) overrideProjectFiles(projectPath string, request PublishRequest) error {
	manifestPath := filepath.Join(projectPath, ManifestFileName)
	publisher.logger.Info(overridingManifestMessageConstant, zap.String(logFieldManifestPathConstant, manifestPath))
	manifestContent := RenderManifest(request.CrateName, request.Version)
	if validationError := ValidateManifest(manifestContent, request.CrateName, request.Version); validationError != nil {
		return fmt.Errorf(manifestValidationErrorTemplateConstant, validationError)
	}
	if writeError := os.WriteFile(manifestPath, []byte(manifestContent), filePermissionsConstant); writeError != nil {
		return fmt.Errorf(manifestWriteErrorTemplateConstant, writeError)
	}

	readmePath := filepath.Join(projectPath, ReadmeFileName)
	publisher.logger.Info(creatingReadmeMessageConstant, zap.String(logFieldReadmePathConstant, readmePath))
	if writeError := os.WriteFile(readmePath, []byte(RenderReadme(request.CrateName, request.Version)), filePermissionsConstant); writeError != nil {
		return fmt.Errorf(readmeWriteErrorTemplateConstant, writeError)
	}

	return nil
}

func (publisher *Publisher) publishEnvironment(token secret.Value) map[string]string {
	return map[string]string{
		terminalColorEnvironmentKeyConstant: terminalColorEnvironmentValueConstant,
		RegistryEnvironmentKey(publisher.configuration.RegistryName, registryIndexEnvironmentSuffixConstant): publisher.configuration.IndexURL,
		RegistryEnvironmentKey(publisher.configuration.RegistryName, registryTokenEnvironmentSuffixConstant): token.Expose(),
	}
}

// RegistryEnvironmentKey builds the cargo environment variable name for a registry setting, e.g. CARGO_REGISTRIES_STAGING_TOKEN.
func RegistryEnvironmentKey(registryName string, setting string) string {
	normalizedName := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(registryName), "-", "_"))
	return fmt.Sprintf(registryEnvironmentKeyTemplateConstant, normalizedName, strings.ToUpper(setting))
}
