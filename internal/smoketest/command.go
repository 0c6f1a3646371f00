package smoketest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/crates-smoke/internal/execshell"
	"github.com/temirov/crates-smoke/internal/registry"
	"github.com/temirov/crates-smoke/internal/secret"
)

const (
	commandUseConstant                      = "crates-smoke"
	commandShortDescriptionConstant         = "Smoke test the staging crates.io publish pipeline"
	commandLongDescriptionConstant          = "crates-smoke publishes the next patch version of a test crate to the staging registry and verifies the registry API reports it."
	unexpectedArgumentsErrorMessageConstant = "crates-smoke does not accept positional arguments"
	crateNameFlagNameConstant               = "crate-name"
	crateNameFlagDescriptionConstant        = "Name of the test crate published to the staging registry"
	tokenFlagNameConstant                   = "token"
	tokenFlagDescriptionConstant            = "Registry API token used to publish the new version (falls back to CARGO_REGISTRY_TOKEN)"
	tokenSourceFlagNameConstant             = "token-source"
	tokenSourceFlagDescriptionConstant      = "Token source used when --token is empty (env:NAME or file:/path)"
	skipPublishFlagNameConstant             = "skip-publish"
	skipPublishFlagDescriptionConstant      = "Skip publishing and verify the highest uploaded version instead"
	tokenSourceParseErrorTemplateConstant   = "invalid token source: %w"
	tokenResolutionErrorTemplateConstant    = "registry token unavailable: %w"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current smoke test configuration.
type ConfigurationProvider func() Configuration

// Runner executes one smoke test run.
type Runner interface {
	Run(executionContext context.Context, options Options) (Result, error)
}

// ServiceResolver creates runners for the command.
type ServiceResolver interface {
	Resolve(logger *zap.Logger, configuration Configuration, streams OutputStreams) (Runner, error)
}

// CommandBuilder assembles the smoke test command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	ServiceResolver       ServiceResolver
	HTTPClient            registry.HTTPClient
	CommandRunner         execshell.CommandRunner
	EnvironmentLookup     secret.EnvironmentLookup
	FileReader            secret.FileReader
	HomeDirectoryProvider secret.HomeDirectoryProvider
}

// Build constructs the smoke test command with its flags.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	smokeCommand := &cobra.Command{
		Use:           commandUseConstant,
		Short:         commandShortDescriptionConstant,
		Long:          commandLongDescriptionConstant,
		RunE:          builder.run,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	smokeCommand.Flags().String(crateNameFlagNameConstant, DefaultCrateName, crateNameFlagDescriptionConstant)
	smokeCommand.Flags().String(tokenFlagNameConstant, "", tokenFlagDescriptionConstant)
	smokeCommand.Flags().String(tokenSourceFlagNameConstant, DefaultTokenSource, tokenSourceFlagDescriptionConstant)
	smokeCommand.Flags().Bool(skipPublishFlagNameConstant, false, skipPublishFlagDescriptionConstant)

	return smokeCommand, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return builder.usageError(command, errors.New(unexpectedArgumentsErrorMessageConstant))
	}

	configuration := builder.resolveConfiguration()
	smokeOptions, optionsError := builder.parseOptions(command, configuration)
	if optionsError != nil {
		return builder.usageError(command, optionsError)
	}

	logger := builder.resolveLogger()
	runner, resolveError := builder.resolveRunner(logger, configuration, OutputStreams{
		Output: command.ErrOrStderr(),
		Errors: command.ErrOrStderr(),
	})
	if resolveError != nil {
		return resolveError
	}

	_, runError := runner.Run(commandContext(command), smokeOptions)
	return runError
}

// usageError prints usage for invalid invocations; runtime failures keep usage silenced.
func (builder *CommandBuilder) usageError(command *cobra.Command, invocationError error) error {
	command.PrintErr(command.UsageString())
	return invocationError
}

func (builder *CommandBuilder) parseOptions(command *cobra.Command, configuration Configuration) (Options, error) {
	crateNameValue := configuration.CrateName
	if command.Flags().Changed(crateNameFlagNameConstant) {
		crateNameFlagValue, crateNameFlagError := command.Flags().GetString(crateNameFlagNameConstant)
		if crateNameFlagError != nil {
			return Options{}, crateNameFlagError
		}
		crateNameValue = strings.TrimSpace(crateNameFlagValue)
	}
	if len(crateNameValue) == 0 {
		return Options{}, ErrCrateNameMissing
	}

	skipPublishValue := configuration.SkipPublish
	if command.Flags().Changed(skipPublishFlagNameConstant) {
		skipPublishFlagValue, skipPublishFlagError := command.Flags().GetBool(skipPublishFlagNameConstant)
		if skipPublishFlagError != nil {
			return Options{}, skipPublishFlagError
		}
		skipPublishValue = skipPublishFlagValue
	}

	tokenValue, tokenError := builder.resolveToken(command, configuration)
	if tokenError != nil {
		return Options{}, tokenError
	}

	return Options{
		CrateName:   crateNameValue,
		Token:       tokenValue,
		SkipPublish: skipPublishValue,
	}, nil
}

func (builder *CommandBuilder) resolveToken(command *cobra.Command, configuration Configuration) (secret.Value, error) {
	tokenFlagValue, tokenFlagError := command.Flags().GetString(tokenFlagNameConstant)
	if tokenFlagError != nil {
		return secret.Value{}, tokenFlagError
	}
	if trimmedToken := strings.TrimSpace(tokenFlagValue); len(trimmedToken) > 0 {
		return secret.New(trimmedToken), nil
	}

	tokenSourceValue := configuration.TokenSource
	if command.Flags().Changed(tokenSourceFlagNameConstant) {
		tokenSourceFlagValue, tokenSourceFlagError := command.Flags().GetString(tokenSourceFlagNameConstant)
		if tokenSourceFlagError != nil {
			return secret.Value{}, tokenSourceFlagError
		}
		tokenSourceValue = tokenSourceFlagValue
	}

	parsedSource, parseError := secret.ParseSource(tokenSourceValue)
	if parseError != nil {
		return secret.Value{}, fmt.Errorf(tokenSourceParseErrorTemplateConstant, parseError)
	}

	resolver := secret.NewResolver(builder.EnvironmentLookup, builder.FileReader, builder.HomeDirectoryProvider)
	tokenValue, resolutionError := resolver.Resolve(commandContext(command), parsedSource)
	if resolutionError != nil {
		return secret.Value{}, fmt.Errorf(tokenResolutionErrorTemplateConstant, resolutionError)
	}

	return tokenValue, nil
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}

	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}

	return logger
}

func (builder *CommandBuilder) resolveConfiguration() Configuration {
	configuration := DefaultConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}
	return configuration.Sanitize()
}

func (builder *CommandBuilder) resolveRunner(logger *zap.Logger, configuration Configuration, streams OutputStreams) (Runner, error) {
	if builder.ServiceResolver != nil {
		return builder.ServiceResolver.Resolve(logger, configuration, streams)
	}

	defaultResolver := &DefaultServiceResolver{
		HTTPClient:    builder.HTTPClient,
		CommandRunner: builder.CommandRunner,
	}
	return defaultResolver.Resolve(logger, configuration, streams)
}

func commandContext(command *cobra.Command) context.Context {
	if command.Context() != nil {
		return command.Context()
	}
	return context.Background()
}
