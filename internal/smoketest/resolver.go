package smoketest

import (
	"io"

	"go.uber.org/zap"

	"github.com/temirov/crates-smoke/internal/cargo"
	"github.com/temirov/crates-smoke/internal/execshell"
	"github.com/temirov/crates-smoke/internal/registry"
	"github.com/temirov/crates-smoke/internal/utils"
)

// OutputStreams receives child process output while it runs.
type OutputStreams struct {
	Output io.Writer
	Errors io.Writer
}

// DefaultServiceResolver builds services backed by the registry HTTP API and the cargo executable.
type DefaultServiceResolver struct {
	HTTPClient    registry.HTTPClient
	CommandRunner execshell.CommandRunner
	WorkspaceRoot string
}

// Resolve wires the registry client, shell executor, and publisher into a Service.
func (resolver *DefaultServiceResolver) Resolve(logger *zap.Logger, configuration Configuration, streams OutputStreams) (Runner, error) {
	registryConfiguration := registry.Configuration{
		UserAgent: configuration.Registry.UserAgent,
		Timeout:   configuration.Registry.Timeout,
	}
	if configuration.Registry.BaseURL != nil {
		registryConfiguration.BaseURL = configuration.Registry.BaseURL.String()
	}

	registryClient, clientError := registry.NewClient(logger, resolver.HTTPClient, registryConfiguration)
	if clientError != nil {
		return nil, clientError
	}

	commandRunner := resolver.CommandRunner
	if commandRunner == nil {
		commandRunner = execshell.NewStreamingOSCommandRunner(
			utils.NewFlushingWriter(streams.Output),
			utils.NewFlushingWriter(streams.Errors),
		)
	}

	shellExecutor, executorError := execshell.NewShellExecutor(logger, commandRunner)
	if executorError != nil {
		return nil, executorError
	}

	publisher, publisherError := cargo.NewPublisher(logger, shellExecutor, cargo.Configuration{
		RegistryName:  configuration.Cargo.RegistryName,
		IndexURL:      configuration.Cargo.IndexURL,
		WorkspaceRoot: resolver.WorkspaceRoot,
	})
	if publisherError != nil {
		return nil, publisherError
	}

	return NewService(logger, registryClient, publisher)
}
