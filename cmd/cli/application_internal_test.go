package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/crates-smoke/internal/smoketest"
)

type capturingRunner struct {
	options []smoketest.Options
}

func (runner *capturingRunner) Run(executionContext context.Context, options smoketest.Options) (smoketest.Result, error) {
	runner.options = append(runner.options, options)
	return smoketest.Result{}, nil
}

type capturingServiceResolver struct {
	runner         *capturingRunner
	configurations []smoketest.Configuration
}

func (resolver *capturingServiceResolver) Resolve(logger *zap.Logger, configuration smoketest.Configuration, streams smoketest.OutputStreams) (smoketest.Runner, error) {
	resolver.configurations = append(resolver.configurations, configuration)
	return resolver.runner, nil
}

func newTestApplication(environment map[string]string) (*Application, *capturingServiceResolver) {
	serviceResolver := &capturingServiceResolver{runner: &capturingRunner{}}
	application := newApplication(smoketest.CommandBuilder{
		ServiceResolver: serviceResolver,
		EnvironmentLookup: func(key string) (string, bool) {
			value, found := environment[key]
			return value, found
		},
	})
	return application, serviceResolver
}

func TestApplicationAppliesEmbeddedDefaults(t *testing.T) {
	changeTestDirectory(t, t.TempDir())

	application, serviceResolver := newTestApplication(map[string]string{"CARGO_REGISTRY_TOKEN": "staging-token"})
	application.rootCommand.SetArgs([]string{})
	require.NoError(t, application.Execute())

	require.Len(t, serviceResolver.configurations, 1)
	resolvedConfiguration := serviceResolver.configurations[0]
	require.Equal(t, "https://staging.crates.io", resolvedConfiguration.Registry.BaseURL.String())
	require.Equal(t, "staging", resolvedConfiguration.Cargo.RegistryName)

	require.Len(t, serviceResolver.runner.options, 1)
	require.Equal(t, smoketest.DefaultCrateName, serviceResolver.runner.options[0].CrateName)
	require.Equal(t, "staging-token", serviceResolver.runner.options[0].Token.Expose())
	require.False(t, serviceResolver.runner.options[0].SkipPublish)
}

func TestApplicationLayersConfigurationFileEnvironmentAndFlags(t *testing.T) {
	changeTestDirectory(t, t.TempDir())

	configurationPath := filepath.Join(t.TempDir(), "smoke.yaml")
	configurationContent := "smoke:\n  crate_name: file-crate\n  skip_publish: true\n  registry:\n    base_url: http://127.0.0.1:8080\n    timeout: 30s\n"
	require.NoError(t, os.WriteFile(configurationPath, []byte(configurationContent), 0o600))
	t.Setenv("CRATESMOKE_SMOKE_CARGO_REGISTRY_NAME", "local")

	application, serviceResolver := newTestApplication(map[string]string{"CARGO_REGISTRY_TOKEN": "staging-token"})
	application.rootCommand.SetArgs([]string{"--config", configurationPath, "--crate-name", "flag-crate", "--log-level", "error"})
	require.NoError(t, application.Execute())

	require.Len(t, serviceResolver.configurations, 1)
	resolvedConfiguration := serviceResolver.configurations[0]
	require.Equal(t, "http://127.0.0.1:8080", resolvedConfiguration.Registry.BaseURL.String())
	require.Equal(t, "30s", resolvedConfiguration.Registry.Timeout.String())
	require.Equal(t, "local", resolvedConfiguration.Cargo.RegistryName)
	require.Equal(t, "error", application.configuration.Common.LogLevel)

	require.Len(t, serviceResolver.runner.options, 1)
	require.Equal(t, "flag-crate", serviceResolver.runner.options[0].CrateName)
	require.True(t, serviceResolver.runner.options[0].SkipPublish)
}

func TestApplicationRejectsInvalidLogLevel(t *testing.T) {
	changeTestDirectory(t, t.TempDir())

	application, serviceResolver := newTestApplication(map[string]string{"CARGO_REGISTRY_TOKEN": "staging-token"})
	application.rootCommand.SetArgs([]string{"--log-level", "verbose"})

	executionError := application.Execute()
	require.Error(t, executionError)
	require.Contains(t, executionError.Error(), "unsupported log level")
	require.Empty(t, serviceResolver.configurations)
}

func TestApplicationRejectsRelativeRegistryURL(t *testing.T) {
	changeTestDirectory(t, t.TempDir())
	t.Setenv("CRATESMOKE_SMOKE_REGISTRY_BASE_URL", "staging.crates.io")

	application, serviceResolver := newTestApplication(map[string]string{"CARGO_REGISTRY_TOKEN": "staging-token"})
	application.rootCommand.SetArgs([]string{})

	executionError := application.Execute()
	require.Error(t, executionError)
	require.Contains(t, executionError.Error(), "unable to load configuration")
	require.Empty(t, serviceResolver.configurations)
}

// changeTestDirectory switches the working directory for the duration of the test,
// mirroring testing.T.Chdir for toolchains that predate it.
func changeTestDirectory(t *testing.T, directory string) {
	t.Helper()
	originalDirectory, getwdError := os.Getwd()
	require.NoError(t, getwdError)
	absoluteDirectory, absError := filepath.Abs(directory)
	require.NoError(t, absError)
	require.NoError(t, os.Chdir(absoluteDirectory))
	t.Setenv("PWD", absoluteDirectory)
	t.Cleanup(func() {
		require.NoError(t, os.Chdir(originalDirectory))
	})
}
