package secret_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/crates-smoke/internal/secret"
)

func TestParseSource(testInstance *testing.T) {
	testCases := []struct {
		name           string
		input          string
		expectedSource secret.Source
		expectError    bool
	}{
		{name: "environment_prefix", input: "env:CARGO_REGISTRY_TOKEN", expectedSource: secret.Source{Type: secret.SourceTypeEnvironment, Reference: "CARGO_REGISTRY_TOKEN"}},
		{name: "bare_name", input: " CARGO_REGISTRY_TOKEN ", expectedSource: secret.Source{Type: secret.SourceTypeEnvironment, Reference: "CARGO_REGISTRY_TOKEN"}},
		{name: "file_prefix", input: "FILE:~/.cargo/staging-token", expectedSource: secret.Source{Type: secret.SourceTypeFile, Reference: "~/.cargo/staging-token"}},
		{name: "empty", input: "  ", expectError: true},
		{name: "environment_without_name", input: "env:", expectError: true},
		{name: "file_without_path", input: "file: ", expectError: true},
		{name: "unsupported", input: "vault:secret/path", expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			source, parseError := secret.ParseSource(testCase.input)
			if testCase.expectError {
				require.Error(testInstance, parseError)
				return
			}
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expectedSource, source)
		})
	}
}

func TestResolverResolve(testInstance *testing.T) {
	homeDirectory := testInstance.TempDir()
	tokenFilePath := filepath.Join(homeDirectory, "token")
	require.NoError(testInstance, os.WriteFile(tokenFilePath, []byte("  from-file\n"), 0o600))
	emptyFilePath := filepath.Join(homeDirectory, "empty")
	require.NoError(testInstance, os.WriteFile(emptyFilePath, []byte("\n"), 0o600))

	environment := map[string]string{
		"CARGO_REGISTRY_TOKEN": " from-environment ",
		"BLANK_TOKEN":          "   ",
	}
	resolver := secret.NewResolver(
		func(key string) (string, bool) {
			value, found := environment[key]
			return value, found
		},
		nil,
		func() (string, error) { return homeDirectory, nil },
	)

	testCases := []struct {
		name          string
		source        secret.Source
		expectedToken string
		expectError   bool
	}{
		{name: "environment", source: secret.Source{Type: secret.SourceTypeEnvironment, Reference: "CARGO_REGISTRY_TOKEN"}, expectedToken: "from-environment"},
		{name: "environment_missing", source: secret.Source{Type: secret.SourceTypeEnvironment, Reference: "MISSING"}, expectError: true},
		{name: "environment_blank", source: secret.Source{Type: secret.SourceTypeEnvironment, Reference: "BLANK_TOKEN"}, expectError: true},
		{name: "file_absolute", source: secret.Source{Type: secret.SourceTypeFile, Reference: tokenFilePath}, expectedToken: "from-file"},
		{name: "file_home_relative", source: secret.Source{Type: secret.SourceTypeFile, Reference: "~/token"}, expectedToken: "from-file"},
		{name: "file_empty", source: secret.Source{Type: secret.SourceTypeFile, Reference: emptyFilePath}, expectError: true},
		{name: "file_missing", source: secret.Source{Type: secret.SourceTypeFile, Reference: filepath.Join(homeDirectory, "absent")}, expectError: true},
		{name: "unsupported", source: secret.Source{Type: secret.SourceType("vault")}, expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			token, resolveError := resolver.Resolve(context.Background(), testCase.source)
			if testCase.expectError {
				require.Error(testInstance, resolveError)
				require.True(testInstance, token.IsEmpty())
				return
			}
			require.NoError(testInstance, resolveError)
			require.Equal(testInstance, testCase.expectedToken, token.Expose())
		})
	}
}

func TestResolverLeavesPathWhenHomeDirectoryUnavailable(testInstance *testing.T) {
	var requestedPath string
	resolver := secret.NewResolver(
		nil,
		func(path string) ([]byte, error) {
			requestedPath = path
			return nil, errors.New("not found")
		},
		func() (string, error) { return "", errors.New("no home") },
	)

	_, resolveError := resolver.Resolve(context.Background(), secret.Source{Type: secret.SourceTypeFile, Reference: "~/token"})
	require.Error(testInstance, resolveError)
	require.Equal(testInstance, "~/token", requestedPath)
}
