package secret

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	sourceSeparatorConstant                    = ":"
	environmentSourceTypeValueConstant         = "env"
	fileSourceTypeValueConstant                = "file"
	tildeSymbolConstant                        = "~"
	tildeForwardSlashPrefixConstant            = "~/"
	sourceMissingErrorMessageConstant          = "token source must be provided"
	environmentNameMissingErrorMessageConstant = "environment variable name must be provided"
	filePathMissingErrorMessageConstant        = "token file path must be provided"
	environmentTokenMissingTemplateConstant    = "environment variable %s is not set"
	fileReadErrorTemplateConstant              = "unable to read token file %s: %w"
	fileTokenEmptyErrorTemplateConstant        = "token file %s is empty"
	unsupportedSourceTemplateConstant          = "unsupported token source type %q"
)

// SourceType enumerates the supported token retrieval mechanisms.
type SourceType string

// Token source type enumerations.
const (
	SourceTypeEnvironment SourceType = SourceType(environmentSourceTypeValueConstant)
	SourceTypeFile        SourceType = SourceType(fileSourceTypeValueConstant)
)

// Source specifies where to find a credential.
type Source struct {
	Type      SourceType
	Reference string
}

// String renders the source in its textual form.
func (source Source) String() string {
	return string(source.Type) + sourceSeparatorConstant + source.Reference
}

// ParseSource interprets `env:NAME`, `file:PATH`, or a bare environment variable name.
func ParseSource(sourceValue string) (Source, error) {
	trimmedValue := strings.TrimSpace(sourceValue)
	if len(trimmedValue) == 0 {
		return Source{}, errors.New(sourceMissingErrorMessageConstant)
	}

	components := strings.SplitN(trimmedValue, sourceSeparatorConstant, 2)
	if len(components) == 1 {
		return Source{Type: SourceTypeEnvironment, Reference: trimmedValue}, nil
	}

	sourceType := strings.ToLower(strings.TrimSpace(components[0]))
	reference := strings.TrimSpace(components[1])

	switch sourceType {
	case environmentSourceTypeValueConstant:
		if len(reference) == 0 {
			return Source{}, errors.New(environmentNameMissingErrorMessageConstant)
		}
		return Source{Type: SourceTypeEnvironment, Reference: reference}, nil
	case fileSourceTypeValueConstant:
		if len(reference) == 0 {
			return Source{}, errors.New(filePathMissingErrorMessageConstant)
		}
		return Source{Type: SourceTypeFile, Reference: reference}, nil
	default:
		return Source{}, fmt.Errorf(unsupportedSourceTemplateConstant, sourceType)
	}
}

// EnvironmentLookup obtains an environment variable value.
type EnvironmentLookup func(key string) (string, bool)

// FileReader reads the contents of a file path.
type FileReader func(path string) ([]byte, error)

// HomeDirectoryProvider resolves the current user's home directory.
type HomeDirectoryProvider func() (string, error)

// Resolver retrieves credentials from a Source.
type Resolver struct {
	environmentLookup     EnvironmentLookup
	fileReader            FileReader
	homeDirectoryProvider HomeDirectoryProvider
}

// NewResolver creates a resolver; nil collaborators fall back to the operating system.
func NewResolver(environmentLookup EnvironmentLookup, fileReader FileReader, homeDirectoryProvider HomeDirectoryProvider) *Resolver {
	if environmentLookup == nil {
		environmentLookup = os.LookupEnv
	}
	if fileReader == nil {
		fileReader = os.ReadFile
	}
	if homeDirectoryProvider == nil {
		homeDirectoryProvider = os.UserHomeDir
	}
	return &Resolver{
		environmentLookup:     environmentLookup,
		fileReader:            fileReader,
		homeDirectoryProvider: homeDirectoryProvider,
	}
}

// Resolve reads the credential referenced by source. Surrounding whitespace is trimmed.
func (resolver *Resolver) Resolve(resolutionContext context.Context, source Source) (Value, error) {
	_ = resolutionContext
	switch source.Type {
	case SourceTypeEnvironment:
		environmentValue, found := resolver.environmentLookup(source.Reference)
		trimmedValue := strings.TrimSpace(environmentValue)
		if !found || len(trimmedValue) == 0 {
			return Value{}, fmt.Errorf(environmentTokenMissingTemplateConstant, source.Reference)
		}
		return New(trimmedValue), nil
	case SourceTypeFile:
		filePath := resolver.expandHomeDirectory(source.Reference)
		contents, readError := resolver.fileReader(filePath)
		if readError != nil {
			return Value{}, fmt.Errorf(fileReadErrorTemplateConstant, filePath, readError)
		}
		trimmedValue := strings.TrimSpace(string(contents))
		if len(trimmedValue) == 0 {
			return Value{}, fmt.Errorf(fileTokenEmptyErrorTemplateConstant, filePath)
		}
		return New(trimmedValue), nil
	default:
		return Value{}, fmt.Errorf(unsupportedSourceTemplateConstant, source.Type)
	}
}

func (resolver *Resolver) expandHomeDirectory(candidatePath string) string {
	if candidatePath != tildeSymbolConstant && !strings.HasPrefix(candidatePath, tildeForwardSlashPrefixConstant) {
		return candidatePath
	}
	homeDirectory, homeDirectoryError := resolver.homeDirectoryProvider()
	if homeDirectoryError != nil || len(homeDirectory) == 0 {
		return candidatePath
	}
	if candidatePath == tildeSymbolConstant {
		return homeDirectory
	}
	return filepath.Join(homeDirectory, strings.TrimPrefix(candidatePath, tildeForwardSlashPrefixConstant))
}
