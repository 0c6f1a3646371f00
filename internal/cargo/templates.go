package cargo

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/pelletier/go-toml/v2"
)

const (
	// ManifestFileName is the cargo manifest overwritten before publishing.
	ManifestFileName = "Cargo.toml"
	// ReadmeFileName is the readme overwritten before publishing.
	ReadmeFileName = "README.md"

	manifestTemplateConstant = `[package]
name = "%s"
version = "%s"
edition = "2018"
license = "MIT"
description = "test crate"
`
	readmeTemplateConstant                = "# %s v%s\n\n![](https://media1.giphy.com/media/Ju7l5y9osyymQ/200.gif)\n"
	manifestDecodeErrorTemplateConstant   = "generated manifest is not valid TOML: %w"
	manifestMismatchErrorTemplateConstant = "generated manifest declares %s `%s`, expected `%s`"
	manifestNameFieldLabelConstant        = "package name"
	manifestVersionFieldLabelConstant     = "package version"
)

type manifestDocument struct {
	Package struct {
		Name        string `toml:"name"`
		Version     string `toml:"version"`
		Edition     string `toml:"edition"`
		License     string `toml:"license"`
		Description string `toml:"description"`
	} `toml:"package"`
}

// RenderManifest produces the Cargo.toml content for crateName at version.
func RenderManifest(crateName string, version *semver.Version) string {
	return fmt.Sprintf(manifestTemplateConstant, crateName, version.String())
}

// RenderReadme produces the README.md content for crateName at version.
func RenderReadme(crateName string, version *semver.Version) string {
	return fmt.Sprintf(readmeTemplateConstant, crateName, version.String())
}

// ValidateManifest decodes manifestContent and confirms it declares crateName at version.
func ValidateManifest(manifestContent string, crateName string, version *semver.Version) error {
	var document manifestDocument
	if decodeError := toml.Unmarshal([]byte(manifestContent), &document); decodeError != nil {
		return fmt.Errorf(manifestDecodeErrorTemplateConstant, decodeError)
	}
	if document.Package.Name != crateName {
		return fmt.Errorf(manifestMismatchErrorTemplateConstant, manifestNameFieldLabelConstant, document.Package.Name, crateName)
	}
	if document.Package.Version != version.String() {
		return fmt.Errorf(manifestMismatchErrorTemplateConstant, manifestVersionFieldLabelConstant, document.Package.Version, version.String())
	}
	return nil
}
