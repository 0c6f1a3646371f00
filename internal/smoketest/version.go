package smoketest

import (
	"errors"
	"fmt"
	"math"

	"github.com/Masterminds/semver/v3"
)

const (
	patchOverflowMessageConstant       = "patch version cannot be incremented"
	patchOverflowErrorTemplateConstant = "%w: %s"
)

// ErrPatchVersionOverflow indicates a patch component already at its maximum value.
var ErrPatchVersionOverflow = errors.New(patchOverflowMessageConstant)

// NextPatchVersion increments the patch component and carries prerelease and build metadata unchanged.
func NextPatchVersion(currentVersion *semver.Version) (*semver.Version, error) {
	if currentVersion.Patch() == math.MaxUint64 {
		return nil, fmt.Errorf(patchOverflowErrorTemplateConstant, ErrPatchVersionOverflow, currentVersion)
	}
	return semver.New(
		currentVersion.Major(),
		currentVersion.Minor(),
		currentVersion.Patch()+1,
		currentVersion.Prerelease(),
		currentVersion.Metadata(),
	), nil
}

// SameVersion compares precedence and build metadata, which semver precedence ignores.
func SameVersion(expectedVersion *semver.Version, actualVersion *semver.Version) bool {
	if expectedVersion == nil || actualVersion == nil {
		return expectedVersion == actualVersion
	}
	return expectedVersion.Equal(actualVersion) && expectedVersion.Metadata() == actualVersion.Metadata()
}
