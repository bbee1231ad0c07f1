// Package util provides utility functions for the backend.
//
//revive:disable-next-line:var-naming
package util

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	npm "github.com/aquasecurity/go-npm-version/pkg"
	pep440 "github.com/aquasecurity/go-pep440-version"
	"github.com/google/osv-scanner/pkg/models"
)

var logger = InitLogger()

// orderedVersion is satisfied by the semver, npm and pep440 version types
type orderedVersion[V any] interface {
	LessThan(V) bool
	GreaterThan(V) bool
}

// IsVersionAffectedAny checks if a version is affected by any of the provided affected ranges
func IsVersionAffectedAny(version string, allAffected []models.Affected) bool {
	for _, affected := range allAffected {
		if IsVersionAffected(version, affected) {
			return true
		}
	}
	return false
}

// IsVersionAffected checks if a version is affected by OSV ranges
// Uses ecosystem-specific version parsers for accurate comparison
func IsVersionAffected(version string, affected models.Affected) bool {
	for _, v := range affected.Versions {
		if version == v {
			return true
		}
	}

	for _, vrange := range affected.Ranges {
		if vrange.Type != models.RangeEcosystem && vrange.Type != models.RangeSemVer {
			continue
		}
		if isVersionInRange(version, vrange, string(affected.Package.Ecosystem)) {
			return true
		}
	}

	return false
}

func isVersionInRange(version string, vrange models.Range, ecosystem string) bool {
	var affected, parsed bool

	switch strings.ToLower(ecosystem) {
	case "npm":
		affected, parsed = inRange(version, vrange, npm.NewVersion)
	case "pypi":
		affected, parsed = inRange(version, vrange, pep440.Parse)
	default:
		affected, parsed = inRange(version, vrange, semver.NewVersion)
	}

	if !parsed {
		return isVersionInRangeString(version, vrange)
	}
	return affected
}

// inRange evaluates one OSV range with the given version parser. A range needs
// a lower bound (introduced) and an upper bound (fixed or last_affected);
// "0" as introduced means from the beginning. The second result is false
// when version itself cannot be parsed.
func inRange[V orderedVersion[V]](version string, vrange models.Range, parse func(string) (V, error)) (bool, bool) {
	v, err := parse(version)
	if err != nil {
		return false, false
	}

	var introduced, fixed, lastAffected V
	var hasIntroduced, hasFixed, hasLastAffected bool

	for _, event := range vrange.Events {
		if event.Introduced != "" {
			raw := event.Introduced
			if raw == "0" {
				raw = "0.0.0"
			}
			if parsed, err := parse(raw); err == nil {
				introduced, hasIntroduced = parsed, true
			} else {
				logger.Sugar().Warnf("Failed to parse introduced version '%s': %v", event.Introduced, err)
			}
		}
		if event.Fixed != "" {
			if parsed, err := parse(event.Fixed); err == nil {
				fixed, hasFixed = parsed, true
			} else {
				logger.Sugar().Warnf("Failed to parse fixed version '%s': %v", event.Fixed, err)
			}
		}
		if event.LastAffected != "" {
			if parsed, err := parse(event.LastAffected); err == nil {
				lastAffected, hasLastAffected = parsed, true
			} else {
				logger.Sugar().Warnf("Failed to parse last_affected version '%s': %v", event.LastAffected, err)
			}
		}
	}

	if !hasIntroduced || (!hasFixed && !hasLastAffected) {
		logger.Sugar().Warnf("Incomplete range data for version %s (introduced=%v, fixed=%v, last_affected=%v)",
			version, hasIntroduced, hasFixed, hasLastAffected)
		return false, true
	}

	if v.LessThan(introduced) {
		return false, true
	}
	if hasFixed && !v.LessThan(fixed) {
		return false, true
	}
	if hasLastAffected && v.GreaterThan(lastAffected) {
		return false, true
	}
	return true, true
}

// isVersionInRangeString performs string-based comparison as fallback
func isVersionInRangeString(version string, vrange models.Range) bool {
	hasIntroduced, hasUpper := false, false
	for _, event := range vrange.Events {
		if event.Introduced != "" {
			hasIntroduced = true
		}
		if event.Fixed != "" || event.LastAffected != "" {
			hasUpper = true
		}
	}

	if !hasIntroduced || !hasUpper {
		logger.Sugar().Warnf("Incomplete range data for string version %s", version)
		return false
	}

	for _, event := range vrange.Events {
		if event.Introduced != "" && event.Introduced != "0" && version < event.Introduced {
			return false
		}
		if event.Fixed != "" && version >= event.Fixed {
			return false
		}
		if event.LastAffected != "" && version > event.LastAffected {
			return false
		}
	}
	return true
}
