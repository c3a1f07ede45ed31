package runner

import (
	"context"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/jakoblorz/create-devhub/internal/models"
)

// Detection is a package manager found on PATH.
type Detection struct {
	Manager models.PackageManager
	Version string
}

// Label renders "pnpm (9.12.0)" style text for prompts.
func (d Detection) Label() string {
	if d.Version == "" {
		return d.Manager.String()
	}
	return d.Manager.String() + " (" + d.Version + ")"
}

// DetectPackageManagers probes every supported manager with --version, in
// prompt order. npm is returned as a fallback when nothing answers.
func DetectPackageManagers(ctx context.Context, r Runner) []Detection {
	var found []Detection
	for _, pm := range models.PackageManagers {
		out, err := r.Version(ctx, pm.String())
		if err != nil {
			continue
		}
		found = append(found, Detection{Manager: pm, Version: normalizeVersion(out)})
	}
	if len(found) == 0 {
		found = append(found, Detection{Manager: models.PackageManagerNPM})
	}
	return found
}

// normalizeVersion returns the canonical semver of the first line of out
// without the leading "v", or "" when it is not a version.
func normalizeVersion(out string) string {
	line := strings.TrimSpace(strings.SplitN(out, "\n", 2)[0])
	if !strings.HasPrefix(line, "v") {
		line = "v" + line
	}
	if !semver.IsValid(line) {
		return ""
	}
	return strings.TrimPrefix(semver.Canonical(line), "v")
}
