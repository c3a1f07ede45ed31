package models

import "strings"

// PackageManager is the Node package manager the workspace is created for.
type PackageManager string

const (
	PackageManagerNPM  PackageManager = "npm"
	PackageManagerYarn PackageManager = "yarn"
	PackageManagerPNPM PackageManager = "pnpm"
	PackageManagerBun  PackageManager = "bun"
)

// PackageManagers lists the supported managers in prompt order.
var PackageManagers = []PackageManager{
	PackageManagerNPM,
	PackageManagerYarn,
	PackageManagerPNPM,
	PackageManagerBun,
}

// Lockfiles are removed before the final install.
var Lockfiles = []string{
	"package-lock.json",
	"yarn.lock",
	"pnpm-lock.yaml",
	"bun.lockb",
}

func (p PackageManager) IsValid() bool {
	for _, pm := range PackageManagers {
		if p == pm {
			return true
		}
	}
	return false
}

func (p PackageManager) String() string {
	return string(p)
}

// ParsePackageManager never fails: unknown values fall back to npm.
func ParsePackageManager(s string) PackageManager {
	pm := PackageManager(strings.ToLower(strings.TrimSpace(s)))
	if !pm.IsValid() {
		return PackageManagerNPM
	}
	return pm
}

// InstallArgs returns the arguments for a workspace-wide install.
func (p PackageManager) InstallArgs() []string {
	if p == PackageManagerPNPM {
		return []string{"install", "--recursive"}
	}
	return []string{"install"}
}

// SupportsWorkspaceProtocol reports whether "workspace:*" specifiers resolve.
func (p PackageManager) SupportsWorkspaceProtocol() bool {
	switch p {
	case PackageManagerPNPM, PackageManagerYarn, PackageManagerBun:
		return true
	default:
		return false
	}
}

// WorkspaceDependencyVersion is the version specifier used for internal
// @repo/* dependencies.
func (p PackageManager) WorkspaceDependencyVersion() string {
	if p.SupportsWorkspaceProtocol() {
		return "workspace:*"
	}
	return "*"
}

// RunCommand renders "<pm> run <script>".
func (p PackageManager) RunCommand(script string) string {
	return string(p) + " run " + script
}
