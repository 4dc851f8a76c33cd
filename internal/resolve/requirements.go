package resolve

import (
	"strings"

	"github.com/perseus-framework/docker-perseus/internal/distro"
)

// Requirement names one dependency a family's manifest needs, with the
// source kind that decides how it resolves live.
type Requirement struct {
	Name   string
	Source SourceKind
}

// RequiredFor returns the fixed required-dependency list for a family. The
// list is an enumerated constant of the family; the manifest generator
// consumes it, never defines it. Alpine's list is the historical published
// set; the other families combine their distro packages with the shared
// toolchain list.
func RequiredFor(name distro.Name) []Requirement {
	if name == distro.Alpine {
		return alpineRequirements()
	}

	var reqs []Requirement
	for _, pkg := range name.Packages() {
		reqs = append(reqs, Requirement{Name: pkg, Source: DistroPackage})
	}
	reqs = append(reqs, sharedToolRequirements()...)
	return reqs
}

// alpineRequirements enumerates the alpine set in the order the published
// dependency records list it (alphabetical across all kinds).
func alpineRequirements() []Requirement {
	return []Requirement{
		{"alpine-sdk", DistroPackage},
		{"binaryen", BinaryRelease},
		{"bonnie", BinaryRelease},
		{"browser-sync", Toolchain},
		{"concurrently", Toolchain},
		{"esbuild", BinaryRelease},
		{"git", DistroPackage},
		{"linux-headers", DistroPackage},
		{"make", DistroPackage},
		{"musl-dev", DistroPackage},
		{"node", Toolchain},
		{"npm", Toolchain},
		{"openrc", DistroPackage},
		{"openssl", DistroPackage},
		{"perl", DistroPackage},
		{"perseus-size-opt", Toolchain},
		{"pkgconf", DistroPackage},
		{"rust", Toolchain},
		{"rustup", Toolchain},
		{"serve", Toolchain},
		{"tailwindcss", Toolchain},
		{"wasm-pack", BinaryRelease},
		{"zlib-dev", DistroPackage},
	}
}

func sharedToolRequirements() []Requirement {
	return []Requirement{
		{"binaryen", BinaryRelease},
		{"bonnie", BinaryRelease},
		{"esbuild", BinaryRelease},
		{"wasm-pack", BinaryRelease},
		{"rust", Toolchain},
		{"rustup", Toolchain},
		{"node", Toolchain},
		{"npm", Toolchain},
		{"browser-sync", Toolchain},
		{"concurrently", Toolchain},
		{"serve", Toolchain},
		{"tailwindcss", Toolchain},
		{"perseus-size-opt", Toolchain},
	}
}

// releaseRepos maps toolchain and binary dependencies to the GitHub
// repository whose releases pin them.
var releaseRepos = map[string]string{
	"binaryen":         "WebAssembly/binaryen",
	"bonnie":           "arctic-hen7/bonnie",
	"browser-sync":     "BrowserSync/browser-sync",
	"concurrently":     "open-cli-tools/concurrently",
	"esbuild":          "evanw/esbuild",
	"node":             "nodejs/node",
	"npm":              "npm/cli",
	"perseus-size-opt": "arctic-hen7/perseus-size-opt",
	"rust":             "rust-lang/rust",
	"rustup":           "rust-lang/rustup",
	"serve":            "vercel/serve",
	"tailwindcss":      "tailwindlabs/tailwindcss",
	"wasm-pack":        "rustwasm/wasm-pack",
}

// ReleaseRepo returns the release registry repository for a non-distro
// dependency.
func ReleaseRepo(name string) (string, bool) {
	repo, ok := releaseRepos[name]
	return repo, ok
}

// FrameworkRepo is the release registry of the framework itself.
const FrameworkRepo = "framesurge/perseus"

// normalizeReleaseTag strips the registry tag decorations ("v1.2.3",
// binaryen's "version_109") down to the bare version string.
func normalizeReleaseTag(tag string) string {
	tag = strings.TrimSpace(tag)
	tag = strings.TrimPrefix(tag, "version_")
	tag = strings.TrimPrefix(tag, "v")
	return tag
}
