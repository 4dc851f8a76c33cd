package manifest

import (
	"fmt"
	"sort"
	"strings"

	"github.com/perseus-framework/docker-perseus/internal/config"
	"github.com/perseus-framework/docker-perseus/internal/distro"
	"github.com/perseus-framework/docker-perseus/internal/resolve"
)

// Build-time knobs every manifest exposes, with the defaults baked into the
// env block. Overriding any of them at image build time never requires
// regenerating the manifest.
const (
	defaultExample       = "showcase"
	defaultCLISequential = "false"
	defaultESBuildTarget = "es6"
	defaultWasmTarget    = "wasm32-unknown-unknown"
	defaultCargoNetCLI   = "false"
)

// buildArgs is the fixed order of the arg and env blocks in the base stage.
var buildArgs = []string{
	"EXAMPLE_NAME",
	"PERSEUS_VERSION",
	"PERSEUS_CLI_SEQUENTIAL",
	"BINARYEN_VERSION",
	"BONNIE_VERSION",
	"ESBUILD_VERSION",
	"ESBUILD_TARGET",
	"WASM_PACK_VERSION",
	"WASM_TARGET",
	"CARGO_NET_GIT_FETCH_WITH_CLI",
}

// Generator builds stage sequences from resolved dependency sets. It holds
// only the endpoint table; every Generate call is independent.
type Generator struct {
	endpoints config.Endpoints
}

func NewGenerator(endpoints config.Endpoints) *Generator {
	return &Generator{endpoints: endpoints}
}

// Generate maps a resolved set to its manifest: the base stage, one parallel
// stage per prebuilt binary tool, the framework checkout, the assembly stage
// and the runtime stage. Generation fails if the set is missing any member
// the stages embed.
func (g *Generator) Generate(set *resolve.Set) (*Manifest, error) {
	binaries := set.ByKind(resolve.BinaryRelease)
	if len(binaries) == 0 {
		return nil, fmt.Errorf("dependency set for %s has no binary tools", set.Distribution.Name)
	}
	for _, name := range buildArgs {
		if tool, ok := strings.CutSuffix(name, "_VERSION"); ok && tool != "PERSEUS" {
			dep := strings.ToLower(strings.ReplaceAll(tool, "_", "-"))
			if _, found := set.Get(dep); !found {
				return nil, fmt.Errorf("dependency set for %s is missing %q", set.Distribution.Name, dep)
			}
		}
	}

	m := &Manifest{Set: set}
	m.Stages = append(m.Stages, g.baseStage(set))
	for _, dep := range binaries {
		stage, err := g.binaryStage(dep)
		if err != nil {
			return nil, err
		}
		m.Stages = append(m.Stages, stage)
	}
	m.Stages = append(m.Stages, g.frameworkStage())
	m.Stages = append(m.Stages, g.builderStage(binaries))
	m.Stages = append(m.Stages, g.runtimeStage(set.Distribution))

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func (g *Generator) baseStage(set *resolve.Set) Stage {
	dist := set.Distribution

	stage := Stage{
		Name:    "base",
		BaseRef: dist.ImageRef(),
		Comment: "Pull base image.",
	}

	stage.Instructions = append(stage.Instructions, Instruction{
		Kind:    KindArg,
		Comment: "Define optional arguments we can pass to `docker`.",
		Args:    append([]string(nil), buildArgs...),
	})

	stage.Instructions = append(stage.Instructions, Instruction{
		Kind: KindEnv,
		Comment: "Export environment variables.\n" +
			"NOTE: Built releases prior to the current one may not exist upstream\n" +
			"anymore, so the pinned tool versions below are the ones the release\n" +
			"was published against.",
		Args: envBlock(set),
	})

	stage.Instructions = append(stage.Instructions, Instruction{
		Kind:    KindWorkdir,
		Comment: "Work from the root of the container.",
		Args:    []string{"/"},
	})

	stage.Instructions = append(stage.Instructions, Instruction{
		Kind:    KindRun,
		Comment: "Install build dependencies.",
		Args:    g.installBlock(set),
	})

	return stage
}

// envBlock renders the `NAME=${NAME:-default}` lines of the base stage. The
// tool version defaults come from the resolved set; the remaining knobs have
// fixed defaults.
func envBlock(set *resolve.Set) []string {
	defaults := map[string]string{
		"EXAMPLE_NAME":                 defaultExample,
		"PERSEUS_VERSION":              "v" + set.Release.Tag,
		"PERSEUS_CLI_SEQUENTIAL":       defaultCLISequential,
		"ESBUILD_TARGET":               defaultESBuildTarget,
		"WASM_TARGET":                  defaultWasmTarget,
		"CARGO_NET_GIT_FETCH_WITH_CLI": defaultCargoNetCLI,
	}

	lines := make([]string, 0, len(buildArgs))
	for _, name := range buildArgs {
		value, ok := defaults[name]
		if !ok {
			dep, _ := set.Get(versionArgDependency(name))
			value = dep.Version
		}
		lines = append(lines, fmt.Sprintf("%s=${%s:-%s}", name, name, value))
	}
	return lines
}

// versionArgDependency maps a *_VERSION build arg back to the dependency it
// pins, e.g. WASM_PACK_VERSION to wasm-pack.
func versionArgDependency(name string) string {
	name = strings.TrimSuffix(name, "_VERSION")
	return strings.ToLower(strings.ReplaceAll(name, "_", "-"))
}

// versionArgFor is the inverse mapping, used when emitting per-tool stages.
func versionArgFor(dep string) string {
	return strings.ToUpper(strings.ReplaceAll(dep, "-", "_")) + "_VERSION"
}

// installBlock emits the package-manager invocation pinning every
// distro-package member, followed by the toolchain bootstrap. Package lines
// are assembled the way the published manifests order them: names sorted in
// reverse, the first entry carries the shell terminator, then the whole list
// is reversed so the output reads alphabetically with the terminator on the
// final line.
func (g *Generator) installBlock(set *resolve.Set) []string {
	update, install := packageManagerCommands(set.Distribution.PackageManager)

	lines := []string{update, install}
	lines = append(lines, packageLines(set)...)
	lines = append(lines, fmt.Sprintf("curl %s -sSf | sh -s -- -y --target %s;",
		g.endpoints.RustupInstaller, defaultWasmTarget))
	return lines
}

func packageManagerCommands(pm distro.PackageManager) (update, install string) {
	switch pm {
	case distro.Apk:
		return "apk update;", "apk add"
	case distro.Apt:
		return "apt-get update;", "apt-get -y --no-install-recommends install"
	case distro.Dnf:
		return "dnf -y update;", "dnf -y --allowerasing --nodocs install"
	case distro.Microdnf:
		return "microdnf -y update;", "microdnf -y --nodocs install"
	}
	return "", ""
}

func packageLines(set *resolve.Set) []string {
	pkgs := set.ByKind(resolve.DistroPackage)
	names := make([]string, 0, len(pkgs))
	for _, dep := range pkgs {
		names = append(names, dep.Name)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	lines := make([]string, 0, len(names))
	for i, name := range names {
		dep, _ := set.Get(name)
		line := dep.Name + "=" + dep.Version
		if i == 0 {
			line += ";"
		}
		lines = append(lines, line)
	}
	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}
	return lines
}

// binaryStage emits one parallel build stage per prebuilt tool. Tools shipped
// as release tarballs are fetched and unpacked; tools published to the crate
// registry are compiled with cargo and staged for copy-out.
func (g *Generator) binaryStage(dep resolve.Dependency) (Stage, error) {
	stage := Stage{
		Name:    dep.Name,
		BaseRef: "base",
		Comment: fmt.Sprintf("Create a build stage for `%s` we can run in parallel.", dep.Name),
		Instructions: []Instruction{{
			Kind:    KindWorkdir,
			Comment: fmt.Sprintf("Work from the `%s` directory of the container.", dep.Name),
			Args:    []string{"/" + dep.Name},
		}},
	}

	arg := versionArgFor(dep.Name)
	repo, ok := resolve.ReleaseRepo(dep.Name)
	if !ok {
		return Stage{}, fmt.Errorf("no release repository for binary tool %q", dep.Name)
	}

	switch dep.Name {
	case "binaryen":
		stage.Instructions = append(stage.Instructions, Instruction{
			Kind:    KindRun,
			Comment: "Download, extract, and remove compressed tar of `binaryen`.",
			Args: []string{
				"curl",
				"--progress-bar",
				fmt.Sprintf("-Lo binaryen-${%s}.tar.gz", arg),
				fmt.Sprintf("%s%s/releases/download/version_${%s}/binaryen-version_${%s}-x86_64-linux.tar.gz;",
					g.endpoints.GitHubDownload, repo, arg, arg),
				"tar",
				"--strip-components=1",
				fmt.Sprintf("-xzf binaryen-${%s}.tar.gz;", arg),
				fmt.Sprintf("rm -f binaryen-${%s}.tar.gz;", arg),
			},
		})
	case "esbuild":
		stage.Instructions = append(stage.Instructions, Instruction{
			Kind:    KindRun,
			Comment: "Download and extract the `esbuild` source tree.",
			Args: []string{
				"curl",
				"--progress-bar",
				fmt.Sprintf("-L %s%s/tarball/v${%s}", g.endpoints.GitHubDownload, repo, arg),
				"| tar -xz --strip-components=1;",
			},
		})
	default:
		// Crate-published tools (bonnie, wasm-pack) compile from the
		// registry and stage the binary for copy-out.
		stage.Instructions = append(stage.Instructions, Instruction{
			Kind:    KindRun,
			Comment: fmt.Sprintf("Compile `%s` at the pinned version and stage the binary.", dep.Name),
			Args: []string{
				fmt.Sprintf("cargo install %s --version ${%s};", dep.Name, arg),
				fmt.Sprintf("mv ${CARGO_HOME:-/usr/local/cargo}/bin/%s .;", dep.Name),
			},
		})
	}

	return stage, nil
}

func (g *Generator) frameworkStage() Stage {
	return Stage{
		Name:    "framework",
		BaseRef: "base",
		Comment: "Create a build stage for the framework codebase.",
		Instructions: []Instruction{
			{
				Kind:    KindCopy,
				Comment: "Copy our script for conditional patching into our build layer.",
				Args:    []string{"patch_framework.py", "/perseus/patch_framework.py"},
			},
			{
				Kind:    KindWorkdir,
				Comment: "Work from the `perseus` directory of the container.",
				Args:    []string{"/perseus"},
			},
			{
				Kind:    KindRun,
				Comment: "Download and extract the framework source, then patch it for the pinned release.",
				Args: []string{
					"curl",
					"--progress-bar",
					fmt.Sprintf("-L %s%s/tarball/${PERSEUS_VERSION}", g.endpoints.GitHubDownload, resolve.FrameworkRepo),
					"| tar -xz --strip-components=1;",
					"chmod 0755 /perseus/patch_framework.py;",
					"python3 /perseus/patch_framework.py;",
				},
			},
		},
	}
}

// builderStage assembles the app: the binary tools from their parallel
// stages, the framework CLI built in place, then the example app compiled
// into its deployable package.
func (g *Generator) builderStage(binaries []resolve.Dependency) Stage {
	stage := Stage{
		Name:    "builder",
		BaseRef: "framework",
		Comment: "Create a build stage for building our app.",
	}

	for _, dep := range binaries {
		stage.Instructions = append(stage.Instructions, copyInstructions(dep)...)
	}

	stage.Instructions = append(stage.Instructions,
		Instruction{
			Kind:    KindWorkdir,
			Comment: "Work from the framework checkout to build its CLI.",
			Args:    []string{"/perseus"},
		},
		Instruction{
			Kind:    KindRun,
			Comment: "Build the framework CLI.",
			Args:    []string{"bonnie setup;"},
		},
		Instruction{
			Kind:    KindWorkdir,
			Comment: "Work from the example app selected at build time.",
			Args:    []string{"/perseus/examples/${EXAMPLE_NAME}"},
		},
		Instruction{
			Kind:    KindRun,
			Comment: "Build the app into its deployable package.",
			Args:    []string{"/perseus/target/release/perseus deploy;"},
		},
	)

	return stage
}

// copyInstructions picks the artifacts each tool stage exports into the
// assembly stage.
func copyInstructions(dep resolve.Dependency) []Instruction {
	from := "--from=" + dep.Name
	switch dep.Name {
	case "binaryen":
		return []Instruction{
			{
				Kind:    KindCopy,
				Comment: "Copy `binaryen` binaries, headers, and libraries from its build stage.",
				Args:    []string{from, "/binaryen/bin/", "/usr/bin/"},
			},
			{Kind: KindCopy, Args: []string{from, "/binaryen/include/", "/usr/include/"}},
			{Kind: KindCopy, Args: []string{from, "/binaryen/lib/", "/usr/lib/"}},
		}
	case "esbuild":
		return []Instruction{{
			Kind:    KindCopy,
			Comment: "Copy `esbuild` from its build stage.",
			Args:    []string{from, "/esbuild/bin/esbuild", "/usr/bin/"},
		}}
	default:
		return []Instruction{{
			Kind:    KindCopy,
			Comment: fmt.Sprintf("Copy `%s` from its build stage.", dep.Name),
			Args:    []string{from, "/" + dep.Name + "/" + dep.Name, "/usr/bin/"},
		}}
	}
}

// runtimeStage starts over from the bare distribution image; none of the
// build arg or env state survives into it, so paths embed the defaults.
func (g *Generator) runtimeStage(dist distro.Distribution) Stage {
	return Stage{
		Name:    "runtime",
		BaseRef: dist.ImageRef(),
		Comment: "Prepare the final image where the app will be deployed.",
		Instructions: []Instruction{
			{
				Kind:    KindWorkdir,
				Comment: "Work from the `app` directory of the container.",
				Args:    []string{"/app"},
			},
			{
				Kind:    KindCopy,
				Comment: "Copy the deployable package from the build stage.",
				Args:    []string{"--from=builder", "/perseus/examples/" + defaultExample + "/pkg", "/app/"},
			},
			{
				Kind:    KindEnv,
				Comment: "Bind the server to 0.0.0.0 and the container to port 8080.",
				Args:    []string{"PERSEUS_HOST=0.0.0.0", "PERSEUS_PORT=8080"},
			},
			{
				Kind:    KindCmd,
				Comment: "Configure the container to serve the deployed app while running.",
				Args:    []string{"./server"},
			},
		},
	}
}
