package config

// Endpoints collects every upstream URL the resolver talks to. The value is
// constructed once at startup and passed explicitly into each client; nothing
// reads these implicitly from package state.
type Endpoints struct {
	// GitHubAPI is the repository API root, e.g. ".../repos/".
	GitHubAPI string
	// GitHubRaw serves raw file contents out of a repository tree.
	GitHubRaw string
	// GitHubDownload is the web root used for release artifact and tarball
	// links embedded into generated manifests.
	GitHubDownload string
	// DockerHub is the official-library repository descriptor root.
	DockerHub string

	// DebianSources is the sources.debian.org package API root.
	DebianSources string
	// FedoraKoji is the koji XML-RPC hub endpoint.
	FedoraKoji string
	// RockyDownload is the Rocky Linux mirror root for source trees.
	RockyDownload string
	// UbuntuLaunchpad is the Launchpad primary-archive API endpoint.
	UbuntuLaunchpad string

	// RustupInstaller is the rustup bootstrap script embedded into the
	// generated base stage.
	RustupInstaller string
}

// DefaultEndpoints returns the production registry endpoints.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		GitHubAPI:       "https://api.github.com/repos/",
		GitHubRaw:       "https://raw.githubusercontent.com/",
		GitHubDownload:  "https://github.com/",
		DockerHub:       "https://hub.docker.com/v2/namespaces/library/repositories/",
		DebianSources:   "https://sources.debian.org/api/src/",
		FedoraKoji:      "https://koji.fedoraproject.org/kojihub",
		RockyDownload:   "https://download.rockylinux.org/pub/rocky/",
		UbuntuLaunchpad: "https://api.launchpad.net/1.0/ubuntu/+archive/primary",
		RustupInstaller: "https://sh.rustup.rs/",
	}
}
