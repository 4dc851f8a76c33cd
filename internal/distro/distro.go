// Package distro models the Linux distribution families Perseus images are
// built for: the family enum, its package-manager kind, and the fixed list
// of distro packages each family needs to build the framework.
package distro

import (
	"fmt"
	"strings"
)

// Name identifies one supported distribution family.
type Name string

const (
	Alpine Name = "alpine"
	Debian Name = "debian"
	Fedora Name = "fedora"
	Rocky  Name = "rocky"
	Ubuntu Name = "ubuntu"
)

// All returns the supported families in canonical order.
func All() []Name {
	return []Name{Alpine, Debian, Fedora, Rocky, Ubuntu}
}

// Parse converts a user-supplied family string into a Name.
func Parse(s string) (Name, error) {
	name := Name(strings.ToLower(strings.TrimSpace(s)))
	switch name {
	case Alpine, Debian, Fedora, Rocky, Ubuntu:
		return name, nil
	}
	return "", fmt.Errorf("unsupported distribution %q (supported: alpine, debian, fedora, rocky, ubuntu)", s)
}

// PackageManager drives the install-command syntax emitted into the base
// stage of the generated Dockerfile.
type PackageManager int

const (
	Apk PackageManager = iota
	Apt
	Dnf
	Microdnf
)

func (p PackageManager) String() string {
	switch p {
	case Apk:
		return "apk"
	case Apt:
		return "apt"
	case Dnf:
		return "dnf"
	case Microdnf:
		return "microdnf"
	}
	return "unknown"
}

// Distribution is one concrete build target: a family plus the family's own
// release identifier (a version string for alpine/fedora/rocky, a codename
// for debian/ubuntu). The channel doubles as the Docker image tag.
type Distribution struct {
	Name           Name
	Channel        string
	PackageManager PackageManager
}

// New builds a Distribution for the family, assigning its package-manager
// kind. Channel may be empty; the resolver then determines the latest stable
// channel from the image registry.
func New(name Name, channel string) Distribution {
	return Distribution{
		Name:           name,
		Channel:        strings.TrimSpace(channel),
		PackageManager: packageManagerFor(name),
	}
}

func packageManagerFor(name Name) PackageManager {
	switch name {
	case Alpine:
		return Apk
	case Debian, Ubuntu:
		return Apt
	case Fedora:
		return Dnf
	case Rocky:
		return Microdnf
	}
	return Apk
}

// ImageName returns the official Docker library repository for the family.
func (d Distribution) ImageName() string {
	if d.Name == Rocky {
		return "rockylinux"
	}
	return string(d.Name)
}

// ImageRef returns the image reference the generated stages build FROM.
func (d Distribution) ImageRef() string {
	return d.ImageName() + ":" + d.Channel
}

// Packages returns the fixed distro-package names the family needs to build
// the framework, in the order the original packaging scripts enumerate them.
// The list is a constant of the family, never derived from a manifest.
func (n Name) Packages() []string {
	switch n {
	case Alpine:
		return []string{
			"alpine-sdk",
			"git",
			"linux-headers",
			"make",
			"musl-dev",
			"openrc",
			"openssl",
			"perl",
			"pkgconf",
			"zlib-dev",
		}
	case Debian, Ubuntu:
		return []string{
			"python3",
			"pkg-config",
			"perl",
			"git",
			"gawk",
			"curl",
			"build-essential",
			"apt-transport-https",
		}
	case Fedora:
		return []string{
			"python3",
			"pkgconf",
			"perl",
			"make",
			"kernel-devel",
			"glibc",
			"git",
			"gcc-c++",
			"gcc",
			"gawk",
			"curl-minimal",
			"automake",
		}
	case Rocky:
		return []string{
			"python3",
			"pkgconf",
			"perl",
			"make",
			"glibc",
			"git",
			"gcc",
			"gawk",
			"curl",
			"automake",
		}
	}
	return nil
}
