package extract

import (
	"regexp"

	"github.com/perseus-framework/docker-perseus/internal/distro"
)

// The package-descriptor rules below are one-to-one conversions of the
// upstream scrape patterns from lookaround form to capture groups (RE2 has
// no lookaround). Each is built per request because the channel or package
// name is part of the pattern.

// AlpinePackageRule matches the pkgname/pkgver/pkgrel assignments of an
// APKBUILD flattened to a single line. The version and release fields are
// joined as "<ver>-r<rel>": apk pins carry the repackage counter. The first
// assignment of each field wins, and an APKBUILD whose pkgname assignment
// opens the file or whose pkgrel assignment closes it without a trailing
// newline still matches.
func AlpinePackageRule(pkg string) Rule {
	return Rule{
		Name: "alpine-apkbuild",
		Pattern: regexp.MustCompile(
			`(?:^| )pkgname=(?P<name>[^ ]+).*? pkgver=(?P<version>[^ ]+).*? pkgrel=(?P<release>[^ ]+)(?: |$)`,
		),
		Flatten:    true,
		FlattenSep: " ",
		ExpectName: pkg,
		JoinSep:    "-r",
	}
}

// DebianPackageRule matches the version of the suites entry naming the
// channel codename in a sources.debian.org package descriptor.
func DebianPackageRule(channel string) Rule {
	return Rule{
		Name: "debian-sources",
		Pattern: regexp.MustCompile(
			`"suites":\["` + regexp.QuoteMeta(channel) + `"\],"version":"(?P<version>[a-z0-9.+-]+)"`,
		),
		Flatten:    true,
		FlattenSep: "",
	}
}

// FedoraPackageRule matches the nvr sibling value in a koji getLatestBuilds
// XML-RPC response flattened to a single line.
func FedoraPackageRule() Rule {
	return Rule{
		Name: "fedora-koji-nvr",
		Pattern: regexp.MustCompile(
			`<name>nvr</name><value><string>(?P<version>[^ /<>]+)</string></value>`,
		),
		Flatten:    true,
		FlattenSep: "",
	}
}

// RockyPackageRule matches the source RPM anchor adjacent to the package
// name in a mirror directory listing.
func RockyPackageRule(pkg string) Rule {
	quoted := regexp.QuoteMeta(pkg)
	return Rule{
		Name: "rocky-directory-listing",
		Pattern: regexp.MustCompile(
			`<a href="` + quoted + `-(?P<version>[^ ]+)\.src\.rpm">` + quoted,
		),
		Flatten:    true,
		FlattenSep: " ",
	}
}

// UbuntuPackageRule matches the source_package_version field of the single
// entry returned by Launchpad's getPublishedSources query.
func UbuntuPackageRule() Rule {
	return Rule{
		Name: "ubuntu-launchpad",
		Pattern: regexp.MustCompile(
			`"source_package_version":\s*"(?P<version>[^"]+)"`,
		),
	}
}

// ChannelRule extracts the latest stable channel of a distribution family
// from the tag listing embedded in its Docker Hub repository description.
// For debian and ubuntu the channel is the release codename; for the other
// families it is the numeric release identifier that doubles as the image
// tag.
func ChannelRule(family distro.Name) (Rule, bool) {
	var pattern string
	switch family {
	case distro.Alpine:
		pattern = "\\[`(?P<version>[0-9]+\\.[0-9]+\\.[0-9]+)`, `[0-9]+\\.[0-9]+`, `[0-9]+`, `latest`\\]"
	case distro.Debian:
		pattern = "\\[`(?P<version>[a-z]+)-slim`, `[a-z]+-[0-9]{8}-slim`"
	case distro.Fedora:
		pattern = "\\[`(?P<version>[0-9]+)`, `latest`\\]"
	case distro.Rocky:
		pattern = "\\[`[0-9]+\\.[0-9]+\\.[0-9]{8}-minimal`, `(?P<version>[0-9]+\\.[0-9]+-minimal)`, `[0-9]+-minimal`\\]"
	case distro.Ubuntu:
		pattern = "\\[`[0-9]+\\.[0-9]+`, `(?P<version>[a-z]+)-[0-9]{8}`, `[a-z]+`, `latest`\\]"
	default:
		return Rule{}, false
	}

	return Rule{
		Name:    "dockerhub-channel-" + string(family),
		Pattern: regexp.MustCompile(pattern),
	}, true
}
