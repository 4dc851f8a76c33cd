package registry

import (
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/perseus-framework/docker-perseus/internal/config"
	"github.com/perseus-framework/docker-perseus/internal/distro"
	"github.com/perseus-framework/docker-perseus/internal/extract"
)

// PackageStrategy pairs the request builder and extraction rule for one
// distribution's package registry. Strategies are selected by family via
// lookup; shared client logic never branches on the family name.
type PackageStrategy struct {
	Request func(e config.Endpoints, channel, pkg string) (Request, error)
	Rule    func(channel, pkg string) extract.Rule
}

// PackageStrategyFor returns the registry strategy for the family.
func PackageStrategyFor(name distro.Name) (PackageStrategy, bool) {
	s, ok := packageStrategies[name]
	return s, ok
}

var majorMinorPattern = regexp.MustCompile(`^[0-9]+\.[0-9]+`)

// The koji request body is a literal XML-RPC template: getLatestBuilds with
// the channel tag in the tag positions and the package name in the package
// position.
const kojiLatestBuilds = `<?xml version="1.0"?><methodCall><methodName>getLatestBuilds</methodName><params><param><value><string>%[1]s</string></value></param><param><value><nil/></value></param><param><value><string>%[2]s</string></value></param><param><value><nil/></value></param></params></methodCall>`

var packageStrategies = map[distro.Name]PackageStrategy{
	distro.Alpine: {
		// Package descriptors are APKBUILD files served raw out of the
		// aports tree, keyed by the "<major.minor>-stable" branch.
		Request: func(e config.Endpoints, channel, pkg string) (Request, error) {
			branch := majorMinorPattern.FindString(channel)
			if branch == "" {
				return Request{}, fmt.Errorf("alpine channel %q has no major.minor prefix", channel)
			}
			return Request{
				URL: e.GitHubRaw + "alpinelinux/aports/" + branch + "-stable/main/" + pkg + "/APKBUILD",
			}, nil
		},
		Rule: func(_, pkg string) extract.Rule {
			return extract.AlpinePackageRule(pkg)
		},
	},

	distro.Debian: {
		Request: func(e config.Endpoints, _, pkg string) (Request, error) {
			return Request{
				URL:         e.DebianSources + pkg + "/",
				ContentType: "application/json",
			}, nil
		},
		Rule: func(channel, _ string) extract.Rule {
			return extract.DebianPackageRule(channel)
		},
	},

	distro.Fedora: {
		Request: func(e config.Endpoints, channel, pkg string) (Request, error) {
			tag := "f" + channel + "-updates"
			return Request{
				URL:         e.FedoraKoji,
				Method:      http.MethodPost,
				Body:        fmt.Sprintf(kojiLatestBuilds, tag, pkg),
				ContentType: "text/xml",
			}, nil
		},
		Rule: func(_, _ string) extract.Rule {
			return extract.FedoraPackageRule()
		},
	},

	distro.Rocky: {
		// Source trees are browsed as directory listings; packages are
		// sharded by first letter.
		Request: func(e config.Endpoints, channel, pkg string) (Request, error) {
			release := majorMinorPattern.FindString(channel)
			if release == "" {
				return Request{}, fmt.Errorf("rocky channel %q has no major.minor prefix", channel)
			}
			if pkg == "" {
				return Request{}, fmt.Errorf("empty package name")
			}
			return Request{
				URL: e.RockyDownload + release + "/devel/source/tree/Packages/" + pkg[:1],
			}, nil
		},
		Rule: func(_, pkg string) extract.Rule {
			return extract.RockyPackageRule(pkg)
		},
	},

	distro.Ubuntu: {
		Request: func(e config.Endpoints, channel, pkg string) (Request, error) {
			series := url.QueryEscape("https://api.launchpad.net/1.0/ubuntu/" + channel)
			query := strings.Join([]string{
				"?ws.op=getPublishedSources",
				"&date_superceded=null",
				"&distro_series=" + series,
				"&exact_match=true",
				"&pocket=Updates",
				"&status=Published",
				"&source_name=" + url.QueryEscape(pkg),
			}, "")
			return Request{
				URL:         e.UbuntuLaunchpad + query,
				ContentType: "application/json",
			}, nil
		},
		Rule: func(_, _ string) extract.Rule {
			return extract.UbuntuPackageRule()
		},
	},
}
