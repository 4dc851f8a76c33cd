package config

func DefaultTemplate() string {
	return `# docker-perseus configuration
#
# Precedence: flags > environment variables > config file > defaults
# Environment prefix: PERSEUS_DOCKER_

# Perseus release tag to resolve (e.g. 0.4.0-beta.7).
version: 0.4.0-beta.7

# Distribution families to generate Dockerfiles for.
# Supported: alpine, debian, fedora, rocky, ubuntu
distributions:
  - alpine

# Output root for generated artifacts:
# - <output>/<version>/<family><channel>/Dockerfile
# - <output>/<version>/dependencies.lock.json
output: ./perseus-deploy

# Path of the resolved dependency lock file. Empty means the default
# location under the output root.
lock_file: ""

# Remove output directories for versions that are no longer selected.
cleanup: false

# Skip live registry lookups and pin everything from the recorded
# dependency table. Only previously published releases resolve offline.
offline: false

# Enable debug logging
debug: false
`
}
