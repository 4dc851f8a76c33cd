package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/perseus-framework/docker-perseus/internal/config"
)

type runtimeOptions struct {
	ConfigPath      string
	OutputDir       string
	Version         string
	Distributions   []string
	LockFile        string
	Cleanup         bool
	Offline         bool
	Debug           bool
	DangerousInline bool
}

var rootOpts runtimeOptions

func NewRootCmd(buildVersion, buildDate string) *cobra.Command {
	showVersion := false

	cmd := &cobra.Command{
		Use:           "docker-perseus",
		Short:         "Generate pinned Perseus Dockerfiles across distributions",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				fmt.Fprint(cmd.OutOrStdout(), formatVersion(buildVersion, buildDate))
				return nil
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVarP(&rootOpts.ConfigPath, "config", "f", "", "Path to YAML config file")
	cmd.Flags().BoolVar(&showVersion, "version", false, "Print CLI version")
	cmd.PersistentFlags().StringVar(&rootOpts.Version, "release", "", "Perseus release tag to package (e.g. 0.4.0-beta.7, or 'latest')")
	cmd.PersistentFlags().StringSliceVar(&rootOpts.Distributions, "distributions", nil, "Distribution families to target (alpine, debian, fedora, rocky, ubuntu)")
	cmd.PersistentFlags().StringVarP(&rootOpts.OutputDir, "output", "o", "", "Output root for generated artifacts")
	cmd.PersistentFlags().StringVar(&rootOpts.LockFile, "lock-file", "", "Path of the dependency lock file")
	cmd.PersistentFlags().BoolVar(&rootOpts.Cleanup, "cleanup", false, "Remove output directories for releases no longer selected")
	cmd.PersistentFlags().BoolVar(&rootOpts.Offline, "offline", false, "Skip live registry lookups and pin from the recorded dependency table")
	cmd.PersistentFlags().BoolVar(&rootOpts.Debug, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVar(&rootOpts.DangerousInline, "dangerous-inline", false, "Skip write confirmation prompts and perform writes inline")

	cmd.AddCommand(newVersionCmd(buildVersion, buildDate))
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newResolveCmd())
	cmd.AddCommand(newRenderCmd())
	cmd.AddCommand(newGenerateCmd())

	return cmd
}

func mergedOptions(cmd *cobra.Command) (runtimeOptions, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return runtimeOptions{}, fmt.Errorf("get cwd: %w", err)
	}

	merged := runtimeOptions{
		OutputDir:     filepath.Join(cwd, "perseus-deploy"),
		Version:       "latest",
		Distributions: []string{"alpine", "debian", "fedora", "rocky", "ubuntu"},
		LockFile:      "",
		Cleanup:       false,
		Offline:       false,
	}

	if rootOpts.ConfigPath != "" {
		fileCfg, err := config.Load(rootOpts.ConfigPath)
		if err != nil {
			return runtimeOptions{}, err
		}

		if fileCfg.Version != "" {
			merged.Version = fileCfg.Version
		}
		if len(fileCfg.Distributions) > 0 {
			merged.Distributions = fileCfg.Distributions
		}
		if fileCfg.OutputDir != "" {
			merged.OutputDir = fileCfg.OutputDir
		}
		if fileCfg.LockFile != "" {
			merged.LockFile = fileCfg.LockFile
		}
		if fileCfg.Cleanup != nil {
			merged.Cleanup = *fileCfg.Cleanup
		}
		if fileCfg.Offline != nil {
			merged.Offline = *fileCfg.Offline
		}
		if fileCfg.Debug != nil {
			merged.Debug = *fileCfg.Debug
		}
	}

	if err := applyEnvOverrides(&merged); err != nil {
		return runtimeOptions{}, err
	}

	if cmd.Flags().Changed("release") {
		merged.Version = rootOpts.Version
	}
	if cmd.Flags().Changed("distributions") {
		merged.Distributions = rootOpts.Distributions
	}
	if cmd.Flags().Changed("output") {
		merged.OutputDir = rootOpts.OutputDir
	}
	if cmd.Flags().Changed("lock-file") {
		merged.LockFile = rootOpts.LockFile
	}
	if cmd.Flags().Changed("cleanup") {
		merged.Cleanup = rootOpts.Cleanup
	}
	if cmd.Flags().Changed("offline") {
		merged.Offline = rootOpts.Offline
	}
	if cmd.Flags().Changed("debug") {
		merged.Debug = rootOpts.Debug
	}
	if cmd.Flags().Changed("dangerous-inline") {
		merged.DangerousInline = rootOpts.DangerousInline
	}

	merged.OutputDir = strings.TrimSpace(merged.OutputDir)
	merged.Version = strings.TrimSpace(merged.Version)
	merged.LockFile = strings.TrimSpace(merged.LockFile)
	for i, family := range merged.Distributions {
		merged.Distributions[i] = strings.TrimSpace(family)
	}

	if merged.Version == "" {
		merged.Version = "latest"
	}

	return merged, nil
}

func applyEnvOverrides(opts *runtimeOptions) error {
	if value, ok := getenvTrim("PERSEUS_DOCKER_OUTPUT"); ok {
		opts.OutputDir = value
	}
	if value, ok := getenvTrim("PERSEUS_DOCKER_RELEASE"); ok {
		opts.Version = value
	}
	if value, ok := getenvTrim("PERSEUS_DOCKER_DISTRIBUTIONS"); ok {
		opts.Distributions = strings.Split(value, ",")
	}
	if value, ok := getenvTrim("PERSEUS_DOCKER_LOCK_FILE"); ok {
		opts.LockFile = value
	}

	if value, ok := getenvTrim("PERSEUS_DOCKER_CLEANUP"); ok {
		parsed, err := parseBoolEnv("PERSEUS_DOCKER_CLEANUP", value)
		if err != nil {
			return err
		}
		opts.Cleanup = parsed
	}
	if value, ok := getenvTrim("PERSEUS_DOCKER_OFFLINE"); ok {
		parsed, err := parseBoolEnv("PERSEUS_DOCKER_OFFLINE", value)
		if err != nil {
			return err
		}
		opts.Offline = parsed
	}
	if value, ok := getenvTrim("PERSEUS_DOCKER_DEBUG"); ok {
		parsed, err := parseBoolEnv("PERSEUS_DOCKER_DEBUG", value)
		if err != nil {
			return err
		}
		opts.Debug = parsed
	}
	if value, ok := getenvTrim("PERSEUS_DOCKER_DANGEROUS_INLINE"); ok {
		parsed, err := parseBoolEnv("PERSEUS_DOCKER_DANGEROUS_INLINE", value)
		if err != nil {
			return err
		}
		opts.DangerousInline = parsed
	}
	return nil
}

func getenvTrim(name string) (string, bool) {
	value, ok := os.LookupEnv(name)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(value), true
}

func parseBoolEnv(name, raw string) (bool, error) {
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("parse %s as bool: %w", name, err)
	}
	return parsed, nil
}

func newLogger(debug bool) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: false})
	if debug {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}
