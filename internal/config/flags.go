package config

import (
	"github.com/spf13/pflag"
)

// Имена флагов командной строки.
const (
	FlagPopulate  = "populate-container-dirs"
	FlagSourceDir = "source-dir"
	FlagTargetDir = "target-dir"
	FlagRunOnce   = "run-once"
	FlagJobs      = "jobs"
	FlagHTTPPort  = "http-port"
)

// BindFlags регистрирует флаги, переопределяющие окружение.
// Значения по умолчанию берутся из defaults (обычно результат Load).
func BindFlags(fs *pflag.FlagSet, defaults Config) {
	fs.Bool(FlagPopulate, defaults.PopulateContainerDirs, "Seed empty target volumes from the source dir")
	fs.String(FlagSourceDir, defaults.SourceDir, "Seeding source root")
	fs.String(FlagTargetDir, defaults.TargetDir, "Seeding target root")
	fs.Bool(FlagRunOnce, defaults.RunOnce, "Run all enabled jobs once and exit")
	fs.String(FlagJobs, defaults.JobsFile, "Path to the jobs file")
	fs.String(FlagHTTPPort, defaults.HTTPPort, "Port for /healthz and /metrics")
}

// ApplyFlags возвращает копию c с применёнными флагами.
// Учитываются только флаги, явно заданные пользователем.
func (c Config) ApplyFlags(fs *pflag.FlagSet) (Config, error) {
	var err error

	if fs.Changed(FlagPopulate) {
		if c.PopulateContainerDirs, err = fs.GetBool(FlagPopulate); err != nil {
			return Config{}, err
		}
	}
	if fs.Changed(FlagSourceDir) {
		if c.SourceDir, err = fs.GetString(FlagSourceDir); err != nil {
			return Config{}, err
		}
	}
	if fs.Changed(FlagTargetDir) {
		if c.TargetDir, err = fs.GetString(FlagTargetDir); err != nil {
			return Config{}, err
		}
	}
	if fs.Changed(FlagRunOnce) {
		if c.RunOnce, err = fs.GetBool(FlagRunOnce); err != nil {
			return Config{}, err
		}
	}
	if fs.Changed(FlagJobs) {
		if c.JobsFile, err = fs.GetString(FlagJobs); err != nil {
			return Config{}, err
		}
	}
	if fs.Changed(FlagHTTPPort) {
		if c.HTTPPort, err = fs.GetString(FlagHTTPPort); err != nil {
			return Config{}, err
		}
	}

	return c, nil
}
