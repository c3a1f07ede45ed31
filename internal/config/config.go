// Package config merges flags, DEVHUB_* environment variables, .env files and
// an optional .devhub.yaml into the scaffolding options.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jakoblorz/create-devhub/internal/models"
)

const (
	EnvPrefix = "DEVHUB"
	FileName  = ".devhub"
)

// Keys shared by flags, environment and config file.
const (
	KeyName           = "name"
	KeyFrontend       = "frontend"
	KeyDocs           = "docs"
	KeyWS             = "ws"
	KeyHTTP           = "http"
	KeyPackageManager = "package-manager"
	KeyTailwind       = "tailwind"
	KeyYes            = "yes"
	KeyQuiet          = "quiet"
	KeyVerbose        = "verbose"
	KeyLogFormat      = "log-format"
)

// OptionKeys are the keys that map onto models.Options.
var OptionKeys = []string{KeyName, KeyFrontend, KeyDocs, KeyHTTP, KeyWS, KeyTailwind, KeyPackageManager}

// RegisterFlags defines every option flag on fs with the prompt defaults.
func RegisterFlags(fs *pflag.FlagSet) {
	d := models.DefaultOptions()
	fs.String(KeyFrontend, d.Frontend.String(), "frontend for apps/web (web-next, web-vite)")
	fs.Bool(KeyDocs, d.IncludeDocs, "add a Next.js docs app")
	fs.Bool(KeyWS, d.IncludeWS, "add a WebSocket server app")
	fs.String(KeyHTTP, d.HTTPServer.String(), "HTTP server app (http-express, http-fastify, none)")
	fs.String(KeyPackageManager, d.PackageManager.String(), "package manager (npm, yarn, pnpm, bun)")
	fs.Bool(KeyTailwind, d.IncludeTailwind, "set up Tailwind CSS and the shared UI package")
	fs.BoolP(KeyYes, "y", false, "skip prompts and use flags, environment and defaults")
	fs.BoolP(KeyQuiet, "q", false, "suppress progress output")
	fs.BoolP(KeyVerbose, "v", false, "log every file mutation and command")
	fs.String(KeyLogFormat, "", "log format (console, json)")
}

// Loader resolves settings in viper's precedence order: flags, environment,
// config file, flag defaults.
type Loader struct {
	v           *viper.Viper
	searchPaths []string
	envFiles    []string
}

// NewLoader searches dirs for .devhub.yaml and .env, in order.
func NewLoader(dirs ...string) *Loader {
	l := &Loader{v: viper.New(), searchPaths: dirs}
	for _, dir := range dirs {
		l.envFiles = append(l.envFiles, filepath.Join(dir, ".env"))
	}
	return l
}

// DefaultSearchPaths returns the working directory and the home directory.
func DefaultSearchPaths() []string {
	var dirs []string
	if wd, err := os.Getwd(); err == nil {
		dirs = append(dirs, wd)
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, home)
	}
	return dirs
}

// Load reads .env files and the config file and binds flags.
func (l *Loader) Load(flags *pflag.FlagSet) error {
	if err := loadEnvFiles(l.envFiles); err != nil {
		return err
	}

	l.v.SetConfigName(FileName)
	l.v.SetConfigType("yaml")
	for _, dir := range l.searchPaths {
		l.v.AddConfigPath(dir)
	}

	l.v.SetEnvPrefix(EnvPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	l.v.AutomaticEnv()
	if err := l.v.BindEnv(KeyName); err != nil {
		return err
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config: %w", err)
		}
	}

	if flags != nil {
		if err := l.v.BindPFlags(flags); err != nil {
			return fmt.Errorf("failed to bind flags: %w", err)
		}
	}
	return nil
}

// ConfigFile is the config file in use, or "".
func (l *Loader) ConfigFile() string {
	return l.v.ConfigFileUsed()
}

// SetProjectName records the positional project name.
func (l *Loader) SetProjectName(name string) {
	l.v.Set(KeyName, name)
}

// Options decodes the merged settings.
func (l *Loader) Options() (models.Options, error) {
	opts := models.DefaultOptions()
	if err := l.v.Unmarshal(&opts); err != nil {
		return opts, fmt.Errorf("failed to decode options: %w", err)
	}

	http, err := models.ParseHTTPServer(opts.HTTPServer.String())
	if err != nil {
		return opts, err
	}
	opts.HTTPServer = http

	if opts.Frontend, err = models.ParseFrontend(opts.Frontend.String()); err != nil {
		return opts, err
	}

	// Unknown managers fall back to npm.
	opts.PackageManager = models.ParsePackageManager(opts.PackageManager.String())

	return opts, nil
}

// Fixed reports which option keys were given explicitly by a flag, the
// environment or the config file.
func (l *Loader) Fixed() map[string]bool {
	fixed := map[string]bool{}
	for _, key := range OptionKeys {
		if l.v.IsSet(key) {
			fixed[key] = true
		}
	}
	return fixed
}

func (l *Loader) Bool(key string) bool {
	return l.v.GetBool(key)
}

func (l *Loader) String(key string) string {
	return l.v.GetString(key)
}

func loadEnvFiles(paths []string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}
