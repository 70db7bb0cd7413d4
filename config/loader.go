package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kapeta/sdk-go-redis/logger"
)

// ConfigFileEnv names the variable that points at an explicit config file.
const ConfigFileEnv = "KAPETA_CONFIG_FILE"

// FileSystem abstracts the file operations the loader needs.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// OSFileSystem implements FileSystem on the real file system.
type OSFileSystem struct{}

func (OSFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (OSFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// LoaderConfig holds loader dependencies and explicit file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string
	EnvFile    string
}

// LoaderOption is a functional option for LoadConfig.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// LoadConfig loads configuration for a service into cfg.
//
// Sources, lowest precedence first: the YAML config file, the process
// environment, then variables from the .env file. Without explicit paths
// the loader checks KAPETA_CONFIG_FILE and then searches standard locations.
// A missing config file is not an error; an unreadable one is.
func LoadConfig(serviceName string, cfg interface{}, opts ...LoaderOption) error {
	lc := LoaderConfig{FileSystem: OSFileSystem{}}
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.ConfigFile == "" {
		lc.ConfigFile = os.Getenv(ConfigFileEnv)
	}

	configFile := lc.ConfigFile
	if configFile == "" {
		configFile = firstExisting(lc.FileSystem, configSearchPaths(serviceName))
	}
	envFile := lc.EnvFile
	if envFile == "" {
		envFile = firstExisting(lc.FileSystem, envSearchPaths(serviceName))
	}

	v := viper.New()
	if configFile != "" && lc.FileSystem.Exists(configFile) {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config file %s: %w", configFile, err)
		}
		logger.Debug("Loaded config file", logger.Fields("file", configFile))
	}

	v.AutomaticEnv()
	bindEnv(v)

	if envFile != "" && lc.FileSystem.Exists(envFile) {
		if err := lc.FileSystem.LoadEnv(envFile); err != nil {
			logger.Warn("Failed to load .env file", logger.Fields("file", envFile, logger.FieldError, err.Error()))
		} else {
			bindEnv(v)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unmarshal config for service %s: %w", serviceName, err)
	}
	return nil
}

func firstExisting(fs FileSystem, paths []string) string {
	for _, p := range paths {
		if fs.Exists(p) {
			return p
		}
	}
	return ""
}

// configSearchPaths lists candidate config files. For "orders-service" both
// the full name and the short suffix ("service") are tried under cmd/.
func configSearchPaths(serviceName string) []string {
	var paths []string
	for _, name := range serviceNames(serviceName) {
		for _, prefix := range []string{".", "..", "../.."} {
			paths = append(paths, fmt.Sprintf("%s/cmd/%s/config.yml", prefix, name))
		}
	}
	return append(paths,
		"./kapeta.yml",
		"./config/config.yml",
		"../config/config.yml",
		"./config.yml",
	)
}

func envSearchPaths(serviceName string) []string {
	var paths []string
	for _, file := range []string{".env." + serviceName, ".env"} {
		for _, name := range serviceNames(serviceName) {
			for _, prefix := range []string{".", "..", "../.."} {
				paths = append(paths, fmt.Sprintf("%s/cmd/%s/%s", prefix, name, file))
			}
		}
		paths = append(paths, "./config/"+file, "./"+file, "../"+file)
	}
	return paths
}

func serviceNames(serviceName string) []string {
	if idx := strings.LastIndex(serviceName, "-"); idx != -1 && idx < len(serviceName)-1 {
		return []string{serviceName, serviceName[idx+1:]}
	}
	return []string{serviceName}
}

// bindEnv copies environment variables into v under every nesting variant
// of their name so nested keys can be overridden from the environment.
func bindEnv(v *viper.Viper) {
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		for _, variant := range envKeyVariants(key) {
			v.Set(variant, value)
		}
	}
}

// envKeyVariants maps an environment variable name to the config keys it may
// address:
//
//	LOGGING_LEVEL              -> logging_level, logging.level
//	KAPETA_RESOURCES_CACHE_HOST -> ..., kapeta.resources.cache.host, kapeta.resources.cache_host, ...
func envKeyVariants(envKey string) []string {
	lower := strings.ToLower(envKey)
	parts := strings.Split(lower, "_")
	if len(parts) <= 1 {
		return []string{lower}
	}

	seen := map[string]bool{}
	var variants []string
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			variants = append(variants, s)
		}
	}

	add(lower)
	add(strings.Join(parts, "."))
	for i := 1; i < len(parts); i++ {
		add(strings.Join(parts[:i], ".") + "." + strings.Join(parts[i:], "_"))
		add(strings.Join(parts[:i], "_") + "." + strings.Join(parts[i:], "."))
	}
	return variants
}
