package cmd

import (
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"gooze.dev/pkg/jsgooze/internal/adapter"
	m "gooze.dev/pkg/jsgooze/internal/model"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "jsgooze"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."
	dotEnvFileName   = ".env"

	outputFlagName      = "output"
	noCacheFlagName     = "no-cache"
	excludeFlagName     = "exclude"
	runParallelFlagName = "parallel"
	verboseFlagName     = "verbose"
	logFileFlagName     = "log-file"
	operatorFlagName    = "operator"

	mutationTimeoutFlagName = "mutation-timeout"

	runParallelConfigKey = "run.parallel"
	mutationTimeoutKey   = "run.mutation_timeout"
	testCommandKey       = "run.test_command"
	tempDirKey           = "run.temp_dir"
	excludeConfigKey     = "paths.exclude"
	excludedExprKey      = "mutator.excluded_expressions"
	pluginsKey           = "mutator.plugins"
	operatorsKey         = "mutator.operators"

	defaultMutationTimeout = time.Minute * 2

	defaultReportsDir  = ".jsgooze-reports"
	defaultNoCache     = false
	defaultRunParallel = 1

	envPrefix = "JSGOOZE"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".jsgooze.log"
	defaultLogLevel      = int(slog.LevelInfo)
	defaultLogVerbose    = false
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

// defaultExcludedExpressions protects declarations that only feed tooling.
var defaultExcludedExpressions = []string{"propTypes", "defaultProps"}

var globalLogger *slog.Logger

func init() {
	loadDotEnv(filepath.Join(configFolderPath, dotEnvFileName))

	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	setDefaults(viper.GetViper())

	// A missing config file is fine; defaults apply.
	_ = viper.ReadInConfig()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(configVersionKey, currentConfigVersion)
	v.SetDefault(outputFlagName, defaultReportsDir)
	v.SetDefault(noCacheFlagName, defaultNoCache)
	v.SetDefault(runParallelConfigKey, defaultRunParallel)
	v.SetDefault(mutationTimeoutKey, int64(defaultMutationTimeout.Seconds()))
	v.SetDefault(testCommandKey, adapter.DefaultTestCommand)
	v.SetDefault(tempDirKey, "")
	v.SetDefault(excludeConfigKey, []string{})
	v.SetDefault(excludedExprKey, defaultExcludedExpressions)
	v.SetDefault(pluginsKey, adapter.DefaultSyntax)
	v.SetDefault(operatorsKey, mutationTypeNames(m.AllMutationTypes))

	v.SetDefault(logFilenameKey, defaultLogFilename)
	v.SetDefault(logLevelKey, defaultLogLevel)
	v.SetDefault(logVerboseKey, defaultLogVerbose)
	v.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	v.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	v.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	v.SetDefault(logCompressKey, defaultLogCompress)
}

// loadDotEnv exports the variables of path into the process environment.
// Variables already set win.
func loadDotEnv(path string) {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Failed to load env file", "path", path, "error", err)
	}
}

// mutationTimeout reads run.mutation_timeout, which holds seconds.
func mutationTimeout() time.Duration {
	seconds := viper.GetInt64(mutationTimeoutKey)
	if seconds <= 0 {
		return defaultMutationTimeout
	}

	return time.Duration(seconds) * time.Second
}

func mutationTypeNames(types []m.MutationType) []string {
	names := make([]string, 0, len(types))
	for _, mt := range types {
		names = append(names, string(mt))
	}

	return names
}

// parseMutationTypes maps operator names onto mutation types. Unknown names
// are rejected so typos do not silently disable operators.
func parseMutationTypes(names []string) ([]m.MutationType, error) {
	types := make([]m.MutationType, 0, len(names))

	var unknown []string

	for _, name := range names {
		mt := m.MutationType(strings.ToLower(strings.TrimSpace(name)))
		if mt == "" {
			continue
		}

		if !mt.Valid() {
			unknown = append(unknown, name)
			continue
		}

		types = append(types, mt)
	}

	if len(unknown) > 0 {
		return nil, errors.New("unknown operator(s): " + strings.Join(unknown, ", "))
	}

	return types, nil
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Numeric slog levels are accepted too (-4 is debug).
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger points the global slog logger at a rotating log file.
// It logs at the configured level, or Debug when verbose is set.
func configureLogger(logPath string, verbose bool) {
	if strings.TrimSpace(logPath) == "" {
		logPath = viper.GetString(logFilenameKey)
	}

	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename
	}

	logLevel := parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	if verbose || viper.GetBool(logVerboseKey) {
		logLevel = slog.LevelDebug
	}

	logWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}

	handler := slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel,
	})

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}
