package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

// keys are duplicated from constants to keep the logger import free
const (
	configFolderKey = "CONFIG_FOLDER"
	logLevelKey     = "LOG_LEVEL"
	noSaveKey       = "NO_SAVE"
)

var logger zerolog.Logger

func init() {
	zerolog.InterfaceMarshalFunc = json.Marshal
	zerolog.TimeFieldFormat = time.RFC3339
	logger = zerolog.New(consoleWriter(os.Stderr)).With().Timestamp().Logger()
}

func consoleWriter(out io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    true,
	}
}

// Init configures the level and the rotating file sink under the config folder.
// Console output goes to stderr so that stdout stays free for record output.
func Init() {
	level, err := zerolog.ParseLevel(strings.ToLower(viper.GetString(logLevelKey)))
	if err != nil || viper.GetString(logLevelKey) == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	writers := []io.Writer{consoleWriter(os.Stderr)}
	if folder := viper.GetString(configFolderKey); folder != "" && !viper.GetBool(noSaveKey) {
		logDir := filepath.Join(folder, "logs", fmt.Sprintf("sync_%s", time.Now().UTC().Format("2006-01-02_15-04-05")))
		if err := os.MkdirAll(logDir, os.ModePerm); err == nil {
			writers = append(writers, &lumberjack.Logger{
				Filename:   filepath.Join(logDir, "olake.log"),
				MaxSize:    100, // megabytes
				MaxBackups: 5,
				MaxAge:     30, // days
				Compress:   true,
			})
		}
	}

	logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp().Logger()
}

func event(e *zerolog.Event, v ...any) {
	if len(v) == 1 {
		switch value := v[0].(type) {
		case string:
			e.Msg(value)
			return
		case error:
			e.Msg(value.Error())
			return
		case fmt.Stringer:
			e.Msg(value.String())
			return
		case nil:
			e.Send()
			return
		default:
			// structured protocol messages are logged as json
			e.Interface("message", value).Send()
			return
		}
	}

	e.Msg(fmt.Sprint(v...))
}

func Info(v ...any) {
	event(logger.Info(), v...)
}

func Infof(format string, v ...any) {
	logger.Info().Msgf(format, v...)
}

func Debug(v ...any) {
	event(logger.Debug(), v...)
}

func Debugf(format string, v ...any) {
	logger.Debug().Msgf(format, v...)
}

func Warn(v ...any) {
	event(logger.Warn(), v...)
}

func Warnf(format string, v ...any) {
	logger.Warn().Msgf(format, v...)
}

func Error(v ...any) {
	event(logger.Error(), v...)
}

func Errorf(format string, v ...any) {
	logger.Error().Msgf(format, v...)
}

func Fatal(v ...any) {
	event(logger.Error(), v...)
	os.Exit(1)
}

func Fatalf(format string, v ...any) {
	logger.Error().Msgf(format, v...)
	os.Exit(1)
}

// FileLogger writes content as indented json to <config folder>/<fileName><fileExtension>
func FileLogger(content any, fileName, fileExtension string) error {
	if viper.GetBool(noSaveKey) {
		return nil
	}

	folder := viper.GetString(configFolderKey)
	if folder == "" {
		folder = os.TempDir()
	}

	return FileLoggerWithPath(content, filepath.Join(folder, fileName+fileExtension))
}

// FileLoggerWithPath writes content as indented json to path
func FileLoggerWithPath(content any, path string) error {
	if path == "" {
		return fmt.Errorf("empty file path")
	}

	data, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal content: %s", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create directory for %s: %s", path, err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write file %s: %s", path, err)
	}

	return nil
}
