package config

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/snowzach/rotatefilehook"
)

func logLevel() (logrus.Level, error) {
	levelStr, ok := os.LookupEnv("LOG_LEVEL")
	if !ok {
		if Development() {
			return logrus.DebugLevel, nil
		}
		return logrus.InfoLevel, nil
	}
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	return level, nil
}

/*
NewLogger builds the service logger. Development mode gets colored text
output, production gets JSON. When LOG_FILE is set, entries are also written
to a rotated file.
*/
func NewLogger(out io.Writer) (*logrus.Logger, error) {
	level, err := logLevel()
	if err != nil {
		return nil, err
	}

	log := logrus.New()
	log.SetOutput(out)
	log.SetLevel(level)
	if Development() {
		log.SetFormatter(&logrus.TextFormatter{ForceColors: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	if filename, ok := os.LookupEnv("LOG_FILE"); ok {
		hook, err := rotatefilehook.NewRotateFileHook(rotatefilehook.RotateFileConfig{
			Filename:   filename,
			MaxSize:    50, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Level:      level,
			Formatter:  &logrus.JSONFormatter{},
		})
		if err != nil {
			return nil, fmt.Errorf("unable to open log file: %w", err)
		}
		log.AddHook(hook)
	}

	return log, nil
}

// ApplyTo copies the level and formatter of log onto the package loggers.
func ApplyTo(log *logrus.Logger, loggers ...*logrus.Logger) {
	for _, l := range loggers {
		l.SetOutput(log.Out)
		l.SetLevel(log.GetLevel())
		l.SetFormatter(log.Formatter)
		hooks := make(logrus.LevelHooks, len(log.Hooks))
		for level, hs := range log.Hooks {
			hooks[level] = append([]logrus.Hook(nil), hs...)
		}
		l.ReplaceHooks(hooks)
	}
}
