package log

import (
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/HeliosSoftware/hfs-sub000/conf"
)

var (
	// Codec receives lenient-mode drops and dispatch decisions.
	Codec logrus.FieldLogger
	// CLI receives per-file outcomes of the hfs command.
	CLI logrus.FieldLogger
)

func init() {
	SetupLoggers()
}

// SetupLoggers rebuilds the package loggers from the current configuration.
func SetupLoggers() {
	env := conf.GetEnv("DEPLOYMENT_TARGET")
	Codec = Logger(newLogger(), conf.GetEnv("HFS_CODEC_LOG"), "codec", env)
	CLI = Logger(newLogger(), conf.GetEnv("HFS_CLI_LOG"), "cli", env)
}

func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if lvl, ok := conf.LookupEnv("HFS_LOG_LEVEL"); ok {
		if parsed, err := logrus.ParseLevel(lvl); err == nil {
			logger.SetLevel(parsed)
		}
	}
	return logger
}

func Logger(logger *logrus.Logger, outputFile string,
	application, environment string) logrus.FieldLogger {

	if outputFile != "" {
		if file, err := os.OpenFile(filepath.Clean(outputFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640); err == nil {
			logger.SetOutput(file)
		} else {
			logger.Infof("Failed to open output file %s. Will use stderr. %s",
				outputFile, err.Error())
		}
	}

	return logger.WithFields(logrus.Fields{
		"application": application,
		"environment": environment})
}
