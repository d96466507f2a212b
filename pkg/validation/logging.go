package validation

import (
	"fmt"
	"os"
	"text/template"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/canvas-auth/canvas-auth-proxy/pkg/apis/options"
	"github.com/canvas-auth/canvas-auth-proxy/pkg/logger"
)

// configureLogger applies the logging options to the package logger once
// they check out. Problems are appended to msgs and leave the logger as is.
func configureLogger(o options.Logging, pingPath string, msgs []string) []string {
	bad := false
	for _, f := range []struct{ flag, format string }{
		{"standard-logging-format", o.StandardFormat},
		{"auth-logging-format", o.AuthFormat},
		{"request-logging-format", o.RequestFormat},
	} {
		if _, err := template.New(f.flag).Parse(f.format); err != nil {
			msgs = append(msgs, fmt.Sprintf("invalid %s: %v", f.flag, err))
			bad = true
		}
	}

	if o.File.Filename != "" {
		if err := checkWritable(o.File.Filename); err != nil {
			return append(msgs, err.Error())
		}
	}
	if bad {
		return msgs
	}

	if o.File.Filename != "" {
		logger.Printf("Redirecting logging to file: %s", o.File.Filename)
		logger.SetOutput(&lumberjack.Logger{
			Filename:   o.File.Filename,
			MaxSize:    o.File.MaxSize,
			MaxAge:     o.File.MaxAge,
			MaxBackups: o.File.MaxBackups,
			LocalTime:  o.LocalTime,
			Compress:   o.File.Compress,
		})
	}

	if !o.StandardEnabled && !o.AuthEnabled && !o.RequestEnabled {
		logger.Print("Warning: Logging disabled. No further logs will be shown.")
	}

	logger.SetStandardEnabled(o.StandardEnabled)
	logger.SetAuthEnabled(o.AuthEnabled)
	logger.SetReqEnabled(o.RequestEnabled)
	logger.SetStandardTemplate(o.StandardFormat)
	logger.SetAuthTemplate(o.AuthFormat)
	logger.SetReqTemplate(o.RequestFormat)

	exclude := append([]string{}, o.ExcludePaths...)
	if o.SilencePing {
		exclude = append(exclude, pingPath)
	}
	logger.SetExcludePaths(exclude)

	if !o.LocalTime {
		logger.SetFlags(logger.Flags() | logger.LUTC)
	}
	return msgs
}

// checkWritable opens name the way lumberjack will, so a permission problem
// is reported at start-up rather than on the first log line.
func checkWritable(name string) error {
	f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
	if os.IsPermission(err) {
		return fmt.Errorf("unable to write to log file: %s", name)
	}
	if err != nil {
		// A missing directory is created by lumberjack.
		return nil
	}
	return f.Close()
}
