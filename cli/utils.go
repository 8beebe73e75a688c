package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
	goutils "go.viam.com/utils"

	"go.viam.com/sceneviewer/config"
	"go.viam.com/sceneviewer/logging"
	"go.viam.com/sceneviewer/recfilter"
)

// printf prints a message with no prefix.
func printf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(w, format+"\n", a...)
}

// warningf prints a message prefixed with a yellow "Warning: ".
func warningf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprint(w, color.New(color.FgYellow).Sprint("Warning: "))
	printf(w, format, a...)
}

// session is the settings and logger shared by every action.
type session struct {
	settings *config.Settings
	logger   logging.Logger
	closers  []func() error
}

// newSession reads the settings file, if any, applies the global flags over it and builds the
// logger. Logs go to the app's error writer so command output stays parseable.
func newSession(c *cli.Context) (*session, error) {
	settings := config.Default()
	if path := c.String(generalFlagConfig); path != "" {
		read, err := config.Read(path, logging.NewBlankLogger("config"))
		if err != nil {
			return nil, err
		}
		settings = *read
	}
	if c.IsSet(generalFlagDebug) {
		settings.Debug = c.Bool(generalFlagDebug)
	}
	if c.IsSet(generalFlagLogFile) {
		settings.LogFile = c.String(generalFlagLogFile)
	}

	logger := logging.NewBlankLogger("sceneviewer")
	logger.AddAppender(logging.NewWriterAppender(c.App.ErrWriter))
	logger.SetLevel(settings.Level())
	logging.ReplaceGlobal(logger)
	s := &session{settings: &settings, logger: logger}
	if settings.LogFile != "" {
		appender, closer := logging.NewFileAppender(settings.LogFile)
		logger.AddAppender(appender)
		s.closers = append(s.closers, closer.Close)
	}
	return s, nil
}

// close flushes the logger and releases log files.
func (s *session) close() {
	goutils.UncheckedError(s.logger.Sync())
	for _, closer := range s.closers {
		goutils.UncheckedError(closer())
	}
}

// filterPath is the --file flag or the configured filter file.
func (s *session) filterPath(c *cli.Context) string {
	if path := c.String(filterFlagFile); path != "" {
		return path
	}
	return s.settings.RecFilterFile
}

// withSession runs action with a session that is closed afterwards.
func withSession(action func(c *cli.Context, s *session) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		s, err := newSession(c)
		if err != nil {
			return err
		}
		defer s.close()
		return action(c, s)
	}
}

var bucketColors = map[recfilter.Bucket]color.Attribute{
	recfilter.Active:            color.FgGreen,
	recfilter.ManuallyFiltered:  color.FgYellow,
	recfilter.AccessFiltered:    color.FgRed,
	recfilter.StabilityFiltered: color.FgMagenta,
	recfilter.HeightFiltered:    color.FgBlue,
}

// bucketName is the bucket's file key in its viewer color.
func bucketName(b recfilter.Bucket) string {
	attr, ok := bucketColors[b]
	if !ok {
		return b.String()
	}
	return color.New(attr).Sprint(b.String())
}
