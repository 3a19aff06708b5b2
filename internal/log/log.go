package log

import (
	"io"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

var std = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(jsonFormatter())
	return l
}

func jsonFormatter() logrus.Formatter {
	return &logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05Z07:00",
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "ts",
			logrus.FieldKeyMsg:  "msg",
		},
	}
}

// Setup configures level, format (json|text) and an optional log file that
// receives a copy of stdout. The returned closer releases the file.
func Setup(level, format, file string) (io.Closer, error) {
	lvl, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	std.SetLevel(lvl)
	if strings.EqualFold(format, "text") {
		std.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		std.SetFormatter(jsonFormatter())
	}
	if file == "" {
		return io.NopCloser(nil), nil
	}
	f, err := os.OpenFile(file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		std.WithError(err).WithField("file", file).Warn("log.file.open.fail")
		return io.NopCloser(nil), err
	}
	std.SetOutput(io.MultiWriter(os.Stdout, f))
	return f, nil
}

// SetOutput redirects every entry; returns the previous writer.
func SetOutput(w io.Writer) io.Writer {
	old := std.Out
	std.SetOutput(w)
	return old
}

// Logger exposes the underlying logger for libraries that want one.
func Logger() *logrus.Logger { return std }

func entry(kind string, c *fiber.Ctx, action string, err error, fields map[string]any) *logrus.Entry {
	e := std.WithField("action", action)
	if kind != "" {
		e = e.WithField("kind", kind)
	}
	if c != nil {
		e = e.WithFields(logrus.Fields{
			"ip":     c.IP(),
			"method": c.Method(),
			"path":   c.Path(),
			"status": c.Response().StatusCode(),
		})
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			e = e.WithField("req_id", rid)
		}
	}
	if len(fields) > 0 {
		e = e.WithField("fields", fields)
	}
	if err != nil {
		e = e.WithField("err", err.Error())
	}
	return e
}

func Debug(c *fiber.Ctx, action string, fields map[string]any) {
	entry("", c, action, nil, fields).Debug(action)
}

func Info(c *fiber.Ctx, action string, fields map[string]any) {
	entry("", c, action, nil, fields).Info(action)
}

func Audit(c *fiber.Ctx, action string, fields map[string]any) {
	entry("audit", c, action, nil, fields).Info(action)
}

func Security(c *fiber.Ctx, action string, fields map[string]any) {
	entry("security", c, action, nil, fields).Warn(action)
}

func Warn(c *fiber.Ctx, action string, err error, fields map[string]any) {
	entry("", c, action, err, fields).Warn(action)
}

func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	entry("", c, action, err, fields).Error(action)
}
