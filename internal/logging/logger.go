package logging

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var Logger = logrus.New()

type lineFormatter struct {
	SystemName string
}

func (f *lineFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b *bytes.Buffer
	if entry.Buffer != nil {
		b = entry.Buffer
	} else {
		b = &bytes.Buffer{}
	}

	b.WriteString(fmt.Sprintf("time=%s ", entry.Time.Format("2006-01-02T15:04:05")))
	b.WriteString(fmt.Sprintf("source=%s ", f.SystemName))
	b.WriteString(fmt.Sprintf("level=%s ", strings.ToUpper(entry.Level.String())))
	b.WriteString(fmt.Sprintf("event=%s ", uuid.New().String()))
	b.WriteString(fmt.Sprintf("msg=%q", entry.Message))

	for k, v := range entry.Data {
		b.WriteString(fmt.Sprintf(" %s=%v", k, v))
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}

// Init configures the shared logger. With a non-empty logFile, output
// goes to a size-rotated file; otherwise it stays on stderr.
func Init(logFile string) {
	if logFile != "" {
		Logger.SetOutput(&lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		})
	} else {
		Logger.SetOutput(os.Stderr)
	}

	Logger.SetFormatter(&lineFormatter{SystemName: "community-action"})
	Logger.SetLevel(logrus.InfoLevel)
}
