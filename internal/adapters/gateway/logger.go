package gateway

import (
	"fmt"

	"github.com/athebyme/gomarket-storefront/pkg/interfaces"
)

// restyLogger направляет внутренние сообщения resty в LoggerPort
type restyLogger struct {
	log interfaces.LoggerPort
}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.log.Error(fmt.Sprintf(format, v...))
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.log.Warn(fmt.Sprintf(format, v...))
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.log.Debug(fmt.Sprintf(format, v...))
}
