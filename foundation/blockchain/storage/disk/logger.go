package disk

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// badgerLogger writes badger's messages to the service logger. Badger's
// info messages are routine and logged at debug.
type badgerLogger struct {
	log *zap.SugaredLogger
}

func (bl badgerLogger) Errorf(format string, args ...any) {
	bl.log.Errorw("badger", "ERROR", message(format, args...))
}

func (bl badgerLogger) Warningf(format string, args ...any) {
	bl.log.Warnw("badger", "status", message(format, args...))
}

func (bl badgerLogger) Infof(format string, args ...any) {
	bl.log.Debugw("badger", "status", message(format, args...))
}

func (bl badgerLogger) Debugf(format string, args ...any) {
	bl.log.Debugw("badger", "status", message(format, args...))
}

func message(format string, args ...any) string {
	return strings.TrimSpace(fmt.Sprintf(format, args...))
}
