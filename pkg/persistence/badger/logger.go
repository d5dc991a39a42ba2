package badger

import (
	"strings"

	badgerdb "github.com/dgraph-io/badger/v3"
	"go.uber.org/zap"
)

// journalLogger routes badger's internal logs into zap. Badger info lines
// (compaction, value log GC) are logged at debug.
type journalLogger struct {
	sugar *zap.SugaredLogger
}

var _ badgerdb.Logger = (*journalLogger)(nil)

func newJournalLogger(logger *zap.Logger) *journalLogger {
	return &journalLogger{sugar: logger.Named("badger").Sugar()}
}

func trim(format string) string {
	return strings.TrimRight(format, "\n")
}

func (l *journalLogger) Errorf(format string, args ...interface{}) {
	l.sugar.Errorf(trim(format), args...)
}

func (l *journalLogger) Warningf(format string, args ...interface{}) {
	l.sugar.Warnf(trim(format), args...)
}

func (l *journalLogger) Infof(format string, args ...interface{}) {
	l.sugar.Debugf(trim(format), args...)
}

func (l *journalLogger) Debugf(format string, args ...interface{}) {
	l.sugar.Debugf(trim(format), args...)
}
