package log

// SessionLogger tags every line with a connection's id and peer address.
// It follows level changes made on its parent.
type SessionLogger struct {
	parent *GameLogger
	id     uint64
	remote string
}

// NewSessionLogger derives a session logger from parent; nil means the default logger.
func NewSessionLogger(parent *GameLogger, id uint64, remote string) *SessionLogger {
	if parent == nil {
		parent = Default()
	}
	return &SessionLogger{parent: parent, id: id, remote: remote}
}

func (l *SessionLogger) tag(e *LogEvent) *LogEvent {
	return e.Uint64("session", l.id).Str("remote", l.remote)
}

func (l *SessionLogger) Debug() *LogEvent { return l.tag(l.parent.Debug()) }
func (l *SessionLogger) Info() *LogEvent  { return l.tag(l.parent.Info()) }
func (l *SessionLogger) Warn() *LogEvent  { return l.tag(l.parent.Warn()) }
func (l *SessionLogger) Error() *LogEvent { return l.tag(l.parent.Error()) }
func (l *SessionLogger) Fatal() *LogEvent { return l.tag(l.parent.Fatal()) }
