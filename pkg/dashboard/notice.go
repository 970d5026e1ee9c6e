package dashboard

import "time"

// CelebrationWindow is how long the completion banner stays up.
const CelebrationWindow = 4 * time.Second

// Level is the severity of a Notice.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notice is a short, non-blocking message for the user.
type Notice struct {
	Level   Level
	Message string
}

// Notifier displays notices. Notify is never called with the dashboard's lock held.
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) {
	f(n)
}
