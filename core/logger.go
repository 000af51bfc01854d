package core

// Logger is any sink the app can log to.
//
// args carry anything worth reporting alongside the message; the
// implementation decides what to do with an error, a user, etc.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
