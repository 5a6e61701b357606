package core

// Logger is any leveled logger. args may contain errors, extra data maps
// and at most one identity (e.g. a student.Student) to attach to the report.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
