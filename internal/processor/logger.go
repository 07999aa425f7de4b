package processor

// Logger receives progress and finding output of a pass. The diagnostic
// system of the CLI satisfies it.
type Logger interface {
	Debug(format string, args ...interface{})
	Verbose(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{})   {}
func (nopLogger) Verbose(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})    {}
func (nopLogger) Error(string, ...interface{})   {}

// Recorder observes a pass for metrics
type Recorder interface {
	ObserveOccurrence(marker, result string)
	ObserveFinding(code, severity string)
	ObservePass(bundle string, seconds float64, components int, abandoned bool)
}

type nopRecorder struct{}

func (nopRecorder) ObserveOccurrence(string, string)       {}
func (nopRecorder) ObserveFinding(string, string)          {}
func (nopRecorder) ObservePass(string, float64, int, bool) {}
