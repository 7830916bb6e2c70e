package rename

// Reporter receives planning progress after each file. Returning false asks
// the planner to stop and return what it has so far.
type Reporter interface {
	Report(fraction float64, message string) bool
}

// ReporterFunc adapts a plain function to Reporter.
type ReporterFunc func(fraction float64, message string) bool

// Report calls f.
func (f ReporterFunc) Report(fraction float64, message string) bool { return f(fraction, message) }

// EmptyFolderMessage is the message reported for an empty folder.
const EmptyFolderMessage = "No files found to process"

func report(r Reporter, fraction float64, message string) bool {
	if r == nil {
		return true
	}
	return r.Report(fraction, message)
}
