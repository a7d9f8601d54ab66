package task

// Failure records why one job ended Failed.
type Failure struct {
	JobID string
	Err   error
}

// Summary aggregates the run once every job is terminal. The three counts
// always sum to the job set's size.
type Summary struct {
	Succeeded int
	Failed    int
	Cancelled int
	Failures  []Failure // Insertion order of the failed jobs.
}

// summarize builds the Summary from the job set in insertion order.
func summarize(set *JobSet) Summary {
	var s Summary
	for _, j := range set.Jobs() {
		st := j.Status()
		switch st.State {
		case StateSucceeded:
			s.Succeeded++
		case StateFailed:
			s.Failed++
			s.Failures = append(s.Failures, Failure{JobID: st.ID, Err: st.Err})
		case StateCancelled:
			s.Cancelled++
		}
	}
	return s
}
