package collector

import "fmt"

// UpstreamError reports a page fetch that failed even after the
// client's retry budget. Cursor identifies where the run stopped so an
// operator can correlate with index behavior before rerunning.
type UpstreamError struct {
	Cursor int64
	Err    error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("replay index fetch failed at cursor %d: %v", e.Cursor, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
