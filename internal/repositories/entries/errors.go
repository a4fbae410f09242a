package entries

import "errors"

// ErrModifiedDuringPush reports that a row changed between being read for a
// push and being marked synced.
var ErrModifiedDuringPush = errors.New("entry modified during push")
