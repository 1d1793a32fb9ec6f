package engine

import "time"

// timeNow is swapped by tests to pin "today".
var timeNow = time.Now
