package dangerous

import "time"

// Clock returns the current time. TimestampSigner reads it exactly once
// per Sign and once per Unsign (for the age check), so tests can pin it
// to a fixed or stepping closure instead of patching a process-global.
type Clock func() time.Time

func defaultClock() time.Time {
	return time.Now()
}

// Epoch is the library's zero of time: 2011-01-01T00:00:00Z. It must
// never change across versions — doing so invalidates every outstanding
// timestamped token.
const Epoch int64 = 1293840000
