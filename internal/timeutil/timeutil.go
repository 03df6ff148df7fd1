package timeutil

import "time"

// displayFormat is the layout used everywhere a reminder time is shown to the user.
const displayFormat = "Mon, 02 Jan 2006 15:04"

// NowMillis returns the current local time as epoch milliseconds.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}

// Millis converts a time.Time to epoch milliseconds.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}

// ToTime converts epoch milliseconds to a local time.Time.
func ToTime(ms int64) time.Time {
	return time.UnixMilli(ms)
}

// IsFuture reports whether the given epoch-millisecond timestamp is strictly
// after the current time.
func IsFuture(ms int64) bool {
	return ms > NowMillis()
}

// Until returns the duration from now until the given epoch-millisecond
// timestamp. Negative for past timestamps.
func Until(ms int64) time.Duration {
	return time.Until(ToTime(ms))
}

// FormatMillis renders an epoch-millisecond timestamp for display.
func FormatMillis(ms int64) string {
	return ToTime(ms).Format(displayFormat)
}
