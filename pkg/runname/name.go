package runname

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// TimestampLayout is the time layout of the name suffix (UTC YYYYMMDDHHMMSS).
	TimestampLayout = "20060102150405"

	// TimestampWidth is the fixed width of the timestamp suffix.
	TimestampWidth = len(TimestampLayout)

	// Prefix starts every generated run directory name.
	Prefix = "Run--"

	// PaddingBudget is the width run name, filler and unique ID are padded to.
	PaddingBudget = 30

	// Filler pads the human-readable part of a name.
	Filler = "-"
)

// Entry is a decoded run directory name.
type Entry struct {
	// Name is the full directory name.
	Name string `json:"name"`

	// Prefix is everything before the timestamp suffix.
	Prefix string `json:"prefix"`

	// Timestamp is the UTC creation time encoded in the name.
	Timestamp time.Time `json:"timestamp"`
}

// String returns the directory name the entry was decoded from.
func (e Entry) String() string {
	return e.Prefix + e.Timestamp.UTC().Format(TimestampLayout)
}

// Age returns how long before now the entry was created.
func (e Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.Timestamp)
}

// Encode builds a run directory name for runName and uniqueID created at ts.
// Spaces in runName are replaced with underscores. ts is truncated to the
// second and formatted in UTC.
func Encode(runName, uniqueID string, ts time.Time) string {
	runName = strings.ReplaceAll(runName, " ", "_")

	width := PaddingBudget - utf8.RuneCountInString(runName) - utf8.RuneCountInString(uniqueID)
	if width < 0 {
		width = 0
	}

	var sb strings.Builder
	sb.WriteString(Prefix)
	sb.WriteString(runName)
	sb.WriteString("-")
	sb.WriteString(strings.Repeat(Filler, width))
	sb.WriteString(uniqueID)
	sb.WriteString("-")
	sb.WriteString(ts.UTC().Format(TimestampLayout))
	return sb.String()
}

// Decode splits name into its prefix and timestamp.
func Decode(name string) (Entry, error) {
	if len(name) < TimestampWidth {
		return Entry{}, NewMalformedNameError(name,
			fmt.Sprintf("shorter than the %d character timestamp suffix", TimestampWidth), nil)
	}

	split := len(name) - TimestampWidth
	suffix := name[split:]
	for i := 0; i < len(suffix); i++ {
		if suffix[i] < '0' || suffix[i] > '9' {
			return Entry{}, NewMalformedNameError(name, "timestamp suffix is not numeric", nil)
		}
	}

	ts, err := time.ParseInLocation(TimestampLayout, suffix, time.UTC)
	if err != nil {
		return Entry{}, NewMalformedNameError(name, "invalid timestamp", err)
	}

	return Entry{
		Name:      name,
		Prefix:    name[:split],
		Timestamp: ts,
	}, nil
}

// Validate reports whether runName and uniqueID can be embedded in a single
// directory name.
func Validate(runName, uniqueID string) error {
	if err := validatePart("run name", runName); err != nil {
		return err
	}
	return validatePart("unique id", uniqueID)
}

func validatePart(field, value string) error {
	if strings.ContainsAny(value, `/\`) {
		return fmt.Errorf("%s %q must not contain path separators", field, value)
	}
	if value == "." || value == ".." {
		return fmt.Errorf("%s %q is invalid", field, value)
	}
	if strings.ContainsRune(value, 0) {
		return fmt.Errorf("%s %q must not contain NUL", field, value)
	}
	return nil
}
