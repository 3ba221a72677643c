package ipactivity

import (
	"fmt"
	"strings"
)

// Kind selects one of the three bitmaps a dataset produces.
type Kind uint8

const (
	// KindSource counts source addresses.
	KindSource Kind = iota
	// KindDestination counts destination addresses.
	KindDestination
	// KindBoth counts source and destination addresses.
	KindBoth
)

// Kinds lists all bitmap kinds.
var Kinds = []Kind{KindSource, KindDestination, KindBoth}

// String returns the short name used in file names: "s", "d" or "sd".
func (k Kind) String() string {
	switch k {
	case KindSource:
		return "s"
	case KindDestination:
		return "d"
	case KindBoth:
		return "sd"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Filename returns the bitmap blob name for base, "<base>_<kind>.bmap".
func (k Kind) Filename(base string) string {
	return base + "_" + k.String() + ".bmap"
}

// ParseKind parses "s", "d" or "sd". The long forms "source",
// "destination" and "both" are accepted too.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "s", "src", "source":
		return KindSource, nil
	case "d", "dst", "destination":
		return KindDestination, nil
	case "sd", "both":
		return KindBoth, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidKind, s)
}
