package model

import (
	"fmt"
	"strconv"
	"strings"
)

// InitialVersion is assigned to a requirement on first create
const InitialVersion = "1.0"

// BumpVersion increments a "major.minor" version string by exactly 0.1,
// carrying into the major part ("1.9" -> "2.0"). Unparseable versions
// reset to the initial version; callers may log the reset.
func BumpVersion(version string) string {
	major, minor, err := parseVersion(version)
	if err != nil {
		return InitialVersion
	}
	minor++
	if minor >= 10 {
		major++
		minor = 0
	}
	return fmt.Sprintf("%d.%d", major, minor)
}

// IsValidVersion reports whether version is a well-formed "major.minor"
// string that BumpVersion can increment
func IsValidVersion(version string) bool {
	_, _, err := parseVersion(version)
	return err == nil
}

func parseVersion(version string) (major, minor int, err error) {
	parts := strings.SplitN(strings.TrimSpace(version), ".", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid version %q", version)
	}
	major, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid version %q", version)
	}
	minor, err = strconv.Atoi(parts[1])
	if err != nil || minor < 0 || minor > 9 {
		return 0, 0, fmt.Errorf("invalid version %q", version)
	}
	return major, minor, nil
}
