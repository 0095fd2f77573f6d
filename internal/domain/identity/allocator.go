package identity

import (
	"fmt"
	"regexp"
	"strconv"
)

const generatedIDPrefix = "EMP-GEN-"

var generatedIDPattern = regexp.MustCompile(`^EMP-GEN-(\d+)$`)

// NextEmployeeID returns the identifier following last in the EMP-GEN-NNN
// series. The suffix is zero-padded to three digits and widens naturally
// beyond 999. An empty or non-matching last starts the series over.
func NextEmployeeID(last string) string {
	match := generatedIDPattern.FindStringSubmatch(last)
	if match == nil {
		return generatedIDPrefix + "001"
	}
	n, err := strconv.Atoi(match[1])
	if err != nil {
		return generatedIDPrefix + "001"
	}
	return fmt.Sprintf("%s%03d", generatedIDPrefix, n+1)
}
