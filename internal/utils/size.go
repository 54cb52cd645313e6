package utils

import "fmt"

// sizeUnits lists the unit suffixes used by FormatFileSize.
var sizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

// FormatFileSize converts a byte length into a human-readable unit string.
func FormatFileSize(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}
	value := float64(bytes)
	unitIndex := 0
	for value >= 1024 && unitIndex < len(sizeUnits)-1 {
		value /= 1024
		unitIndex++
	}
	if unitIndex == 0 {
		return fmt.Sprintf("%d %s", bytes, sizeUnits[unitIndex])
	}
	return fmt.Sprintf("%.1f %s", value, sizeUnits[unitIndex])
}
