package extract

import "fmt"

// TruncateURL shortens a URL for terminal output. The host and the tail
// of the path carry the most signal, so the middle is what gets elided.
func TruncateURL(url string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(url) <= max {
		return url
	}
	if max < 7 {
		return url[:max]
	}
	head := (max - 3) / 2
	tail := max - 3 - head
	return url[:head] + "..." + url[len(url)-tail:]
}

// FormatBytes renders a byte count with a binary unit suffix.
func FormatBytes(n int) string {
	if n < 1024 {
		return fmt.Sprintf("%d B", n)
	}
	v := float64(n)
	unit := ""
	for _, u := range []string{"KB", "MB", "GB"} {
		v /= 1024
		unit = u
		if v < 1024 {
			break
		}
	}
	return fmt.Sprintf("%.1f %s", v, unit)
}
