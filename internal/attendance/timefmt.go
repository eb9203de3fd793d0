package attendance

import "time"

// FormatTime12h renders a stored HH:MM:SS value as "03:04 PM".
// Values that do not parse are returned unchanged.
func FormatTime12h(stored string) string {
	if stored == "" {
		return ""
	}
	t, err := time.Parse(TimeLayout, stored)
	if err != nil {
		return stored
	}
	return t.Format("03:04 PM")
}
