package media

import "strings"

// ResolveURL turns a stored photo value into a URL the browser can load.
// Full URLs pass through; relative paths are prefixed with the API origin.
// An empty value means "no photo" and stays empty.
func ResolveURL(origin, photo string) string {
	if photo == "" {
		return ""
	}
	if strings.HasPrefix(photo, "http") {
		return photo
	}
	return origin + photo
}
