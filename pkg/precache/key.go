package precache

import (
	"strings"
)

// keyPrefix namespaces shell entries in Redis.
const keyPrefix = "shell"

// DocumentKey generates the deterministic precache key for the canonical
// shell document of a host.
//
// Format: shell:<host>:<path>
//
// Example:
//
//	shell:app.example.com:/index.html
//
// The host is lowercased and the path normalized to a leading slash so the
// key is stable no matter how the inputs were produced.
func DocumentKey(host, path string) string {
	host = strings.ToLower(strings.TrimSpace(host))

	path = strings.TrimSpace(path)
	if path == "" {
		path = "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return strings.Join([]string{keyPrefix, host, path}, ":")
}
