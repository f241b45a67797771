// Package naming generates the collision-resistant on-disk names for
// downloaded files. A short random token is prefixed to a user-legible base
// name, so unrelated uploads of the same file never clash without needing a
// lookup or a lock beyond the queue's own serialization.
package naming

import (
	"crypto/rand"
	"errors"
	"fmt"
	"path"
	"strings"
)

const (
	tokenLength   = 5
	tokenAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// ErrNoBaseName is returned when neither a requested name nor a derivable
// path segment yields a usable file name.
var ErrNoBaseName = errors.New("could not determine file name")

// Token returns a fixed-length random alphanumeric string. The 62^5 space
// makes collisions within one process run vanishingly unlikely.
func Token() string {
	buf := make([]byte, tokenLength)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms.
		panic(fmt.Sprintf("naming: read random bytes: %v", err))
	}
	for i, b := range buf {
		buf[i] = tokenAlphabet[int(b)%len(tokenAlphabet)]
	}
	return string(buf)
}

// Sanitize makes a user-supplied file name shell- and URL-friendly by
// replacing spaces with underscores.
func Sanitize(name string) string {
	return strings.ReplaceAll(name, " ", "_")
}

// BaseFromPath extracts the final segment of a storage path or URL.
// Query strings and fragments are not expected here; callers pass either a
// provider storage path or an already-parsed URL path.
func BaseFromPath(p string) string {
	return path.Base(strings.ReplaceAll(p, "\\", "/"))
}

// FinalName composes the on-disk name for a transfer: a random token plus
// the sanitized requested name when the user supplied one, else the last
// segment of the resolved source path.
func FinalName(requestedName, sourcePath string) (string, error) {
	base := strings.TrimSpace(requestedName)
	if base != "" {
		return Token() + "_" + Sanitize(base), nil
	}

	derived := BaseFromPath(sourcePath)
	if derived == "" || derived == "." || derived == "/" {
		return "", ErrNoBaseName
	}
	return Token() + "_" + derived, nil
}
