package libby

import (
	"encoding/base64"
	"fmt"
	"strings"
	"unicode/utf16"
)

// encodeName renders a tag name the way the Libby web app does for URL path
// segments: every UTF-16 code unit of the name formatted as %uXXXX (uppercase
// hex, minimum two digits), then the whole string base64-encoded. Tag names
// are usually emoji, so the surrogate pairs matter.
func encodeName(name string) string {
	units := utf16.Encode([]rune(name))
	var escaped strings.Builder
	escaped.Grow(len(units) * 6)
	for _, u := range units {
		fmt.Fprintf(&escaped, "%%u%02X", u)
	}
	return base64.StdEncoding.EncodeToString([]byte(escaped.String()))
}
