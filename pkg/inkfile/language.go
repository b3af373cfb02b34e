// SPDX-License-Identifier: MPL-2.0

package inkfile

import "strings"

// reservedLanguages maps language tags to the only platform able to run them.
var reservedLanguages = map[string]string{
	"cmd":         "windows",
	"bat":         "windows",
	"batch":       "windows",
	"applescript": "darwin",
	"osascript":   "darwin",
}

// LanguageSupported reports whether scripts tagged lang can run on goos.
// Tags not tied to a platform are always supported.
func LanguageSupported(lang, goos string) bool {
	platform, reserved := reservedLanguages[strings.ToLower(lang)]
	return !reserved || platform == goos
}
