package jsonstore

import "strings"

// Suffix is the canonical extension appended to every stored blob name.
const Suffix = ".json"

// SanitizeFilename transforms a raw client-supplied filename into the safe
// on-disk name. The transform is deterministic and idempotent:
//
//  1. An exact trailing ".json" is set aside so that already-sanitized names
//     pass through unchanged.
//  2. Path separators ('/', '\\') and NUL are dropped.
//  3. A run of two or more consecutive dots is dropped entirely; a lone dot
//     becomes '_'. Separators and other dropped characters do not break a
//     run. No literal dot survives.
//  4. Only alphanumerics, '_' and '-' are kept; everything else is dropped.
//  5. Trailing '_' and '-' are trimmed.
//  6. The canonical suffix is appended.
//
// The empty string is returned when nothing survives the transform; callers
// must treat that as an invalid name. Traversal sequences cannot survive:
// "../../etc/passwd" sanitizes to "etcpasswd.json".
func SanitizeFilename(name string) string {
	name = strings.TrimSuffix(name, Suffix)

	stem := sanitizeName(name)
	if stem == "" {
		return ""
	}

	return stem + Suffix
}

// SanitizeKey applies the same character rules as SanitizeFilename without
// the suffix handling. Keys name namespace directories, not blob files, so
// no extension is involved. Namespace provisioning must use the sanitized
// form.
func SanitizeKey(key string) string {
	return sanitizeName(key)
}

func sanitizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	dots := 0
	flushDots := func() {
		if dots == 1 {
			b.WriteByte('_')
		}
		dots = 0
	}

	for _, r := range name {
		switch {
		case r == '/' || r == '\\' || r == 0:
			// Dropped without breaking a dot run, so ".." "/" ".." still
			// counts as one run of four.
		case r == '.':
			dots++
		case isNameChar(r):
			flushDots()
			b.WriteRune(r)
		default:
			flushDots()
		}
	}
	flushDots()

	return strings.TrimRight(b.String(), "_-")
}

func isNameChar(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9') || r == '_' || r == '-'
}
