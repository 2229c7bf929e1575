package service

import (
	"crypto/rand"
	"fmt"
	"path"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

const keyAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// SanitizeFilename NFC-normalises name, replaces every rune outside ASCII
// word characters, Hangul syllables, '.' and '-' with '_' and collapses runs
// of '_'. Directory components are dropped.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)
	name = norm.NFC.String(name)

	var b strings.Builder
	b.Grow(len(name))
	lastUnderscore := false
	for _, r := range name {
		if !allowedFilenameRune(r) {
			r = '_'
		}
		if r == '_' {
			if lastUnderscore {
				continue
			}
			lastUnderscore = true
		} else {
			lastUnderscore = false
		}
		b.WriteRune(r)
	}

	out := b.String()
	if out == "" || out == "." || out == ".." || out == "_" {
		return "file"
	}
	return out
}

func allowedFilenameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_' || r == '.' || r == '-':
		return true
	case r >= 0xAC00 && r <= 0xD7A3:
		return true
	}
	return false
}

// fileExtension returns the lowercased extension without the dot.
func fileExtension(name string) string {
	return strings.TrimPrefix(strings.ToLower(path.Ext(name)), ".")
}

// objectKey builds "<unix-millis>-<random>-<sanitised name>".
func objectKey(now time.Time, name string) (string, error) {
	suffix, err := randomToken(6)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d-%s-%s", now.UnixMilli(), suffix, SanitizeFilename(name)), nil
}

func randomToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate object key: %w", err)
	}
	for i, v := range buf {
		buf[i] = keyAlphabet[int(v)%len(keyAlphabet)]
	}
	return string(buf), nil
}
