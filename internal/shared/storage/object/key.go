package object

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"path"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// maxNameRunes bounds the file-name part of a key.
const maxNameRunes = 120

// ErrInvalidName is returned by NewKey for names that cannot be stored.
var ErrInvalidName = errors.New("invalid file name")

// NewKey builds "<owner digest>/<uuid>_<clean name>". Owners are hashed so
// guest ids and e-mail subjects never appear in object paths.
func NewKey(owner, fileName string) (string, error) {
	name, err := cleanName(fileName)
	if err != nil {
		return "", err
	}
	return path.Join(ownerDir(owner), uuid.NewString()+"_"+name), nil
}

// ValidKey rejects absolute keys and keys escaping the store root.
func ValidKey(key string) bool {
	clean := path.Clean(strings.ReplaceAll(key, "\\", "/"))
	return key != "" && clean != "." && !strings.HasPrefix(clean, "..") && !path.IsAbs(clean)
}

func ownerDir(owner string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(owner)))
	return hex.EncodeToString(sum[:16])
}

// cleanName flattens separators, drops control characters and shortens long
// names while keeping the extension the extractor dispatches on.
func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.Contains(name, "..") {
		return "", ErrInvalidName
	}
	name = strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\':
			return '_'
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, name)

	runes := []rune(name)
	if len(runes) > maxNameRunes {
		ext := []rune(path.Ext(name))
		if len(ext) >= maxNameRunes {
			ext = nil
		}
		runes = append(runes[:maxNameRunes-len(ext)], ext...)
	}
	if strings.TrimSpace(string(runes)) == "" {
		return "", ErrInvalidName
	}
	return string(runes), nil
}
