// Package apk holds the domain types for versioned Android packages managed
// by MAD: the (usage, architecture) key space, per-package metadata, and the
// deterministic filename scheme shared by all storage media.
package apk

import (
	"fmt"
	"strings"
)

// APKType identifies which application a stored package belongs to.
// The integer values are persisted in the database and must not change.
type APKType int

const (
	APKTypePogo APKType = iota
	APKTypeRGC
	APKTypePogodroid
)

// APKArch identifies the device architecture a package is built for.
// The integer values are persisted in the database and must not change.
type APKArch int

const (
	APKArchNoarch APKArch = iota
	APKArchArmeabiV7a
	APKArchArm64V8a
)

var apkTypeNames = map[APKType]string{
	APKTypePogo:      "pogo",
	APKTypeRGC:       "rgc",
	APKTypePogodroid: "pogodroid",
}

var apkArchNames = map[APKArch]string{
	APKArchNoarch:     "noarch",
	APKArchArmeabiV7a: "armeabi-v7a",
	APKArchArm64V8a:   "arm64-v8a",
}

func (t APKType) String() string {
	if name, ok := apkTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("usage(%d)", int(t))
}

func (a APKArch) String() string {
	if name, ok := apkArchNames[a]; ok {
		return name
	}
	return fmt.Sprintf("arch(%d)", int(a))
}

// Valid reports whether the usage value is one of the known packages.
func (t APKType) Valid() bool {
	_, ok := apkTypeNames[t]
	return ok
}

// Valid reports whether the architecture value is known.
func (a APKArch) Valid() bool {
	_, ok := apkArchNames[a]
	return ok
}

// Types lists all known usages in stable order.
func Types() []APKType {
	return []APKType{APKTypePogo, APKTypeRGC, APKTypePogodroid}
}

// Archs lists all known architectures in stable order.
func Archs() []APKArch {
	return []APKArch{APKArchNoarch, APKArchArmeabiV7a, APKArchArm64V8a}
}

// ParseType resolves a usage name as accepted on the CLI.
func ParseType(raw string) (APKType, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	for value, name := range apkTypeNames {
		if name == normalized {
			return value, nil
		}
	}
	return 0, fmt.Errorf("unknown package usage %q", raw)
}

// ParseArch resolves an architecture name as accepted on the CLI.
func ParseArch(raw string) (APKArch, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	switch normalized {
	case "armeabi_v7a":
		normalized = "armeabi-v7a"
	case "arm64_v8a":
		normalized = "arm64-v8a"
	}
	for value, name := range apkArchNames {
		if name == normalized {
			return value, nil
		}
	}
	return 0, fmt.Errorf("unknown architecture %q", raw)
}
