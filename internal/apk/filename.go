package apk

import (
	"fmt"
	"strings"
)

// MimetypeAPK is the content type of Android package archives.
const MimetypeAPK = "application/vnd.android.package-archive"

var mimetypeExtensions = map[string]string{
	MimetypeAPK:        "apk",
	"application/zip":  "zip",
	"application/gzip": "gz",
}

var extensionMimetypes = func() map[string]string {
	inverted := make(map[string]string, len(mimetypeExtensions))
	for mimetype, ext := range mimetypeExtensions {
		inverted[ext] = mimetype
	}
	return inverted
}()

// GenerateFilename derives the canonical stored filename for a package.
// The scheme is <usage>__<arch>__<version>.<ext> and is stable: the same
// inputs always produce the same name, and ParseFilename inverts it.
func GenerateFilename(usage APKType, arch APKArch, version, mimetype string) string {
	ext, ok := mimetypeExtensions[mimetype]
	if !ok {
		ext = "bin"
	}
	return fmt.Sprintf("%s__%s__%s.%s", usage, arch, strings.TrimSpace(version), ext)
}

// ParseFilename recovers (usage, arch, version, mimetype) from a filename
// produced by GenerateFilename. The filesystem medium uses it to rebuild its
// index from a directory scan.
func ParseFilename(name string) (APKType, APKArch, string, string, error) {
	base := name
	ext := ""
	if idx := strings.LastIndex(base, "."); idx >= 0 {
		ext = base[idx+1:]
		base = base[:idx]
	}
	parts := strings.SplitN(base, "__", 3)
	if len(parts) != 3 {
		return 0, 0, "", "", fmt.Errorf("filename %q does not match <usage>__<arch>__<version>.<ext>", name)
	}

	usage, err := ParseType(parts[0])
	if err != nil {
		return 0, 0, "", "", fmt.Errorf("filename %q: %w", name, err)
	}
	arch, err := ParseArch(parts[1])
	if err != nil {
		return 0, 0, "", "", fmt.Errorf("filename %q: %w", name, err)
	}
	version := parts[2]
	if version == "" {
		return 0, 0, "", "", fmt.Errorf("filename %q has an empty version", name)
	}

	mimetype, ok := extensionMimetypes[ext]
	if !ok {
		mimetype = "application/octet-stream"
	}
	return usage, arch, version, mimetype, nil
}
