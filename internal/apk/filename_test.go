package apk

import "testing"

func TestGenerateFilename_Deterministic(t *testing.T) {
	first := GenerateFilename(APKTypePogo, APKArchArm64V8a, "0.243.0", MimetypeAPK)
	second := GenerateFilename(APKTypePogo, APKArchArm64V8a, "0.243.0", MimetypeAPK)
	if first != second {
		t.Fatalf("expected deterministic filename, got %q and %q", first, second)
	}
	if first != "pogo__arm64-v8a__0.243.0.apk" {
		t.Fatalf("unexpected filename %q", first)
	}
}

func TestGenerateFilename_UnknownMimetype(t *testing.T) {
	name := GenerateFilename(APKTypeRGC, APKArchNoarch, "1.0", "application/x-something")
	if name != "rgc__noarch__1.0.bin" {
		t.Fatalf("unexpected filename %q", name)
	}
}

func TestParseFilename_RoundTrip(t *testing.T) {
	cases := []struct {
		usage    APKType
		arch     APKArch
		version  string
		mimetype string
	}{
		{APKTypePogo, APKArchArm64V8a, "0.243.0", MimetypeAPK},
		{APKTypeRGC, APKArchNoarch, "2.0.1", "application/zip"},
		{APKTypePogodroid, APKArchArmeabiV7a, "1.0", MimetypeAPK},
	}

	for _, tc := range cases {
		name := GenerateFilename(tc.usage, tc.arch, tc.version, tc.mimetype)
		usage, arch, version, mimetype, err := ParseFilename(name)
		if err != nil {
			t.Fatalf("parse %q: %v", name, err)
		}
		if usage != tc.usage || arch != tc.arch || version != tc.version || mimetype != tc.mimetype {
			t.Fatalf("parse %q = (%v %v %q %q), want (%v %v %q %q)",
				name, usage, arch, version, mimetype, tc.usage, tc.arch, tc.version, tc.mimetype)
		}
	}
}

func TestParseFilename_Rejects(t *testing.T) {
	for _, name := range []string{
		"notapackage.apk",
		"pogo__arm64-v8a.apk",
		"bogus__arm64-v8a__1.0.apk",
		"pogo__mips__1.0.apk",
	} {
		if _, _, _, _, err := ParseFilename(name); err == nil {
			t.Fatalf("expected error for %q", name)
		}
	}
}
