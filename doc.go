// Package apk provides read-only, integrity-checked access to the contents
// of an Android application package.
//
// An APK is a ZIP container holding DEX bytecode, resources, and signing
// metadata. [Open] indexes the container once from a fully buffered input;
// the resulting [Archive] answers name lookups, returns decompressed entry
// content, and validates each entry's declared CRC-32 against its content.
//
// # Quick Start
//
//	raw, err := os.ReadFile("app.apk")
//	if err != nil {
//	    return err
//	}
//	a, err := apk.Open(raw, apk.WithLogger(slog.Default()))
//	if err != nil {
//	    return err // errors.Is(err, apk.ErrMalformedContainer)
//	}
//	for name := range a.DexNames() {
//	    fmt.Println(name)
//	}
//
// # Integrity
//
// A checksum mismatch is not an error: [Archive.Checksum] returns the CRC-32
// computed from the content and reports the disagreement once, through the
// archive logger and the [WithMismatchHandler] callback. Each entry is
// checksummed at most once per Archive, even under concurrent access.
//
// # Dex classification
//
// Primary dex entries follow the root-level classes.dex, classes2.dex, ...
// convention. [Archive.DexNames] enumerates only those, while
// [Archive.IsMultiDex] also counts matching entries nested in directories.
//
// An Archive is safe for concurrent use once Open returns.
package apk
