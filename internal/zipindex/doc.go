// Package zipindex builds the entry index of an APK from its raw bytes.
//
// It is the structural parser behind the apk package: it locates the central
// directory, enumerates entries in on-disk order, and decodes entry bodies.
// Entry bodies are read raw and decoded here so that declared checksums are
// never enforced at this layer; checksum policy belongs to the caller.
package zipindex
