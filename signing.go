package apk

import "fmt"

// APK Signing Block identifiers.
//
// The signing block sits between the last entry and the central directory.
// These values only name its parts; this package does not parse or verify
// signatures.
const (
	// SigningBlockMagic terminates the APK Signing Block.
	SigningBlockMagic = "APK Sig Block 42"

	// SigningBlockV2ID identifies the APK Signature Scheme v2 block.
	SigningBlockV2ID uint32 = 0x7109871a

	// SigningBlockV3ID identifies the APK Signature Scheme v3 block.
	SigningBlockV3ID uint32 = 0xf05368c0

	// StrippingProtectionAttrID is the v2 signed attribute that guards
	// against stripping of newer signature schemes.
	StrippingProtectionAttrID uint32 = 0xbeeff00d
)

// SignatureAlgorithm identifies a signature algorithm used in v2/v3 signing blocks.
type SignatureAlgorithm uint32

// Signature algorithms defined by the APK Signature Scheme.
const (
	SigRSAPSSWithSHA256      SignatureAlgorithm = 0x0101
	SigRSAPSSWithSHA512      SignatureAlgorithm = 0x0102
	SigRSAPKCS1v15WithSHA256 SignatureAlgorithm = 0x0103
	SigRSAPKCS1v15WithSHA512 SignatureAlgorithm = 0x0104
	SigECDSAWithSHA256       SignatureAlgorithm = 0x0201
	SigECDSAWithSHA512       SignatureAlgorithm = 0x0202
	SigDSAWithSHA256         SignatureAlgorithm = 0x0301
)

var signatureAlgorithmNames = map[SignatureAlgorithm]string{
	SigRSAPSSWithSHA256:      "RSASSA-PSS with SHA2-256 digest, SHA2-256 MGF1, 32 bytes of salt, trailer: 0xbc",
	SigRSAPSSWithSHA512:      "RSASSA-PSS with SHA2-512 digest, SHA2-512 MGF1, 64 bytes of salt, trailer: 0xbc",
	SigRSAPKCS1v15WithSHA256: "RSASSA-PKCS1-v1_5 with SHA2-256 digest",
	SigRSAPKCS1v15WithSHA512: "RSASSA-PKCS1-v1_5 with SHA2-512 digest",
	SigECDSAWithSHA256:       "ECDSA with SHA2-256 digest",
	SigECDSAWithSHA512:       "ECDSA with SHA2-512 digest",
	SigDSAWithSHA256:         "DSA with SHA2-256 digest",
}

// Known reports whether s is a defined algorithm ID.
func (s SignatureAlgorithm) Known() bool {
	_, ok := signatureAlgorithmNames[s]
	return ok
}

// String returns the algorithm description.
func (s SignatureAlgorithm) String() string {
	if name, ok := signatureAlgorithmNames[s]; ok {
		return name
	}
	return fmt.Sprintf("unknown signature algorithm 0x%04x", uint32(s))
}
