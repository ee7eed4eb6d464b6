package store

import (
	"fmt"
	"sort"

	"github.com/benwr/zebrasign/canon"
	"github.com/benwr/zebrasign/keys"
	"github.com/benwr/zebrasign/zerrors"
)

// dbTagV0 is the discriminant for the sole current on-disk variant.
const dbTagV0 = 0

// VerificationInfo records whether a their-public-key entry has been asserted verified
// out-of-band, and if so, when.
type VerificationInfo struct {
	VerifiedUnixSeconds *int64
}

func (vi VerificationInfo) writeCanonical(w *canon.Writer) {
	if vi.VerifiedUnixSeconds == nil {
		w.WriteU8(0)
		return
	}
	w.WriteU8(1)
	w.WriteI64(*vi.VerifiedUnixSeconds)
}

func readVerificationInfo(r *canon.Reader) (VerificationInfo, error) {
	tag, err := r.ReadU8()
	if err != nil {
		return VerificationInfo{}, fmt.Errorf("%w: verification tag: %v", zerrors.ErrCorruptedDatabase, err)
	}
	switch tag {
	case 0:
		return VerificationInfo{}, nil
	case 1:
		seconds, err := r.ReadI64()
		if err != nil {
			return VerificationInfo{}, fmt.Errorf("%w: verification timestamp: %v", zerrors.ErrCorruptedDatabase, err)
		}
		return VerificationInfo{VerifiedUnixSeconds: &seconds}, nil
	default:
		return VerificationInfo{}, fmt.Errorf("%w: unknown verification tag %d", zerrors.ErrCorruptedDatabase, tag)
	}
}

// theirEntry pairs a disclosed public key with its verification state.
type theirEntry struct {
	PublicKey    keys.PublicKey
	Verification VerificationInfo
}

// contentsV0 is the fully decrypted, in-memory database contents: every private key the user
// holds, and every other public key the user has recorded, keyed by compressed keypoint bytes
// for uniqueness and deterministic serialization.
type contentsV0 struct {
	PrivateKeys map[[32]byte]keys.PrivateKey
	PublicKeys  map[[32]byte]theirEntry
}

func emptyContents() contentsV0 {
	return contentsV0{
		PrivateKeys: make(map[[32]byte]keys.PrivateKey),
		PublicKeys:  make(map[[32]byte]theirEntry),
	}
}

func sortedKeys(m map[[32]byte]keys.PrivateKey) [][32]byte {
	out := make([][32]byte, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return string(out[i][:]) < string(out[j][:]) })
	return out
}

func sortedTheirKeys(m map[[32]byte]theirEntry) [][32]byte {
	out := make([][32]byte, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return string(out[i][:]) < string(out[j][:]) })
	return out
}

// writeCanonical serializes the whole DbOnDisk union: a version tag byte followed by the V0
// payload, two maps each as a u32_le length followed by entries sorted by key compressed bytes.
func (c contentsV0) writeCanonical(w *canon.Writer) {
	w.WriteU8(dbTagV0)

	privKeys := sortedKeys(c.PrivateKeys)
	w.WriteU32(uint32(len(privKeys)))
	for _, k := range privKeys {
		c.PrivateKeys[k].WriteCanonical(w)
	}

	pubKeys := sortedTheirKeys(c.PublicKeys)
	w.WriteU32(uint32(len(pubKeys)))
	for _, k := range pubKeys {
		entry := c.PublicKeys[k]
		entry.PublicKey.WriteCanonical(w)
		entry.Verification.writeCanonical(w)
	}
}

// parseContentsV0 parses bytes written by contentsV0.writeCanonical.
func parseContentsV0(plaintext []byte) (contentsV0, error) {
	r := canon.NewReader(plaintext)
	tag, err := r.ReadU8()
	if err != nil {
		return contentsV0{}, fmt.Errorf("%w: version tag: %v", zerrors.ErrCorruptedDatabase, err)
	}
	if tag != dbTagV0 {
		return contentsV0{}, fmt.Errorf("%w: unsupported database version %d", zerrors.ErrCorruptedDatabase, tag)
	}

	nPriv, err := r.ReadU32()
	if err != nil {
		return contentsV0{}, fmt.Errorf("%w: private key count: %v", zerrors.ErrCorruptedDatabase, err)
	}
	privateKeys := make(map[[32]byte]keys.PrivateKey, nPriv)
	for i := uint32(0); i < nPriv; i++ {
		pk, err := keys.ReadPrivateKey(r)
		if err != nil {
			return contentsV0{}, fmt.Errorf("%w: private key %d: %v", zerrors.ErrCorruptedDatabase, i, err)
		}
		privateKeys[pk.Public().Keypoint.Compress()] = pk
	}

	nPub, err := r.ReadU32()
	if err != nil {
		return contentsV0{}, fmt.Errorf("%w: public key count: %v", zerrors.ErrCorruptedDatabase, err)
	}
	publicKeys := make(map[[32]byte]theirEntry, nPub)
	for i := uint32(0); i < nPub; i++ {
		pub, err := keys.ReadPublicKey(r)
		if err != nil {
			return contentsV0{}, fmt.Errorf("%w: public key %d: %v", zerrors.ErrCorruptedDatabase, i, err)
		}
		vi, err := readVerificationInfo(r)
		if err != nil {
			return contentsV0{}, err
		}
		publicKeys[pub.Keypoint.Compress()] = theirEntry{PublicKey: pub, Verification: vi}
	}

	if !r.AtEnd() {
		return contentsV0{}, fmt.Errorf("%w: trailing bytes after database contents", zerrors.ErrCorruptedDatabase)
	}

	return contentsV0{PrivateKeys: privateKeys, PublicKeys: publicKeys}, nil
}
