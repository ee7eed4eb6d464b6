// Package codec implements the bijective, line-oriented ASCII encodings for public keys and
// signed messages (C7): a single-line format for PublicKey, and a fixed multi-line format for
// message.SignedMessage, both meant to survive being pasted through arbitrary text channels.
package codec

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/benwr/zebrasign/canon"
	"github.com/benwr/zebrasign/internal/z85"
	"github.com/benwr/zebrasign/keys"
	"github.com/benwr/zebrasign/message"
	"github.com/benwr/zebrasign/zerrors"
)

// publicKeyPattern anchors the single-line PublicKey format. name is greedy; email is
// constrained to printable-non-whitespace bytes with no angle brackets, so the split is
// unambiguous when read from the fixed anchors at the right.
var publicKeyPattern = regexp.MustCompile(`^\[([^\n]*) <([!-~]*)> <ZebraSign 1\.0 Beta> ([0-9A-F]{64}) ([0-9A-F]{200})\]$`)

// FormatPublicKey renders pub in the single-line ASCII format.
func FormatPublicKey(pub keys.PublicKey) string {
	kb := pub.Keypoint.Compress()
	keypointHex := strings.ToUpper(hex.EncodeToString(kb[:]))

	w := canon.NewWriter()
	pub.Attestation.WriteCanonical(w)
	attestationHex := strings.ToUpper(hex.EncodeToString(w.Bytes()))

	return fmt.Sprintf("[%s <%s> <%s> %s %s]", pub.Holder.Name(), pub.Holder.Email(), pub.Version.String(), keypointHex, attestationHex)
}

// ParsePublicKey parses text produced by FormatPublicKey. It re-validates the self-attestation
// and fails with ErrInvalidAttestation if it does not hold, even if the text is structurally
// well-formed.
func ParsePublicKey(text string) (keys.PublicKey, error) {
	m := publicKeyPattern.FindStringSubmatch(text)
	if m == nil {
		return keys.PublicKey{}, fmt.Errorf("%w: public key does not match the expected format", zerrors.ErrSignatureParse)
	}
	name, email, keypointHex, attestationHex := m[1], m[2], m[3], m[4]

	keypointBytes, err := hex.DecodeString(keypointHex)
	if err != nil {
		return keys.PublicKey{}, fmt.Errorf("%w: keypoint hex: %v", zerrors.ErrSignatureParse, err)
	}
	attestationBytes, err := hex.DecodeString(attestationHex)
	if err != nil {
		return keys.PublicKey{}, fmt.Errorf("%w: attestation hex: %v", zerrors.ErrSignatureParse, err)
	}

	canonBuf := canon.NewWriter()
	canonBuf.WriteString("ZebraSign 1.0 Beta")
	canonBuf.WriteString(name)
	canonBuf.WriteString(email)
	canonBuf.WriteFixed(keypointBytes)
	canonBuf.WriteFixed(attestationBytes)

	r := canon.NewReader(canonBuf.Bytes())
	pub, err := keys.ReadPublicKey(r)
	if err != nil {
		return keys.PublicKey{}, err
	}
	if !pub.ValidateAttestation() {
		return keys.PublicKey{}, fmt.Errorf("%w: self-attestation did not verify", zerrors.ErrInvalidAttestation)
	}
	return pub, nil
}

const (
	headerLine = "The following message has been signed using ZebraSign 1.0 Beta:"
	tripleQuote = `"""`
	introLine   = "It was signed by someone with a private key corresponding to one of these fingerprints:"
	helpLine    = `To verify this signature, paste this entire message into the ZebraSign app (starting with "The following message" and ending with this line).`
)

// identityLine renders the fixed "{name} <{email}> {fingerprint}" line for one ring member.
func identityLine(pub keys.PublicKey) string {
	return fmt.Sprintf("%s <%s> %s", pub.Holder.Name(), pub.Holder.Email(), pub.Fingerprint())
}

// FormatSignedMessage renders sm in the fixed multi-line ASCII format.
func FormatSignedMessage(sm message.SignedMessage) string {
	var lines []string
	lines = append(lines, headerLine, tripleQuote)
	lines = append(lines, strings.Split(sm.Message, "\n")...)
	lines = append(lines, tripleQuote, "", introLine, "")
	for _, m := range sm.Ring {
		lines = append(lines, identityLine(m.PublicKey))
	}

	w := canon.NewWriter()
	sm.WritePayloadCanonical(w)
	z85Blob := z85.Encode(w.Bytes())

	lines = append(lines, "", z85Blob, "", helpLine)
	return strings.Join(lines, "\n")
}

// ParseSignedMessage parses text produced by FormatSignedMessage. It verifies every ring
// member's identity line against its public key and fingerprint, but does not itself check
// cryptographic validity: callers must call SignedMessage.Verify() afterward.
func ParseSignedMessage(text string) (message.SignedMessage, error) {
	lines := strings.Split(text, "\n")
	if len(lines) < 12 {
		return message.SignedMessage{}, fmt.Errorf("%w: too few lines", zerrors.ErrSignatureParse)
	}
	if lines[0] != headerLine {
		return message.SignedMessage{}, fmt.Errorf("%w: missing header line", zerrors.ErrSignatureParse)
	}
	if lines[1] != tripleQuote {
		return message.SignedMessage{}, fmt.Errorf("%w: missing opening triple-quote", zerrors.ErrSignatureParse)
	}
	t := len(lines)
	if lines[t-1] != helpLine {
		return message.SignedMessage{}, fmt.Errorf("%w: missing trailing help line", zerrors.ErrSignatureParse)
	}
	if lines[t-2] != "" {
		return message.SignedMessage{}, fmt.Errorf("%w: missing blank line before help text", zerrors.ErrSignatureParse)
	}
	if lines[t-4] != "" {
		return message.SignedMessage{}, fmt.Errorf("%w: missing blank line before Z85 block", zerrors.ErrSignatureParse)
	}

	payload, err := z85.Decode(lines[t-3])
	if err != nil {
		return message.SignedMessage{}, fmt.Errorf("%w: Z85 block: %v", zerrors.ErrSignatureParse, err)
	}
	r := canon.NewReader(payload)
	sm, err := message.ReadPayloadCanonical(r, "")
	if err != nil {
		return message.SignedMessage{}, err
	}
	n := len(sm.Ring)

	closingQuoteIdx := t - (n + 8)
	if closingQuoteIdx < 2 || lines[closingQuoteIdx] != tripleQuote {
		return message.SignedMessage{}, fmt.Errorf("%w: missing closing triple-quote", zerrors.ErrSignatureParse)
	}
	if lines[t-(n+7)] != "" {
		return message.SignedMessage{}, fmt.Errorf("%w: missing blank line after message body", zerrors.ErrSignatureParse)
	}
	if lines[t-(n+6)] != introLine {
		return message.SignedMessage{}, fmt.Errorf("%w: missing fingerprint intro line", zerrors.ErrSignatureParse)
	}
	if lines[t-(n+5)] != "" {
		return message.SignedMessage{}, fmt.Errorf("%w: missing blank line before identity lines", zerrors.ErrSignatureParse)
	}

	identityStart := t - (n + 4)
	for i := 0; i < n; i++ {
		want := identityLine(sm.Ring[i].PublicKey)
		got := lines[identityStart+i]
		if got != want {
			return message.SignedMessage{}, fmt.Errorf("%w: identity line %d does not match the disclosed public key", zerrors.ErrSignatureParse, i)
		}
	}

	sm.Message = strings.Join(lines[2:closingQuoteIdx], "\n")
	return sm, nil
}
