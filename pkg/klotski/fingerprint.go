package klotski

import (
	"crypto/md5"
	"encoding/hex"
	"slices"
	"strconv"

	"github.com/matzehuels/klotskigraph/pkg/errors"
)

// FingerprintSize is the length of a fingerprint in bytes.
const FingerprintSize = md5.Size

// Fingerprint identifies a state by content. It is opaque and not reversible.
type Fingerprint [FingerprintSize]byte

// Policy selects what a fingerprint is computed over.
type Policy uint8

const (
	// PolicyGeometry hashes the sorted (x, y, width, height) tuples. Two
	// same-sized pieces in swapped positions yield the same fingerprint.
	PolicyGeometry Policy = iota

	// PolicyIdentity hashes the id-sorted (id, x, y, width, height) tuples.
	PolicyIdentity
)

func (p Policy) String() string {
	switch p {
	case PolicyGeometry:
		return "geometry"
	case PolicyIdentity:
		return "identity"
	}
	return "Policy(" + strconv.Itoa(int(p)) + ")"
}

// ParsePolicy converts a policy name.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "geometry":
		return PolicyGeometry, nil
	case "identity":
		return PolicyIdentity, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, "unknown identity policy %q (must be geometry or identity)", s)
}

// String returns the fingerprint as 32 lowercase hex characters.
func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

// IsZero reports whether f is the zero value.
func (f Fingerprint) IsZero() bool {
	return f == Fingerprint{}
}

// ParseFingerprint decodes a 32 character hex string.
func ParseFingerprint(s string) (Fingerprint, error) {
	var f Fingerprint
	if len(s) != 2*FingerprintSize {
		return f, errors.New(errors.ErrCodeInvalidInput, "fingerprint %q: want %d hex characters, got %d", s, 2*FingerprintSize, len(s))
	}
	if _, err := hex.Decode(f[:], []byte(s)); err != nil {
		return f, errors.Wrap(errors.ErrCodeInvalidInput, err, "fingerprint %q", s)
	}
	return f, nil
}

// MarshalText encodes the fingerprint as hex.
func (f Fingerprint) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText decodes a hex fingerprint.
func (f *Fingerprint) UnmarshalText(text []byte) error {
	parsed, err := ParseFingerprint(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// canonicalText renders the sorted geometry of pieces as a tuple literal,
// e.g. "((0, 0, 2, 2), (2, 0, 1, 2))". A single tuple keeps its trailing
// comma: "((0, 0, 1, 1),)". Graphs produced by earlier tooling used this
// exact text, so fingerprints stay comparable with them.
func canonicalText(pieces []Piece, policy Policy) []byte {
	rows := make([][]int, len(pieces))
	for i, p := range pieces {
		if policy == PolicyIdentity {
			rows[i] = []int{p.ID, p.X, p.Y, p.Width, p.Height}
		} else {
			rows[i] = []int{p.X, p.Y, p.Width, p.Height}
		}
	}
	slices.SortFunc(rows, func(a, b []int) int { return slices.Compare(a, b) })

	buf := make([]byte, 0, 2+len(rows)*16)
	buf = append(buf, '(')
	for i, row := range rows {
		if i > 0 {
			buf = append(buf, ", "...)
		}
		buf = append(buf, '(')
		for j, v := range row {
			if j > 0 {
				buf = append(buf, ", "...)
			}
			buf = strconv.AppendInt(buf, int64(v), 10)
		}
		buf = append(buf, ')')
	}
	if len(rows) == 1 {
		buf = append(buf, ',')
	}
	buf = append(buf, ')')
	return buf
}

func fingerprintOf(pieces []Piece, policy Policy) Fingerprint {
	return md5.Sum(canonicalText(pieces, policy))
}
