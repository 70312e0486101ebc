package codec

import (
	"encoding/hex"
	"fmt"
)

// sigSample is the number of bytes sampled from each end of the blob when
// building a signature.
const sigSample = 64

// Signature returns a cheap fingerprint of an encoded image blob, built
// from its length plus fixed-size prefix and suffix samples.
//
// It is not a cryptographic hash and is collision-tolerant by design: it
// only gates whether an autosave restore is offered, so a collision costs
// the user one declined restore prompt, never data. Byte-identical blobs
// always produce identical signatures; blobs differing in length, or in
// any byte inside the sampled windows, produce different signatures.
func Signature(blob []byte) string {
	n := len(blob)
	if n <= 2*sigSample {
		return fmt.Sprintf("%d:%s", n, hex.EncodeToString(blob))
	}
	return fmt.Sprintf("%d:%s:%s",
		n,
		hex.EncodeToString(blob[:sigSample]),
		hex.EncodeToString(blob[n-sigSample:]))
}
