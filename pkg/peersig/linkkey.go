package peersig

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// ConfirmationSize is the size in bytes of the tag DeriveKeySyncTag
// returns.
const ConfirmationSize = 32

// DeriveKeySyncTag derives a confirmation tag over the peer ACL's link
// key, used to gate "key-sync complete" between the two earbuds before
// either side trusts peer-signalling traffic. localAddr/peerAddr bind
// the tag to the ordered pair of Bluetooth addresses so a tag computed
// by one side is reproducible only by the matching peer.
//
// Follows a SPAKE2+-style key schedule: run a shared secret and
// identity context through HKDF-SHA256 to produce fixed-size subkeys.
// Here the "password" is the already-paired link key and there is a
// single derived output rather than a w0/w1 pair.
func DeriveKeySyncTag(linkKey, localAddr, peerAddr []byte) ([]byte, error) {
	context := append(append([]byte{}, localAddr...), peerAddr...)
	reader := hkdf.New(sha256.New, linkKey, context, []byte("tws-earbud-core peer key-sync"))

	tag := make([]byte, ConfirmationSize)
	if _, err := io.ReadFull(reader, tag); err != nil {
		return nil, fmt.Errorf("peersig: derive key-sync tag: %w", err)
	}
	return tag, nil
}
