package types

import (
	"github.com/fewzfewz/scratchBlockchain/codec"
	"golang.org/x/crypto/ed25519"
)

// edPrivateKey names the signing key type without forcing every file in this
// package to import golang.org/x/crypto/ed25519 directly.
type edPrivateKey = ed25519.PrivateKey

func codecEncode(obj codec.Object) ([]byte, error) { return codec.Encode(obj) }

func codecDecode(data []byte, obj codec.Object) error { return codec.Decode(data, obj) }
