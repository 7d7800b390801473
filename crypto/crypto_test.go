package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	pub, priv, err := GenerateKeypair()
	require.NoError(t, err)

	msg := []byte("prevote slot=5 round=0")
	sig, err := Sign(priv, msg)
	require.NoError(t, err)
	require.True(t, Verify(pub, msg, sig), "signature must verify against its own message")
}

func TestVerifyRejectsTamperedMessage(t *testing.T) {
	pub, priv, err := GenerateKeypair()
	require.NoError(t, err)

	msg := []byte("precommit slot=5 round=0")
	sig, err := Sign(priv, msg)
	require.NoError(t, err)

	tampered := append([]byte{}, msg...)
	tampered[0] ^= 0x01
	require.False(t, Verify(pub, tampered, sig), "flipping a message bit must invalidate the signature")
}

func TestVerifyRejectsTamperedSignature(t *testing.T) {
	pub, priv, err := GenerateKeypair()
	require.NoError(t, err)

	msg := []byte("propose slot=5 round=0")
	sig, err := Sign(priv, msg)
	require.NoError(t, err)

	sig[0] ^= 0x01
	require.False(t, Verify(pub, msg, sig), "flipping a signature bit must invalidate it")
}

func TestAddressFromPublicKeyIsDeterministic(t *testing.T) {
	pub, _, err := GenerateKeypair()
	require.NoError(t, err)

	a1 := AddressFromPublicKey(pub)
	a2 := AddressFromPublicKey(pub)
	require.Equal(t, a1, a2)
}

func TestKeccak256Hash(t *testing.T) {
	h1 := Hash([]byte("block-header-bytes"))
	h2 := Hash([]byte("block-header-bytes"))
	require.Equal(t, h1, h2, "hashing must be deterministic")

	h3 := Hash([]byte("different-bytes"))
	require.NotEqual(t, h1, h3)
}
