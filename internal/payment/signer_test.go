package payment

import (
	"crypto/des"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
)

// 24 zero bytes, base64-encoded.
const testSignKey = "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

func TestNewSigner_RejectsBadKeys(t *testing.T) {
	_, err := NewSigner("not base64!!!")
	assert.Error(t, err)

	_, err = NewSigner(base64.StdEncoding.EncodeToString([]byte("too short")))
	assert.Error(t, err)
}

func TestSign_IsDeterministic(t *testing.T) {
	signer, err := NewSigner(testSignKey)
	assert.NoError(t, err)

	first, err := signer.Sign("terminal-1", "4242", "50000")
	assert.NoError(t, err)
	second, err := signer.Sign("terminal-1", "4242", "50000")
	assert.NoError(t, err)

	assert.Equal(t, first, second)

	other, err := signer.Sign("terminal-1", "4243", "50000")
	assert.NoError(t, err)
	assert.NotEqual(t, first, other)
}

func TestSign_DecryptsToJoinedFields(t *testing.T) {
	signer, err := NewSigner(testSignKey)
	assert.NoError(t, err)

	signed, err := signer.Sign("terminal-1", "4242", "50000")
	assert.NoError(t, err)

	ciphertext, err := base64.StdEncoding.DecodeString(signed)
	assert.NoError(t, err)
	assert.Equal(t, 0, len(ciphertext)%des.BlockSize)

	key, _ := base64.StdEncoding.DecodeString(testSignKey)
	block, err := des.NewTripleDESCipher(key)
	assert.NoError(t, err)

	plaintext := make([]byte, len(ciphertext))
	for i := 0; i < len(ciphertext); i += block.BlockSize() {
		block.Decrypt(plaintext[i:i+block.BlockSize()], ciphertext[i:i+block.BlockSize()])
	}

	padding := int(plaintext[len(plaintext)-1])
	assert.GreaterOrEqual(t, padding, 1)
	assert.LessOrEqual(t, padding, block.BlockSize())

	assert.Equal(t, "terminal-1;4242;50000", string(plaintext[:len(plaintext)-padding]))
}

func TestSign_SingleFieldHasNoSeparator(t *testing.T) {
	signer, err := NewSigner(testSignKey)
	assert.NoError(t, err)

	signed, err := signer.Sign("just-a-token")
	assert.NoError(t, err)
	assert.NotEmpty(t, signed)
}
