package payment

import (
	"crypto/des"
	"encoding/base64"
	"fmt"
	"strings"
)

// Signer produces the gateway's SignData field: the request fields joined
// with ";" and encrypted with TripleDES in ECB mode under the pre-shared
// merchant key. The gateway mandates ECB, so the same input always yields
// the same signature.
type Signer struct {
	key []byte
}

// NewSigner takes the base64-encoded 24-byte TripleDES key issued by the
// gateway.
func NewSigner(encodedKey string) (*Signer, error) {
	key, err := base64.StdEncoding.DecodeString(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("invalid gateway sign key: %w", err)
	}
	if len(key) != 24 {
		return nil, fmt.Errorf("gateway sign key must be 24 bytes, got %d", len(key))
	}
	return &Signer{key: key}, nil
}

// Sign joins the fields with ";" and returns the base64 TripleDES-ECB
// ciphertext.
func (s *Signer) Sign(fields ...string) (string, error) {
	block, err := des.NewTripleDESCipher(s.key)
	if err != nil {
		return "", fmt.Errorf("create cipher: %w", err)
	}

	plaintext := pkcs7Pad([]byte(strings.Join(fields, ";")), block.BlockSize())
	ciphertext := make([]byte, len(plaintext))
	for i := 0; i < len(plaintext); i += block.BlockSize() {
		block.Encrypt(ciphertext[i:i+block.BlockSize()], plaintext[i:i+block.BlockSize()])
	}

	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+padding)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padding)
	}
	return padded
}
