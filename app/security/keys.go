package security

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInsecureKeyFile = errors.New("private key file is accessible by group or others")

// KeyPair holds the RS256 keys. Private is nil on a verify-only instance.
type KeyPair struct {
	Private *rsa.PrivateKey
	Public  *rsa.PublicKey
}

// LoadKeyPair reads PEM encoded keys. An empty privatePath yields a verify-only pair.
func LoadKeyPair(privatePath, publicPath string) (*KeyPair, error) {
	pubPEM, err := os.ReadFile(publicPath)
	if err != nil {
		return nil, fmt.Errorf("read public key: %w", err)
	}
	public, err := jwt.ParseRSAPublicKeyFromPEM(pubPEM)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}

	pair := &KeyPair{Public: public}
	if privatePath == "" {
		return pair, nil
	}

	info, err := os.Stat(privatePath)
	if err != nil {
		return nil, fmt.Errorf("stat private key: %w", err)
	}
	if info.Mode().Perm()&0o077 != 0 {
		return nil, fmt.Errorf("%w: %s has mode %04o", ErrInsecureKeyFile, privatePath, info.Mode().Perm())
	}

	privPEM, err := os.ReadFile(privatePath)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}
	private, err := jwt.ParseRSAPrivateKeyFromPEM(privPEM)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	if !private.PublicKey.Equal(public) {
		return nil, errors.New("private and public key do not match")
	}

	pair.Private = private
	return pair, nil
}

func GenerateKeyPair(bits int) (*KeyPair, error) {
	private, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, err
	}
	return &KeyPair{Private: private, Public: &private.PublicKey}, nil
}

// WriteKeyPair stores the private key with mode 0600 and the public key with mode 0644.
func WriteKeyPair(pair *KeyPair, privatePath, publicPath string) error {
	if pair.Private == nil {
		return errors.New("key pair has no private key")
	}

	privBlock := &pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(pair.Private)}
	if err := writePEM(privatePath, privBlock, 0o600); err != nil {
		return fmt.Errorf("write private key: %w", err)
	}

	pubDER, err := x509.MarshalPKIXPublicKey(pair.Public)
	if err != nil {
		return err
	}
	if err := writePEM(publicPath, &pem.Block{Type: "PUBLIC KEY", Bytes: pubDER}, 0o644); err != nil {
		return fmt.Errorf("write public key: %w", err)
	}
	return nil
}

func writePEM(path string, block *pem.Block, mode os.FileMode) error {
	if err := os.WriteFile(path, pem.EncodeToMemory(block), mode); err != nil {
		return err
	}
	// umask may have narrowed or the file may have pre-existed with another mode
	return os.Chmod(path, mode)
}
