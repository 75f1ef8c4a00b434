package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/flowedit/pkg/document"
	"github.com/aretw0/flowedit/pkg/ports"
)

// envelopeKey is the only environment entry a sealed document carries.
const envelopeKey = "__encrypted__"

// KeySize is the AES-256 key length in bytes.
const KeySize = 32

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey seals every saved document.
	ActiveKey []byte

	// FallbackKeys are tried in order when the active key cannot open a
	// document, so keys can be rotated without rewriting the store first.
	FallbackKeys [][]byte
}

// ParseKeys decodes base64 keys into an EncryptionConfig.
func ParseKeys(active string, fallbacks ...string) (EncryptionConfig, error) {
	var cfg EncryptionConfig
	key, err := decodeKey(active)
	if err != nil {
		return cfg, fmt.Errorf("active key: %w", err)
	}
	cfg.ActiveKey = key
	for i, f := range fallbacks {
		key, err := decodeKey(f)
		if err != nil {
			return cfg, fmt.Errorf("fallback key %d: %w", i, err)
		}
		cfg.FallbackKeys = append(cfg.FallbackKeys, key)
	}
	return cfg, nil
}

func decodeKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid base64: %w", err)
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("key must be %d bytes, got %d", KeySize, len(key))
	}
	return key, nil
}

type encryptionMiddleware struct {
	next   ports.DocumentStore
	config EncryptionConfig
}

// NewEncryptionMiddleware seals the environment table of every document with
// AES-GCM before it reaches the backend. Nodes stay readable so stored flows
// can still be inspected; environment values are where credentials live.
func NewEncryptionMiddleware(config EncryptionConfig) (Middleware, error) {
	if len(config.ActiveKey) != KeySize {
		return nil, fmt.Errorf("active key must be %d bytes (AES-256)", KeySize)
	}
	for i, k := range config.FallbackKeys {
		if len(k) != KeySize {
			return nil, fmt.Errorf("fallback key %d must be %d bytes", i, KeySize)
		}
	}
	return func(next ports.DocumentStore) ports.DocumentStore {
		return &encryptionMiddleware{next: next, config: config}
	}, nil
}

func (m *encryptionMiddleware) Save(ctx context.Context, name string, doc document.Document) error {
	env := doc.Environments
	if env == nil {
		env = map[string]any{}
	}
	plainText, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal environments: %w", err)
	}

	ciphertext, err := encrypt(plainText, m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt environments: %w", err)
	}

	sealed := document.Document{
		Environments: map[string]any{envelopeKey: base64.StdEncoding.EncodeToString(ciphertext)},
		Nodes:        doc.Nodes,
	}
	return m.next.Save(ctx, name, sealed)
}

func (m *encryptionMiddleware) Load(ctx context.Context, name string) (document.Document, error) {
	sealed, err := m.next.Load(ctx, name)
	if err != nil {
		return document.Document{}, err
	}

	// A document without an envelope was written without encryption. Refuse it
	// rather than hand back data the caller believes was protected.
	encoded, ok := sealed.Environments[envelopeKey].(string)
	if !ok || len(sealed.Environments) != 1 {
		return document.Document{}, fmt.Errorf("document %q is missing its encrypted environments", name)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return document.Document{}, fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}

	plainText, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return document.Document{}, fmt.Errorf("failed to decrypt document %q: %w", name, err)
	}

	env := map[string]any{}
	if err := json.Unmarshal(plainText, &env); err != nil {
		return document.Document{}, fmt.Errorf("failed to unmarshal environments: %w", err)
	}
	return document.Document{Environments: env, Nodes: sealed.Nodes}, nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, name string) error {
	return m.next.Delete(ctx, name)
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}
	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}
	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce := ciphertext[:gcm.NonceSize()]
	return gcm.Open(nil, nonce, ciphertext[gcm.NonceSize():], nil)
}
