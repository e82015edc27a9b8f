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

	"github.com/aretw0/ruleflow/pkg/domain"
	"github.com/aretw0/ruleflow/pkg/ports"
)

// EnvelopeNodeID and EnvelopeNodeType mark the single node that carries
// an encrypted workflow inside its metadata.
const (
	EnvelopeNodeID   = "__encrypted__"
	EnvelopeNodeType = "encrypted"
	ciphertextKey    = "ciphertext"
)

// ErrNotEncrypted is returned when a stored workflow is not an encryption envelope.
var ErrNotEncrypted = errors.New("workflow is missing encrypted data envelope")

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	// This enables zero-downtime key rotation.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	next   ports.WorkflowStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that encrypts workflow definitions
// at rest using AES-GCM. The id, name, status and update time stay readable.
func NewEncryptionMiddleware(config EncryptionConfig) (Middleware, error) {
	if len(config.ActiveKey) != 32 {
		return nil, errors.New("active key must be 32 bytes (AES-256)")
	}
	for i, k := range config.FallbackKeys {
		if len(k) != 32 {
			return nil, fmt.Errorf("fallback key %d must be 32 bytes (AES-256)", i)
		}
	}
	return func(next ports.WorkflowStore) ports.WorkflowStore {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}, nil
}

func (m *encryptionMiddleware) Save(ctx context.Context, wf *domain.Workflow) error {
	// 1. Serialize the real definition
	plainText, err := json.Marshal(wf)
	if err != nil {
		return fmt.Errorf("failed to marshal workflow: %w", err)
	}

	// 2. Encrypt
	ciphertext, err := encrypt(plainText, m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt workflow: %w", err)
	}

	// 3. Create envelope
	envelope := &domain.Workflow{
		ID:        wf.ID,
		Name:      wf.Name,
		Status:    wf.Status,
		UpdatedAt: wf.UpdatedAt,
		Nodes: []domain.WorkflowNode{{
			ID:       EnvelopeNodeID,
			Type:     EnvelopeNodeType,
			Metadata: map[string]string{ciphertextKey: base64.StdEncoding.EncodeToString(ciphertext)},
		}},
		Edges: []domain.WorkflowEdge{},
	}

	return m.next.Save(ctx, envelope)
}

func (m *encryptionMiddleware) Load(ctx context.Context, id string) (*domain.Workflow, error) {
	// 1. Load envelope
	envelope, err := m.next.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	// 2. Extract ciphertext
	if len(envelope.Nodes) != 1 || envelope.Nodes[0].ID != EnvelopeNodeID {
		// Fail secure: a plain definition in an encrypted store is not trusted.
		return nil, fmt.Errorf("%w: %s", ErrNotEncrypted, id)
	}
	encoded, ok := envelope.Nodes[0].Metadata[ciphertextKey]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotEncrypted, id)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}

	// 3. Decrypt (Try Active, then Fallback)
	plainText, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt workflow %s: %w", id, err)
	}

	// 4. Deserialize
	var wf domain.Workflow
	if err := json.Unmarshal(plainText, &wf); err != nil {
		return nil, fmt.Errorf("failed to unmarshal decrypted workflow: %w", err)
	}

	return &wf, nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

// Helpers

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
