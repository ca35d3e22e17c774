package app

import (
	"context"
	"fmt"

	phiService "github.com/healthtracker/backend/internal/phi/service"
)

// KeyDeriver returns the PHI field key deriver.
//
// When KMS_KEY_URI is configured, the encryption secret from the environment
// is treated as a KMS-wrapped blob and unwrapped before derivation.
func (c *Container) KeyDeriver() (*phiService.KeyDeriver, error) {
	var err error
	c.keyDeriverInit.Do(func() {
		c.keyDeriver, err = c.initKeyDeriver()
		if err != nil {
			c.initErrors["keyDeriver"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyDeriver"]; exists {
		return nil, storedErr
	}
	return c.keyDeriver, nil
}

// FieldCipher returns the PHI field cipher.
func (c *Container) FieldCipher() (*phiService.FieldCipher, error) {
	var err error
	c.fieldCipherInit.Do(func() {
		c.fieldCipher, err = c.initFieldCipher()
		if err != nil {
			c.initErrors["fieldCipher"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["fieldCipher"]; exists {
		return nil, storedErr
	}
	return c.fieldCipher, nil
}

// initKeyDeriver creates the key deriver, unwrapping the encryption secret
// through KMS when configured.
func (c *Container) initKeyDeriver() (*phiService.KeyDeriver, error) {
	secret := c.config.EncryptionSecret

	if c.config.KMSKeyURI != "" {
		unwrapped, err := phiService.UnwrapSecret(
			context.Background(), c.config.KMSKeyURI, secret)
		if err != nil {
			return nil, fmt.Errorf("failed to unwrap encryption secret: %w", err)
		}
		secret = unwrapped
	}

	return phiService.NewKeyDeriver(
		secret,
		c.config.EncryptionSalt,
		c.config.EncryptionIterations,
	), nil
}

// initFieldCipher creates the field cipher backed by the key deriver.
func (c *Container) initFieldCipher() (*phiService.FieldCipher, error) {
	deriver, err := c.KeyDeriver()
	if err != nil {
		return nil, fmt.Errorf("failed to get key deriver for field cipher: %w", err)
	}
	return phiService.NewFieldCipher(deriver), nil
}
