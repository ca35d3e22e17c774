package service

import (
	"context"
	"encoding/base64"
	"fmt"

	"gocloud.dev/secrets"

	// Register all KMS provider drivers
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// UnwrapSecret decrypts a KMS-wrapped encryption secret.
//
// When a deployment keeps the field encryption secret wrapped by a cloud KMS,
// the environment carries base64 ciphertext instead of the raw secret. This
// opens a secrets.Keeper for the given key URI (gcpkms://, awskms://,
// azurekeyvault://, hashivault://, base64key://) and unwraps the secret once
// at startup.
func UnwrapSecret(ctx context.Context, keyURI, wrapped string) (string, error) {
	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return "", fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	defer func() { _ = keeper.Close() }()

	blob, err := base64.StdEncoding.DecodeString(wrapped)
	if err != nil {
		return "", fmt.Errorf("wrapped secret is not valid base64: %w", err)
	}

	plaintext, err := keeper.Decrypt(ctx, blob)
	if err != nil {
		return "", fmt.Errorf("failed to unwrap encryption secret: %w", err)
	}

	return string(plaintext), nil
}
