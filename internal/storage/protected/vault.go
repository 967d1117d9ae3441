package protected

import (
	"context"
	"errors"
	"fmt"
	"github.com/hashicorp/vault-client-go"
	"github.com/hashicorp/vault-client-go/schema"
	"log/slog"
	"todosome/internal/config"
	"todosome/internal/lib/extensions"
)

var ErrSecretNotFound = errors.New("secret not found in vault")

// Vault is a client instance to Hashicorp Vault secure storage for storing secrets
type Vault struct {
	Client *vault.Client
	conf   config.VaultConfig
	log    *slog.Logger
}

// NewVaultClient creates new instance of Vault client and sets static token if it's configured
func NewVaultClient(log *slog.Logger, conf config.VaultConfig) (*Vault, error) {
	const op = "protected.NewVaultClient"

	client, err := vault.New(
		vault.WithAddress(conf.Address),
		vault.WithRequestTimeout(conf.Timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: error while creating new vault client instance: %w", op, err)
	}
	if conf.Token != "" {
		if err = client.SetToken(conf.Token); err != nil {
			return nil, fmt.Errorf("%s: error while setting token: %w", op, err)
		}
	}
	return &Vault{Client: client, conf: conf, log: log}, nil
}

// AuthUser authenticated service-user as Vault client by AppRole
//
// Skipped when role_id or secret_id files are absent, static token is used then
func (v *Vault) AuthUser(ctx context.Context) error {
	const op = "protected.AuthUser"
	logger := v.log.With(slog.String("op", op))

	roleID := extensions.GetTextFromFile(v.conf.RoleIDPath)
	secretID := extensions.GetTextFromFile(v.conf.SecretIDPath)
	if roleID == "" || secretID == "" {
		logger.Debug("approle credentials not found, using static token")
		return nil
	}

	resp, err := v.Client.Auth.AppRoleLogin(
		ctx,
		schema.AppRoleLoginRequest{
			RoleId:   roleID,
			SecretId: secretID,
		})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = v.Client.SetToken(resp.Auth.ClientToken); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	logger.Info("vault approle login succeeded", slog.Int("lease_duration", resp.Auth.LeaseDuration))
	return nil
}

// JWTSecret reads HMAC secret for session tokens from KV v2 engine
func (v *Vault) JWTSecret(ctx context.Context) (string, error) {
	const op = "protected.JWTSecret"

	resp, err := v.Client.Secrets.KvV2Read(ctx, v.conf.SecretPath, vault.WithMountPath(v.conf.MountPath))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	raw, ok := resp.Data.Data[v.conf.SecretKey]
	if !ok {
		return "", fmt.Errorf("%s: %w", op, ErrSecretNotFound)
	}
	secret, ok := raw.(string)
	if !ok || secret == "" {
		return "", fmt.Errorf("%s: %w", op, ErrSecretNotFound)
	}
	return secret, nil
}
