package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/shutterbook/simulator/internal/core/auth"
	"github.com/shutterbook/simulator/internal/core/config"
	"github.com/shutterbook/simulator/internal/core/db"
	"github.com/shutterbook/simulator/internal/core/store"
)

var (
	apiKeyShopID   int64
	apiKeyName     string
	apiKeySecretID string
)

var apiKeyCmd = &cobra.Command{
	Use:   "apikey",
	Short: "Manage admin API keys",
}

var apiKeyCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Mint an API key for a shop",
	Long: `Mint an API key for a shop. The key is printed once; only its HMAC hash is stored.
The key is bound to an SB_HMAC_SECRET* secret, selected with --secret-id when several are configured.`,
	RunE: runAPIKeyCreate,
}

var apiKeyRevokeCmd = &cobra.Command{
	Use:   "revoke <api-key-id>",
	Short: "Revoke an API key",
	Args:  cobra.ExactArgs(1),
	RunE:  runAPIKeyRevoke,
}

func init() {
	rootCmd.AddCommand(apiKeyCmd)
	apiKeyCmd.AddCommand(apiKeyCreateCmd)
	apiKeyCmd.AddCommand(apiKeyRevokeCmd)

	apiKeyCreateCmd.Flags().Int64Var(&apiKeyShopID, "shop", 0, "shop ID the key acts for")
	apiKeyCreateCmd.Flags().StringVar(&apiKeyName, "name", "", "label for the key")
	apiKeyCreateCmd.Flags().StringVar(&apiKeySecretID, "secret-id", "", "HMAC secret ID to bind the key to")
	_ = apiKeyCreateCmd.MarkFlagRequired("shop")
}

// pickSecret selects the HMAC secret a new key is bound to.
func pickSecret(secrets map[string][]byte, secretID string) (string, []byte, error) {
	if secretID != "" {
		secret, ok := secrets[secretID]
		if !ok {
			return "", nil, fmt.Errorf("secret ID %s not configured", secretID)
		}
		return secretID, secret, nil
	}

	switch len(secrets) {
	case 0:
		return "", nil, fmt.Errorf("no HMAC secrets configured (set SB_HMAC_SECRET environment variable)")
	case 1:
		for id, secret := range secrets {
			return id, secret, nil
		}
	}

	ids := make([]string, 0, len(secrets))
	for id := range secrets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return "", nil, fmt.Errorf("several HMAC secrets configured, choose one with --secret-id: %v", ids)
}

func runAPIKeyCreate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if apiKeyShopID <= 0 {
		return fmt.Errorf("--shop must be a positive shop ID")
	}

	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}
	logger := initLogger(cfg.Logging, cmd.ErrOrStderr())

	secrets, err := config.HMACSecrets()
	if err != nil {
		return fmt.Errorf("failed to load HMAC secrets: %w", err)
	}
	secretID, secret, err := pickSecret(secrets, apiKeySecretID)
	if err != nil {
		return err
	}

	database, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()
	if err := requireMigrations(ctx, database); err != nil {
		return err
	}
	queries, err := db.LoadQueries(database)
	if err != nil {
		return fmt.Errorf("failed to load queries: %w", err)
	}

	key, err := auth.GenerateAPIKey(secretID)
	if err != nil {
		return err
	}

	st := store.New(queries, nil, logger)
	id, err := st.CreateAPIKey(ctx, apiKeyShopID, apiKeyName, auth.ComputeHMAC(secret, key))
	if err != nil {
		return err
	}

	logger.Info().Str("api_key_id", id).Int64("shop_id", apiKeyShopID).Msg("Created API key")
	fmt.Fprintf(cmd.OutOrStdout(), "api_key_id: %s\napi_key:    %s\n", id, key)
	return nil
}

func runAPIKeyRevoke(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}
	logger := initLogger(cfg.Logging, cmd.ErrOrStderr())

	database, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()
	queries, err := db.LoadQueries(database)
	if err != nil {
		return fmt.Errorf("failed to load queries: %w", err)
	}

	if err := store.New(queries, nil, logger).RevokeAPIKey(ctx, args[0]); err != nil {
		return err
	}
	logger.Info().Str("api_key_id", args[0]).Msg("Revoked API key")
	return nil
}
