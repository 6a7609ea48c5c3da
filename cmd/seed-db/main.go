// Command seed-db loads the ingredient catalog from a JSON file and provisions
// an API key, running migrations first. Safe to re-run: both seeds upsert.
package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/provision-api/internal/domain/ingredient"
	"github.com/xenking/provision-api/internal/storage/postgres"
)

type ingredientJSON struct {
	Name  string          `json:"name"`
	Unit  string          `json:"unit"`
	Price decimal.Decimal `json:"price"`
}

func main() {
	var (
		databaseURL     string
		ingredientsFile string
		apiKey          string
		apiKeyPepper    string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&ingredientsFile, "ingredients-file", "db/seed/ingredients.json", "path to ingredients JSON file")
	flag.StringVar(&apiKey, "api-key", "", "API key to seed (or PROVISION_SEED_API_KEY env)")
	flag.StringVar(&apiKeyPepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or PROVISION_API_KEY_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if apiKey == "" {
		apiKey = os.Getenv("PROVISION_SEED_API_KEY")
	}
	if apiKey == "" {
		slog.Error("API key is required: set --api-key or PROVISION_SEED_API_KEY")
		os.Exit(1)
	}
	if apiKeyPepper == "" {
		apiKeyPepper = os.Getenv("PROVISION_API_KEY_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, ingredientsFile, apiKey, apiKeyPepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, ingredientsFile, apiKey, pepper string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedIngredients(ctx, postgres.NewIngredientRepository(pool), ingredientsFile); err != nil {
		return errors.Wrap(err, "seed ingredients")
	}

	if err := seedAPIKey(ctx, postgres.NewAPIKeyRepository(pool), apiKey, pepper); err != nil {
		return errors.Wrap(err, "seed api key")
	}

	return nil
}

func seedIngredients(ctx context.Context, repo *postgres.IngredientRepository, ingredientsFile string) error {
	slog.Info("reading ingredients file", slog.String("path", ingredientsFile))

	data, err := os.ReadFile(ingredientsFile)
	if err != nil {
		return errors.Wrap(err, "read ingredients file")
	}

	var entries []ingredientJSON
	if err := json.Unmarshal(data, &entries); err != nil {
		return errors.Wrap(err, "parse ingredients JSON")
	}

	slog.Info("upserting ingredients", slog.Int("count", len(entries)))

	for _, e := range entries {
		ing := ingredient.Ingredient{Name: e.Name, Unit: e.Unit, Price: e.Price}
		if err := ing.Validate(); err != nil {
			return errors.Wrapf(err, "ingredient %q", e.Name)
		}
		if err := repo.Upsert(ctx, &ing); err != nil {
			return errors.Wrapf(err, "upsert ingredient %q", e.Name)
		}

		slog.Info("upserted ingredient",
			slog.Int64("id", ing.ID),
			slog.String("name", ing.Name),
			slog.String("unit", ing.Unit),
		)
	}

	return nil
}

func seedAPIKey(ctx context.Context, repo *postgres.APIKeyRepository, apiKey, pepper string) error {
	slog.Info("seeding default API key")

	mac := hmac.New(sha256.New, []byte(pepper))
	mac.Write([]byte(apiKey))
	keyHash := hex.EncodeToString(mac.Sum(nil))

	if err := repo.UpsertKey(ctx, keyHash, "Default key"); err != nil {
		return errors.Wrap(err, "upsert default API key")
	}

	slog.Info("upserted API key", slog.String("name", "Default key"))

	return nil
}
