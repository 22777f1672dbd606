// Command loadcatalog drops and rebuilds the catalog tables from the
// e-commerce CSV dataset, loading in dependency order.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"

	"github.com/shoptalk-ai/shoptalk/catalog"
	configx "github.com/shoptalk-ai/shoptalk/pkg/config"
	_ "github.com/shoptalk-ai/shoptalk/pkg/logger/autoload"
	postgresx "github.com/shoptalk-ai/shoptalk/pkg/postgres"
)

var dataDir = flag.String("data", ".", "directory containing the dataset CSV files")

type loadStep struct {
	file string
	load func(ctx context.Context, db bun.IDB, r io.Reader) (int, error)
}

func main() {
	flag.Parse()

	ctx := context.Background()

	pgCfg := configx.MustLoad[postgresx.Config]("DB")
	db := postgresx.MustConnect(ctx, *pgCfg)
	defer db.Close()

	if err := catalog.ResetSchema(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("reset catalog schema")
	}

	steps := []loadStep{
		{file: "distribution_centers.csv", load: catalog.LoadDistributionCenters},
		{file: "users.csv", load: catalog.LoadUsers},
		{file: "products.csv", load: catalog.LoadProducts},
		{file: "orders.csv", load: catalog.LoadOrders},
		{file: "order_items.csv", load: catalog.LoadOrderItems},
	}

	for _, step := range steps {
		if err := runStep(ctx, db, step); err != nil {
			log.Fatal().Err(err).Str("file", step.file).Msg("load failed")
		}
	}

	log.Info().Msg("catalog loaded")
}

func runStep(ctx context.Context, db *bun.DB, step loadStep) error {
	path := filepath.Join(*dataDir, step.file)
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	n, err := step.load(ctx, db, f)
	if err != nil {
		return err
	}
	log.Info().Str("file", step.file).Int("rows", n).Msg("loaded")
	return nil
}
