// Command seed-db loads the sample restaurants and menus into the database.
// The seed file is JSON, optionally gzip-compressed (detected by the .gz
// extension). Seeding is idempotent: re-running updates prices in place.
package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/jackc/pgx/v5/pgxpool"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/mealdesk/mealdesk/internal/repository"
)

const (
	upsertRestaurantSQL = `INSERT INTO restaurants (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`

	upsertMenuItemSQL = `INSERT INTO menu_items (name, price, restaurant_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (restaurant_id, name) DO UPDATE SET price = EXCLUDED.price`
)

type seedRestaurant struct {
	name  string
	items []seedItem
}

type seedItem struct {
	name  string
	price decimal.Decimal
}

func main() {
	var (
		databaseURL string
		menuFile    string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&menuFile, "menu-file", "db/seed/menu.json", "path to menu JSON file (.gz supported)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, menuFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, menuFile string) error {
	restaurants, err := readMenuFile(menuFile)
	if err != nil {
		return errors.Wrap(err, "read menu file")
	}

	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	return seedCatalog(ctx, pool, restaurants)
}

// readMenuFile parses the seed file into restaurants with their items.
func readMenuFile(path string) ([]seedRestaurant, error) {
	slog.Info("reading menu file", slog.String("path", path))

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrapf(err, "create gzip reader for %s", path)
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}

	return decodeMenu(jx.Decode(r, 4096))
}

func decodeMenu(d *jx.Decoder) ([]seedRestaurant, error) {
	var restaurants []seedRestaurant

	err := d.Arr(func(d *jx.Decoder) error {
		var rest seedRestaurant
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			switch key {
			case "name":
				name, err := d.Str()
				rest.name = name
				return err
			case "items":
				return d.Arr(func(d *jx.Decoder) error {
					item, err := decodeItem(d)
					if err != nil {
						return err
					}
					rest.items = append(rest.items, item)
					return nil
				})
			default:
				return d.Skip()
			}
		}); err != nil {
			return err
		}

		if rest.name == "" {
			return errors.New("restaurant entry is missing a name")
		}
		restaurants = append(restaurants, rest)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "parse menu JSON")
	}

	return restaurants, nil
}

func decodeItem(d *jx.Decoder) (seedItem, error) {
	var item seedItem
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "name":
			name, err := d.Str()
			item.name = name
			return err
		case "price":
			raw, err := d.Str()
			if err != nil {
				return err
			}
			price, err := decimal.NewFromString(raw)
			if err != nil {
				return errors.Wrapf(err, "parse price %q", raw)
			}
			item.price = price
			return nil
		default:
			return d.Skip()
		}
	})
	return item, err
}

// seedCatalog upserts restaurants sequentially (their ids feed the items),
// then fans the per-restaurant item upserts out concurrently.
func seedCatalog(ctx context.Context, pool *pgxpool.Pool, restaurants []seedRestaurant) error {
	slog.Info("upserting restaurants", slog.Int("count", len(restaurants)))

	ids := make([]int64, len(restaurants))
	for i, rest := range restaurants {
		if err := pool.QueryRow(ctx, upsertRestaurantSQL, rest.name).Scan(&ids[i]); err != nil {
			return errors.Wrapf(err, "upsert restaurant %s", rest.name)
		}
		slog.Info("upserted restaurant", slog.Int64("id", ids[i]), slog.String("name", rest.name))
	}

	g, ctx := errgroup.WithContext(ctx)
	for i, rest := range restaurants {
		g.Go(seedMenuItems(ctx, pool, ids[i], rest))
	}
	return g.Wait()
}

func seedMenuItems(ctx context.Context, pool *pgxpool.Pool, restaurantID int64, rest seedRestaurant) func() error {
	return func() error {
		for _, item := range rest.items {
			if _, err := pool.Exec(ctx, upsertMenuItemSQL, item.name, item.price, restaurantID); err != nil {
				return errors.Wrapf(err, "upsert menu item %s", item.name)
			}

			slog.Info("upserted menu item",
				slog.String("restaurant", rest.name),
				slog.String("name", item.name),
				slog.String("price", item.price.String()),
			)
		}
		return nil
	}
}
