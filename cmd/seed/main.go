package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/tastemap/catalog-api/internal/catalog/application"
	"github.com/tastemap/catalog-api/internal/catalog/domain"
	"github.com/tastemap/catalog-api/internal/config"
	mongodoc "github.com/tastemap/catalog-api/internal/infrastructure/mongo"
	"github.com/tastemap/catalog-api/internal/logger"
)

type seedOptions struct {
	drop          bool
	reviewsPerMax int
	randomSeed    int64
}

type sampleUser struct {
	id    string
	name  string
	email string
}

type sampleStore struct {
	name        string
	description string
	tags        []string
	lng         float64
	lat         float64
	address     string
	author      int
}

var sampleUsers = []sampleUser{
	{id: "seed-user-wes", name: "Wes", email: "wes@example.com"},
	{id: "seed-user-debbie", name: "Debbie", email: "debbie@example.com"},
	{id: "seed-user-beau", name: "Beau", email: "beau@example.com"},
}

var sampleStores = []sampleStore{
	{
		name:        "3 Brewers",
		description: "Famous for its craft beers and sharing plates.",
		tags:        []string{"Wifi", "Open Late", "Licensed"},
		lng:         -79.388252, lat: 43.644773,
		address: "275 Yonge St, Toronto, ON",
		author:  0,
	},
	{
		name:        "East End Barbecue",
		description: "Low and slow smoked brisket and ribs.",
		tags:        []string{"Family Friendly", "Licensed"},
		lng:         -79.330252, lat: 43.664773,
		address: "1929 Gerrard St E, Toronto, ON",
		author:  1,
	},
	{
		name:        "Empanada Papa",
		description: "Hand-held Colombian street food at its best.",
		tags:        []string{"Vegetarian", "Family Friendly"},
		lng:         -79.414252, lat: 43.654773,
		address: "208 Ossington Ave, Toronto, ON",
		author:  2,
	},
	{
		name:        "Fresh off the Boat",
		description: "Sustainable fish and chips by the harbour.",
		tags:        []string{"Open Late", "Wifi"},
		lng:         -79.381252, lat: 43.639773,
		address: "207 Queens Quay W, Toronto, ON",
		author:  0,
	},
	{
		name:        "Cafe Mocha",
		description: "Single origin espresso and fresh pastries.",
		tags:        []string{"Wifi", "Vegetarian"},
		lng:         -79.401252, lat: 43.649773,
		address: "398 College St, Toronto, ON",
		author:  1,
	},
	{
		name:        "Dominion Hotel",
		description: "A historic tavern with live music every weekend.",
		tags:        []string{"Licensed", "Open Late"},
		lng:         -79.359252, lat: 43.656773,
		address: "500 Queen St E, Toronto, ON",
		author:  2,
	},
}

var reviewComments = []string{
	"Absolutely loved it, will be back.",
	"Solid spot, slightly long wait at peak hours.",
	"The staff were lovely and the food was great.",
	"Decent but nothing special.",
	"One of my favourite places in the city.",
}

func main() {
	opts := parseFlags()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	zlog := logger.New(cfg.LogLevel, cfg.LogFormat)
	defer zlog.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	clientOptions := options.Client().ApplyURI(cfg.MongoURI).SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		zlog.Fatal("mongodb connection failed", zap.Error(err))
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	db := client.Database(cfg.MongoDatabase)

	if opts.drop {
		for _, name := range []string{cfg.StoreCollection, cfg.ReviewCollection, cfg.UserCollection} {
			if err := db.Collection(name).Drop(ctx); err != nil {
				zlog.Fatal("failed to drop collection", zap.String("collection", name), zap.Error(err))
			}
		}
		zlog.Info("dropped existing collections")
	}

	if err := mongodoc.EnsureIndexes(ctx, db, cfg.StoreCollection, cfg.ReviewCollection); err != nil {
		zlog.Fatal("failed to ensure indexes", zap.Error(err))
	}

	stores := mongodoc.NewStoreRepository(db, cfg.StoreCollection, cfg.ReviewCollection)
	reviews := mongodoc.NewReviewRepository(db, cfg.ReviewCollection)
	users := mongodoc.NewUserRepository(db, cfg.UserCollection)
	catalog := application.NewCatalogService(stores, reviews, users, application.Limits{
		PageSize:        cfg.PageSize,
		NearMaxDistance: cfg.NearMaxDistanceMeters,
		NearLimit:       cfg.NearLimit,
		SearchLimit:     cfg.SearchLimit,
		TopLimit:        cfg.TopLimit,
	})

	for _, u := range sampleUsers {
		if err := users.Upsert(ctx, domain.User{ID: u.id, Name: u.name, Email: u.email}); err != nil {
			zlog.Fatal("failed to seed user", zap.String("user", u.id), zap.Error(err))
		}
	}
	zlog.Info("seeded users", zap.Int("count", len(sampleUsers)))

	rng := rand.New(rand.NewSource(opts.randomSeed))

	var reviewCount int
	for _, sample := range sampleStores {
		store, err := catalog.CreateStore(ctx, sampleUsers[sample.author].id, application.CreateStoreCommand{
			Name:        sample.name,
			Description: sample.description,
			Tags:        sample.tags,
			Longitude:   sample.lng,
			Latitude:    sample.lat,
			Address:     sample.address,
			Photo:       fmt.Sprintf("%s.jpg", uuid.New()),
		})
		if err != nil {
			zlog.Fatal("failed to seed store", zap.String("name", sample.name), zap.Error(err))
		}

		for i := 0; i < 1+rng.Intn(opts.reviewsPerMax); i++ {
			author := sampleUsers[rng.Intn(len(sampleUsers))]
			rating := float64(1 + rng.Intn(5))
			comment := reviewComments[rng.Intn(len(reviewComments))]
			if _, err := catalog.AddReview(ctx, author.id, store.ID, rating, comment); err != nil {
				zlog.Fatal("failed to seed review", zap.String("store", store.Slug), zap.Error(err))
			}
			reviewCount++
		}
		zlog.Info("seeded store", zap.String("slug", store.Slug))
	}

	zlog.Info("seeding complete",
		zap.Int("stores", len(sampleStores)),
		zap.Int("reviews", reviewCount),
	)
}

func parseFlags() seedOptions {
	var opts seedOptions
	flag.BoolVar(&opts.drop, "drop", false, "drop the store, review and user collections before seeding")
	flag.IntVar(&opts.reviewsPerMax, "max-reviews", 5, "maximum number of reviews to generate per store")
	flag.Int64Var(&opts.randomSeed, "seed", time.Now().UnixNano(), "random seed for generated data")
	flag.Parse()

	if opts.reviewsPerMax < 1 {
		opts.reviewsPerMax = 1
	}
	return opts
}
