package mongo

import (
	"context"
	"log"
	"time"

	"progress-service/internal/config"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var (
	Mongo_Client   *mongo.Client
	Mongo_Database *mongo.Database
)

// InitMongo connects the shared client and pings the deployment. Fatal on
// failure: the service is useless without its document store.
func InitMongo(cfg *config.MongoDBConfig) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(cfg.PoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		log.Fatalf("Failed to ping MongoDB: %v", err)
	}

	Mongo_Client = client
	Mongo_Database = client.Database(cfg.Database)
	log.Printf("Connected to MongoDB database %s", cfg.Database)
}

func DisconnectMongo() {
	if Mongo_Client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := Mongo_Client.Disconnect(ctx); err != nil {
		log.Printf("Error disconnecting from MongoDB: %v", err)
	}
}
