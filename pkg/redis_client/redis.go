package redis_client

import (
	"context"

	"github.com/adjust/rmq/v5"
	"github.com/redis/go-redis/v9"
	"github.com/subpar/subpar/pkg/util"
)

var Client *redis.Client
var QueueConnection rmq.Connection

const defaultConnectionAddress = "localhost:6379"
const defaultConnectionPassword = ""
const defaultDatabase = 0

const queueConnectionTag = "subpar"

func Connect() error {
	settings := util.GetSettings()

	database, err := settings.Int("REDIS_DATABASE", defaultDatabase)
	if err != nil {
		return err
	}

	client := redis.NewClient(&redis.Options{
		Addr:     settings.String("REDIS_ADDRESS", defaultConnectionAddress),
		Password: settings.String("REDIS_PASSWORD", defaultConnectionPassword),
		DB:       database,
	})

	return ConnectWithClient(client)
}

// ConnectWithClient sets up the shared client and queue connection over an
// already configured redis client.
func ConnectWithClient(client *redis.Client) error {
	if err := client.Ping(context.Background()).Err(); err != nil {
		return err
	}

	queueConnection, err := rmq.OpenConnectionWithRedisClient(queueConnectionTag, client, nil)
	if err != nil {
		return err
	}

	Client = client
	QueueConnection = queueConnection

	return nil
}
