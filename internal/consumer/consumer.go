package consumer

import (
	"context"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
	"recipe-service/internal/service"
	"time"
)

// MessageReader is satisfied by *kafka.Reader.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// RecipeEvictor drops cached recipes. Implemented by service.RecipeService.
type RecipeEvictor interface {
	EvictRecipe(ctx context.Context, id int) error
}

// Consumer keeps the recipe cache of this instance in step with writes made
// by any instance.
type Consumer struct {
	reader  MessageReader
	evictor RecipeEvictor
	backoff time.Duration
}

func NewConsumer(reader MessageReader, evictor RecipeEvictor) *Consumer {
	return &Consumer{reader: reader, evictor: evictor, backoff: time.Second}
}

// Run reads recipe events until ctx is cancelled, then closes the reader.
func (c *Consumer) Run(ctx context.Context) {
	defer func() {
		if err := c.reader.Close(); err != nil {
			log.Error().Msgf("Error closing kafka reader: %v", err)
		}
	}()

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error().Msgf("Error reading message: %v", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.backoff):
			}
			continue
		}

		c.processMessage(ctx, msg)
	}
}

// processMessage handles one event; keys look like recipe.<event>.<id>.
func (c *Consumer) processMessage(ctx context.Context, msg kafka.Message) {
	event, recipeID, err := service.ParseRecipeEventKey(string(msg.Key))
	if err != nil {
		log.Error().Msgf("Error parsing message key: %v", err)
		return
	}

	switch event {
	case service.EventRecipeCreated:
		// nothing cached yet
	case service.EventRecipeUpdated, service.EventRecipeDeleted, service.EventIngredientsAdded:
		if err := c.evictor.EvictRecipe(ctx, recipeID); err != nil {
			log.Error().Msgf("Error evicting recipe %d: %v", recipeID, err)
		}
	default:
		log.Error().Msgf("Unknown recipe event: %s", event)
	}
}
