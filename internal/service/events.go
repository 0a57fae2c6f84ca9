package service

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/segmentio/kafka-go"
	"recipe-service/internal/entity"
	"strconv"
	"strings"
)

const (
	EventRecipeCreated    = "created"
	EventRecipeUpdated    = "updated"
	EventRecipeDeleted    = "deleted"
	EventIngredientsAdded = "ingredients_added"
)

// EventPublisher announces recipe mutations to other instances.
type EventPublisher interface {
	PublishRecipeEvent(ctx context.Context, event string, recipe *entity.Recipe) error
}

// MessageWriter is satisfied by *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type KafkaPublisher struct {
	writer MessageWriter
}

func NewKafkaPublisher(writer MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

// RecipeEventKey builds keys of the form recipe.<event>.<id>.
func RecipeEventKey(event string, recipeID int) string {
	return fmt.Sprintf("recipe.%s.%d", event, recipeID)
}

func ParseRecipeEventKey(key string) (event string, recipeID int, err error) {
	parts := strings.Split(key, ".")
	if len(parts) != 3 || parts[0] != "recipe" {
		return "", 0, fmt.Errorf("malformed recipe event key %q", key)
	}
	recipeID, err = strconv.Atoi(parts[2])
	if err != nil {
		return "", 0, fmt.Errorf("malformed recipe id in key %q: %w", key, err)
	}
	return parts[1], recipeID, nil
}

func (p *KafkaPublisher) PublishRecipeEvent(ctx context.Context, event string, recipe *entity.Recipe) error {
	recipeJSON, err := json.Marshal(recipe)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(RecipeEventKey(event, recipe.ID)),
		Value: recipeJSON,
	}

	return p.writer.WriteMessages(ctx, msg)
}

// NoopPublisher drops every event. Used when kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) PublishRecipeEvent(context.Context, string, *entity.Recipe) error {
	return nil
}
