package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"surveygraph/internal/model"
)

const pageTTL = 5 * time.Minute

// PageCache keeps pages and their question lists hot for traversal.
// Entries expire on TTL; Invalidate drops both keys after a reseed.
type PageCache interface {
	SetPage(ctx context.Context, page *model.Page) error
	GetPage(ctx context.Context, id string) (*model.Page, error)
	SetQuestions(ctx context.Context, pageID string, questions []model.Question) error
	GetQuestions(ctx context.Context, pageID string) ([]model.Question, error)
	Invalidate(ctx context.Context, pageID string) error
}

type pageCache struct {
	client *redis.Client
}

func NewPageCache(client *redis.Client) PageCache {
	return &pageCache{
		client: client,
	}
}

func (c *pageCache) SetPage(ctx context.Context, page *model.Page) error {
	data, err := json.Marshal(page)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, "page:"+page.ID, data, pageTTL).Err()
}

// GetPage returns nil on a cache miss.
func (c *pageCache) GetPage(ctx context.Context, id string) (*model.Page, error) {
	data, err := c.client.Get(ctx, "page:"+id).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var page model.Page
	err = json.Unmarshal([]byte(data), &page)
	return &page, err
}

func (c *pageCache) SetQuestions(ctx context.Context, pageID string, questions []model.Question) error {
	data, err := json.Marshal(questions)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, "page:questions:"+pageID, data, pageTTL).Err()
}

// GetQuestions returns nil on a cache miss.
func (c *pageCache) GetQuestions(ctx context.Context, pageID string) ([]model.Question, error) {
	data, err := c.client.Get(ctx, "page:questions:"+pageID).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var questions []model.Question
	err = json.Unmarshal([]byte(data), &questions)
	return questions, err
}

func (c *pageCache) Invalidate(ctx context.Context, pageID string) error {
	return c.client.Del(ctx, "page:"+pageID, "page:questions:"+pageID).Err()
}
