package redis

import (
	"context"
	"testing"
	"time"

	"arquiz-service/internal/domain"
	"arquiz-service/internal/infra/memory"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestContentRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)

	loader := &countingLoader{
		ContentLoader: memory.NewStaticContentLoader(map[string]domain.Content{
			"biology": sampleContent(),
		}),
	}
	repo := NewContentRepository(client, loader, time.Minute)

	first, err := repo.GetContent(context.Background(), "biology")
	if err != nil {
		t.Fatalf("get content: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists("content:biology") {
		t.Fatalf("expected content cached in redis")
	}
	if ttl := mr.TTL("content:biology"); ttl < time.Minute {
		t.Fatalf("expected ttl of at least a minute, got %s", ttl)
	}

	// Second call should hit cache, loader not incremented.
	second, err := repo.GetContent(context.Background(), "biology")
	if err != nil {
		t.Fatalf("get cached content: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if second.MultipleChoice[2].Prompt != first.MultipleChoice[2].Prompt || second.Targets[0].TargetRef != "heart" {
		t.Fatalf("cached content differs: %+v", second)
	}
}

type countingLoader struct {
	memory.ContentLoader
	calls int
}

func (l *countingLoader) LoadContent(ctx context.Context, contentID string) (domain.Content, error) {
	l.calls++
	return l.ContentLoader.LoadContent(ctx, contentID)
}

func sampleContent() domain.Content {
	content := domain.Content{
		ID:      "biology",
		Targets: []domain.ImageTargetQuestion{{Prompt: "Find the heart", TargetRef: "heart"}},
	}
	for _, prompt := range []string{"Cells?", "DNA?", "Lungs?", "Blood?"} {
		content.MultipleChoice = append(content.MultipleChoice, domain.MultipleChoiceQuestion{
			Prompt:       prompt,
			Alternatives: []string{"a", "b"},
			CorrectIndex: 0,
		})
	}
	return content
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
