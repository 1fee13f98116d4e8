package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"arquiz-service/internal/domain"
)

func TestContentRepositoryCaches(t *testing.T) {
	loader := &countingLoader{
		ContentLoader: NewStaticContentLoader(map[string]domain.Content{
			"biology": sampleContent(),
		}),
	}
	repo := NewContentRepository(loader, time.Minute)

	if _, err := repo.GetContent(context.Background(), "biology"); err != nil {
		t.Fatalf("get content: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := repo.GetContent(context.Background(), "biology"); err != nil {
		t.Fatalf("get content 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestContentRepositoryExpires(t *testing.T) {
	loader := &countingLoader{
		ContentLoader: NewStaticContentLoader(map[string]domain.Content{"biology": sampleContent()}),
	}
	repo := NewContentRepository(loader, time.Minute)
	now := time.Now()
	repo.clock = func() time.Time { return now }

	_, _ = repo.GetContent(context.Background(), "biology")
	now = now.Add(2 * time.Minute)
	_, _ = repo.GetContent(context.Background(), "biology")
	if loader.calls != 2 {
		t.Fatalf("expected reload after expiry, loader calls %d", loader.calls)
	}
}

func TestContentRepositoryUnknownContent(t *testing.T) {
	repo := NewContentRepository(NewStaticContentLoader(nil), time.Minute)
	if _, err := repo.GetContent(context.Background(), "missing"); !errors.Is(err, domain.ErrContentNotFound) {
		t.Fatalf("expected ErrContentNotFound, got %v", err)
	}
}

type countingLoader struct {
	ContentLoader
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
			Alternatives: []string{"a", "b", "c", "d"},
			CorrectIndex: 1,
		})
	}
	return content
}
