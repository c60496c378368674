package index_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/poochpalace/adoptions/internal/index"
	"github.com/poochpalace/adoptions/internal/vectorstore"
	"github.com/poochpalace/adoptions/pkg/models"
)

// fakeCatalog returns a fixed dog list.
type fakeCatalog struct {
	dogs []models.Dog
	err  error
}

func (f *fakeCatalog) List(_ context.Context) ([]models.Dog, error) {
	return f.dogs, f.err
}

// fakeEmbedder maps every text to a deterministic unit vector.
type fakeEmbedder struct {
	calls int
}

func (f *fakeEmbedder) Kind() string    { return "fake" }
func (f *fakeEmbedder) Dimensions() int { return 3 }

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	f.calls++
	out := make([][]float64, len(texts))
	for i, text := range texts {
		// Crude but deterministic: bucket by first byte.
		v := []float64{0, 0, 1}
		if len(text) > 0 {
			v = []float64{float64(text[0]%7) + 1, float64(len(text) % 5), 1}
		}
		out[i] = v
	}
	return out, nil
}

func (f *fakeEmbedder) HealthCheck(_ context.Context) error { return nil }

// failingStore errors on Count.
type failingStore struct {
	vectorstore.Driver
}

func (f *failingStore) Count(_ context.Context) (int, error) {
	return 0, errors.New("index offline")
}

func threeDogs() []models.Dog {
	return []models.Dog{
		{ID: 1, Name: "Prancer", Owner: "shelter", Description: "a neurotic chihuahua"},
		{ID: 2, Name: "Rex", Owner: "shelter", Description: "a loyal german shepherd"},
		{ID: 3, Name: "Biscuit", Owner: "foster", Description: "a golden retriever puppy"},
	}
}

func TestEnsureIndexedSeedsEmptyIndex(t *testing.T) {
	store := vectorstore.NewEmbeddedStore()
	ix := index.NewIndexer(&fakeCatalog{dogs: threeDogs()}, &fakeEmbedder{}, store)

	if err := ix.EnsureIndexed(context.Background()); err != nil {
		t.Fatalf("EnsureIndexed() error = %v", err)
	}

	count, _ := store.Count(context.Background())
	if count != 3 {
		t.Errorf("index count after seeding = %d, want 3", count)
	}
}

func TestEnsureIndexedIsIdempotent(t *testing.T) {
	store := vectorstore.NewEmbeddedStore()
	emb := &fakeEmbedder{}
	ix := index.NewIndexer(&fakeCatalog{dogs: threeDogs()}, emb, store)
	ctx := context.Background()

	if err := ix.EnsureIndexed(ctx); err != nil {
		t.Fatalf("first EnsureIndexed() error = %v", err)
	}
	callsAfterFirst := emb.calls

	if err := ix.EnsureIndexed(ctx); err != nil {
		t.Fatalf("second EnsureIndexed() error = %v", err)
	}

	count, _ := store.Count(ctx)
	if count != 3 {
		t.Errorf("index count after double seeding = %d, want 3", count)
	}
	if emb.calls != callsAfterFirst {
		t.Errorf("second EnsureIndexed() embedded again (%d calls, want %d)", emb.calls, callsAfterFirst)
	}
}

func TestEnsureIndexedFailsWhenCountFails(t *testing.T) {
	ix := index.NewIndexer(&fakeCatalog{dogs: threeDogs()}, &fakeEmbedder{}, &failingStore{})

	err := ix.EnsureIndexed(context.Background())
	if err == nil {
		t.Fatal("EnsureIndexed() error = nil, want count failure")
	}
	if !strings.Contains(err.Error(), "counting index documents") {
		t.Errorf("EnsureIndexed() error = %v, want counting failure", err)
	}
}

func TestEnsureIndexedEmptyCatalog(t *testing.T) {
	store := vectorstore.NewEmbeddedStore()
	ix := index.NewIndexer(&fakeCatalog{}, &fakeEmbedder{}, store)

	if err := ix.EnsureIndexed(context.Background()); err != nil {
		t.Fatalf("EnsureIndexed() on empty catalog error = %v", err)
	}
	count, _ := store.Count(context.Background())
	if count != 0 {
		t.Errorf("index count = %d, want 0", count)
	}
}

func TestIndexedDocumentFormat(t *testing.T) {
	store := vectorstore.NewEmbeddedStore()
	dogs := []models.Dog{{ID: 1, Name: "Prancer", Owner: "private-owner", Description: "a neurotic chihuahua"}}
	ix := index.NewIndexer(&fakeCatalog{dogs: dogs}, &fakeEmbedder{}, store)
	ctx := context.Background()

	if err := ix.EnsureIndexed(ctx); err != nil {
		t.Fatalf("EnsureIndexed() error = %v", err)
	}

	results, err := store.Search(ctx, []float64{1, 1, 1}, 1)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Search() returned %d results, want 1", len(results))
	}

	content := results[0].Doc.Content
	want := "id: 1, name: Prancer, description: a neurotic chihuahua"
	if content != want {
		t.Errorf("document content = %q, want %q", content, want)
	}
	if strings.Contains(content, "private-owner") {
		t.Error("document content leaks the owner field")
	}
}

func TestRetrieverReturnsTopK(t *testing.T) {
	store := vectorstore.NewEmbeddedStore()
	emb := &fakeEmbedder{}
	ix := index.NewIndexer(&fakeCatalog{dogs: threeDogs()}, emb, store)
	ctx := context.Background()

	if err := ix.EnsureIndexed(ctx); err != nil {
		t.Fatalf("EnsureIndexed() error = %v", err)
	}

	r := index.NewRetriever(emb, store, 2)
	results, err := r.Retrieve(ctx, "a loyal dog for my family")
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(results) != 2 {
		t.Errorf("Retrieve() returned %d results, want 2", len(results))
	}
}
