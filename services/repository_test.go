package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const (
	fixtureListings = `id,name,price,room_type,neighbourhood_cleansed,bedrooms,availability_365,latitude,longitude
1,Sunny room,$100.00,Private room,Mission,1,90,37.76,-122.42
2,Whole flat,"$1,200.00",Entire home/apt,Castro,2,10,37.76,-122.43
3,Bunk,$40.00,Shared room,Castro,,,37.76,-122.43
`
	fixtureReviews = `listing_id,date,comments
1,2021-01-02,Great
2,2021-02-03,Fine
`
	fixtureBoundaries = `{"type":"FeatureCollection","features":[
{"type":"Feature","properties":{"neighbourhood":"Mission","neighbourhood_group":null},
 "geometry":{"type":"Polygon","coordinates":[[[-122.43,37.75],[-122.41,37.75],[-122.41,37.77],[-122.43,37.77],[-122.43,37.75]]]}}
]}`
)

type fixture struct {
	dir     string
	sources Sources
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	f := fixture{
		dir: dir,
		sources: Sources{
			ListingsPath:   filepath.Join(dir, "listings.csv"),
			ReviewsPath:    filepath.Join(dir, "review.csv"),
			BoundariesPath: filepath.Join(dir, "neighbourhoods.geojson"),
		},
	}
	f.write(t, f.sources.ListingsPath, fixtureListings)
	f.write(t, f.sources.ReviewsPath, fixtureReviews)
	f.write(t, f.sources.BoundariesPath, fixtureBoundaries)
	return f
}

func (f fixture) write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// touch moves the modification time forward so the cache key changes even on
// filesystems with coarse timestamps.
func (f fixture) touch(t *testing.T, path string) {
	t.Helper()
	future := time.Now().Add(time.Minute)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatalf("chtimes %s: %v", path, err)
	}
}

func newTestRepository(sources Sources) *Repository {
	logger := newTestLogger()
	return NewRepository(sources, DefaultReaders(), NewCleaner(logger), logger, 2)
}

func TestRepositoryLoad(t *testing.T) {
	f := newFixture(t)
	repo := newTestRepository(f.sources)

	ds, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: unexpected error %v", err)
	}
	if ds.RawCount != 3 {
		t.Errorf("RawCount: got %d, want 3", ds.RawCount)
	}
	if len(ds.Reviews) != 2 || ds.Reviews[0].ListingID != "1" {
		t.Errorf("Reviews: got %+v", ds.Reviews)
	}
	for _, l := range ds.Listings {
		if l.Price < ds.PriceLow || l.Price > ds.PriceHigh {
			t.Errorf("listing %s price %.2f outside band [%.2f, %.2f]", l.ID, l.Price, ds.PriceLow, ds.PriceHigh)
		}
	}
}

func TestRepositoryCachesUntilSourceChanges(t *testing.T) {
	f := newFixture(t)
	repo := newTestRepository(f.sources)
	ctx := context.Background()

	first, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	second, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if first != second {
		t.Error("second Load with unchanged sources should return the cached dataset")
	}

	f.write(t, f.sources.ListingsPath, fixtureListings+"4,Extra,$90.00,Private room,Mission,1,5,37.76,-122.42\n")
	f.touch(t, f.sources.ListingsPath)

	third, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load after change: %v", err)
	}
	if third == first {
		t.Fatal("Load after a source change should re-read the file")
	}
	if third.RawCount != 4 {
		t.Errorf("RawCount after change: got %d, want 4", third.RawCount)
	}
}

func TestRepositoryInvalidate(t *testing.T) {
	f := newFixture(t)
	repo := newTestRepository(f.sources)
	ctx := context.Background()

	first, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	repo.Invalidate()
	second, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if first == second {
		t.Error("Load after Invalidate should build a new dataset")
	}
}

func TestRepositoryReload(t *testing.T) {
	f := newFixture(t)
	repo := newTestRepository(f.sources)

	ds, boundaries, err := repo.Reload(context.Background())
	if err != nil {
		t.Fatalf("Reload: unexpected error %v", err)
	}
	if ds == nil || len(boundaries) != 1 || boundaries[0].Name != "Mission" {
		t.Errorf("Reload: got dataset %v, boundaries %v", ds, boundaries)
	}
}

func TestRepositoryMissingSource(t *testing.T) {
	cases := []struct {
		name   string
		remove func(Sources) string
	}{
		{"listings", func(s Sources) string { return s.ListingsPath }},
		{"reviews", func(s Sources) string { return s.ReviewsPath }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			if err := os.Remove(tc.remove(f.sources)); err != nil {
				t.Fatal(err)
			}
			_, err := newTestRepository(f.sources).Load(context.Background())
			if !errors.Is(err, ErrMissingSource) {
				t.Errorf("Load: got %v, want ErrMissingSource", err)
			}
		})
	}
}

func TestRepositoryMissingBoundaries(t *testing.T) {
	f := newFixture(t)
	if err := os.Remove(f.sources.BoundariesPath); err != nil {
		t.Fatal(err)
	}
	_, err := newTestRepository(f.sources).Boundaries(context.Background())
	if !errors.Is(err, ErrMissingSource) {
		t.Errorf("Boundaries: got %v, want ErrMissingSource", err)
	}
}

func TestRepositoryMalformedPrice(t *testing.T) {
	f := newFixture(t)
	f.write(t, f.sources.ListingsPath, "id,price,room_type\n1,$10.00,Private room\n2,ten dollars,Private room\n")
	repo := newTestRepository(f.sources)

	_, err := repo.Load(context.Background())
	if !errors.Is(err, ErrMalformedRecord) {
		t.Fatalf("Load: got %v, want ErrMalformedRecord", err)
	}
	var rec *RecordError
	if !errors.As(err, &rec) || rec.Row != 2 {
		t.Errorf("RecordError: got %+v, want row 2", rec)
	}

	// A failed load must not poison the cache with a partial result.
	f.write(t, f.sources.ListingsPath, fixtureListings)
	f.touch(t, f.sources.ListingsPath)
	if _, err := repo.Load(context.Background()); err != nil {
		t.Errorf("Load after fix: unexpected error %v", err)
	}
}

func TestRepositoryMalformedBoundaries(t *testing.T) {
	f := newFixture(t)
	f.write(t, f.sources.BoundariesPath, "{not json")

	_, err := newTestRepository(f.sources).Boundaries(context.Background())
	if !errors.Is(err, ErrMalformedRecord) {
		t.Errorf("Boundaries: got %v, want ErrMalformedRecord", err)
	}
}

func TestRepositoryCancelledContext(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := newTestRepository(f.sources).Load(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Load: got %v, want context.Canceled", err)
	}
}

func TestRepositoryHeaderOnlySources(t *testing.T) {
	tests := []struct {
		name        string
		listings    string
		reviews     string
		wantRaw     int
		wantReviews int
	}{
		{"no reviews", fixtureListings, "listing_id,date,comments\n", 3, 0},
		{"no listings", "id,price,room_type,neighbourhood_cleansed\n", fixtureReviews, 0, 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.write(t, f.sources.ListingsPath, tc.listings)
			f.write(t, f.sources.ReviewsPath, tc.reviews)

			ds, err := newTestRepository(f.sources).Load(context.Background())
			if err != nil {
				t.Fatalf("Load: unexpected error %v", err)
			}
			if ds.RawCount != tc.wantRaw {
				t.Errorf("RawCount: got %d, want %d", ds.RawCount, tc.wantRaw)
			}
			if tc.wantRaw == 0 && len(ds.Listings) != 0 {
				t.Errorf("Listings: got %d, want none", len(ds.Listings))
			}
			if len(ds.Reviews) != tc.wantReviews {
				t.Errorf("Reviews: got %d, want %d", len(ds.Reviews), tc.wantReviews)
			}
		})
	}
}
