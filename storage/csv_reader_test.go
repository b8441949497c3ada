package storage

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

const listingsCSV = `id,name,price,room_type,neighbourhood_cleansed,bedrooms,review_scores_rating
1,"Sunny room, great view","$1,234.00",Private room,Mission,1.0,4.9
2,Loft,$95.00,Entire home/apt,Castro,,NA
`

func TestCSVReaderReadListings(t *testing.T) {
	path := writeFile(t, t.TempDir(), "listings.csv", listingsCSV)

	rows, err := NewCSVReader().ReadListings(path)
	if err != nil {
		t.Fatalf("ReadListings: unexpected error %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows: got %d, want 2", len(rows))
	}

	first := rows[0]
	if first.Row != 1 {
		t.Errorf("Row: got %d, want 1", first.Row)
	}
	if got := first.Get("name"); got != "Sunny room, great view" {
		t.Errorf("name: got %q", got)
	}
	if got := first.Get("price"); got != "$1,234.00" {
		t.Errorf("price: got %q, want %q", got, "$1,234.00")
	}
	if got := rows[1].Get("bedrooms"); got != "" {
		t.Errorf("empty bedrooms: got %q, want empty", got)
	}
	if _, ok := rows[1].Fields["neighbourhood_cleansed"]; !ok {
		t.Error("neighbourhood_cleansed column missing from fields")
	}
}

func TestCSVReaderReadReviews(t *testing.T) {
	path := writeFile(t, t.TempDir(), "review.csv", "listing_id,date,comments\n1,2021-05-01,Lovely\n1,2021-06-02,Noisy\n")

	reviews, err := NewCSVReader().ReadReviews(path)
	if err != nil {
		t.Fatalf("ReadReviews: unexpected error %v", err)
	}
	if len(reviews) != 2 {
		t.Fatalf("reviews: got %d, want 2", len(reviews))
	}
	if reviews[1].ListingID != "1" || reviews[1].Date != "2021-06-02" || reviews[1].Fields["comments"] != "Noisy" {
		t.Errorf("review[1]: got %+v", reviews[1])
	}
}

func TestCSVReaderMissingFile(t *testing.T) {
	_, err := NewCSVReader().ReadListings(filepath.Join(t.TempDir(), "nope.csv"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("ReadListings(missing) error = %v; want not-exist", err)
	}
}

func TestCSVReaderHeaderOnly(t *testing.T) {
	dir := t.TempDir()

	rows, err := NewCSVReader().ReadListings(writeFile(t, dir, "listings.csv", "id,price,room_type\n"))
	if err != nil {
		t.Fatalf("ReadListings(header only): unexpected error %v", err)
	}
	if rows == nil || len(rows) != 0 {
		t.Errorf("ReadListings(header only) = %v; want empty non-nil", rows)
	}

	reviews, err := NewCSVReader().ReadReviews(writeFile(t, dir, "review.csv", "listing_id,date,comments\n"))
	if err != nil {
		t.Fatalf("ReadReviews(header only): unexpected error %v", err)
	}
	if len(reviews) != 0 {
		t.Errorf("ReadReviews(header only) = %v; want empty", reviews)
	}
}

func TestCSVReaderEmptyFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "listings.csv", "")

	_, err := NewCSVReader().ReadListings(path)
	if !errors.Is(err, ErrUnparseable) {
		t.Errorf("ReadListings(empty) error = %v; want ErrUnparseable", err)
	}
}
