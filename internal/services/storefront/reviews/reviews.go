// Package reviews stores product reviews and aggregates ratings.
package reviews

import (
	"context"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/louisbranch/storefront/internal/platform/errors"
	"github.com/louisbranch/storefront/internal/services/storefront/records"
	"github.com/louisbranch/storefront/internal/services/storefront/storage"
)

// CollectionKey is the storage key for reviews.
const CollectionKey = records.KeyPrefix + "reviews"

// MaxCommentLength bounds a review comment in characters.
const MaxCommentLength = 2000

// Review is one customer's rating of a product.
type Review struct {
	records.Meta
	ProductID  string `json:"productId"`
	CustomerID string `json:"customerId,omitempty"`
	Author     string `json:"author"`
	Rating     int    `json:"rating"`
	Comment    string `json:"comment"`
}

// Validate checks the review's shape.
func (r *Review) Validate() error {
	if strings.TrimSpace(r.ID) == "" || strings.TrimSpace(r.ProductID) == "" {
		return errors.New(errors.CodeReviewInvalid, "review requires id and product")
	}
	if r.Rating < 1 || r.Rating > 5 {
		return errors.New(errors.CodeReviewInvalidRating, "rating must be between 1 and 5")
	}
	if strings.TrimSpace(r.Author) == "" {
		return errors.New(errors.CodeReviewInvalid, "review author is required")
	}
	if utf8.RuneCountInString(r.Comment) > MaxCommentLength {
		return errors.New(errors.CodeReviewInvalid, "review comment is too long")
	}
	return nil
}

// Rating summarizes the reviews of one product.
type Rating struct {
	ProductID string  `json:"productId"`
	Count     int     `json:"count"`
	Average   float64 `json:"average"`
	// Buckets[n] counts n-star reviews; index 0 is unused.
	Buckets [6]int `json:"buckets"`
}

// Aggregate computes a Rating over reviews. No reviews yields zero values.
func Aggregate(productID string, all []Review) Rating {
	rating := Rating{ProductID: productID}
	sum := 0
	for _, r := range all {
		if r.ProductID != productID || r.Rating < 1 || r.Rating > 5 {
			continue
		}
		rating.Count++
		rating.Buckets[r.Rating]++
		sum += r.Rating
	}
	if rating.Count > 0 {
		rating.Average = float64(sum) / float64(rating.Count)
	}
	return rating
}

// Service manages the review collection.
type Service struct {
	reviews *records.Collection[Review, *Review]
}

// NewService binds the service to store.
func NewService(store storage.CollectionStore, opts records.Options) *Service {
	return &Service{reviews: records.NewCollection[Review, *Review](store, CollectionKey, opts)}
}

// List returns every review, newest first.
func (s *Service) List(ctx context.Context) ([]Review, error) {
	all, err := s.reviews.All(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return all, nil
}

// ForProduct returns a product's reviews, newest first.
func (s *Service) ForProduct(ctx context.Context, productID string) ([]Review, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := []Review{}
	for _, r := range all {
		if r.ProductID == productID {
			out = append(out, r)
		}
	}
	return out, nil
}

// Add stores a new review.
func (s *Service) Add(ctx context.Context, r Review) (Review, error) {
	r.Author = strings.TrimSpace(r.Author)
	r.Comment = strings.TrimSpace(r.Comment)
	return s.reviews.Add(ctx, r)
}

// Remove deletes a review by id.
func (s *Service) Remove(ctx context.Context, reviewID string) (bool, error) {
	return s.reviews.Remove(ctx, reviewID)
}

// Rating recomputes a product's rating from every stored review.
func (s *Service) Rating(ctx context.Context, productID string) (Rating, error) {
	all, err := s.reviews.All(ctx)
	if err != nil {
		return Rating{}, err
	}
	return Aggregate(productID, all), nil
}
