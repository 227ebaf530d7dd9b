package catalog

import (
	"context"

	"github.com/shopspring/decimal"
)

// Course is the pricing view of a course owned by the surrounding application
type Course struct {
	ID        int64
	TeacherID int64
	PriceEUR  decimal.Decimal
	Approved  bool
}

// Available reports whether the course can be discounted
func (c *Course) Available() bool {
	return c != nil && c.Approved && c.PriceEUR.IsPositive()
}

// Review is a peer review of a submission. Score is nil until the reviewer has scored it.
type Review struct {
	ReviewID   int64
	ReviewerID int64
	Score      *int
}

// Submission is an exercise submission with its reviews
type Submission struct {
	ID                 int64
	CourseID           int64
	StudentID          int64
	RequiredScoreCount int
	Reviews            []Review
}

// ScoredReviews returns the reviews that carry a score, in review id order
func (s *Submission) ScoredReviews() []Review {
	scored := make([]Review, 0, len(s.Reviews))
	for _, r := range s.Reviews {
		if r.Score != nil {
			scored = append(scored, r)
		}
	}
	return scored
}

// Catalog is the read-only port to courses, users and submissions
//
//go:generate mockgen -source=catalog.go -destination=../mocks/catalog.go -package=mocks -mock_names=Catalog=MockCatalog
type Catalog interface {
	// GetCourse returns the course; nil if it does not exist
	GetCourse(ctx context.Context, courseID int64) (*Course, error)
	// GetWallet returns the user's wallet address; empty if the user has none or does not exist
	GetWallet(ctx context.Context, userID int64) (string, error)
	// GetSubmission returns the submission with all its reviews; nil if it does not exist
	GetSubmission(ctx context.Context, submissionID int64) (*Submission, error)
}
