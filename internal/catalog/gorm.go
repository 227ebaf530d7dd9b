package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CourseModel maps the application's courses table
type CourseModel struct {
	ID        int64           `gorm:"column:id;primaryKey"`
	TeacherID int64           `gorm:"column:teacher_id;not null"`
	Title     string          `gorm:"column:title"`
	PriceEUR  decimal.Decimal `gorm:"column:price_eur;type:numeric(10,2)"`
	Approved  bool            `gorm:"column:is_approved;not null"`
}

func (CourseModel) TableName() string { return "courses" }

// UserModel maps the application's users table
type UserModel struct {
	ID            int64   `gorm:"column:id;primaryKey"`
	Username      string  `gorm:"column:username"`
	WalletAddress *string `gorm:"column:wallet_address;type:varchar(42)"`
}

func (UserModel) TableName() string { return "users" }

// SubmissionModel maps the application's exercise_submissions table
type SubmissionModel struct {
	ID                 int64 `gorm:"column:id;primaryKey"`
	CourseID           int64 `gorm:"column:course_id;not null"`
	StudentID          int64 `gorm:"column:student_id;not null"`
	RequiredScoreCount int   `gorm:"column:required_score_count;not null"`

	Reviews []ReviewModel `gorm:"foreignKey:SubmissionID"`
}

func (SubmissionModel) TableName() string { return "exercise_submissions" }

// ReviewModel maps the application's exercise_reviews table
type ReviewModel struct {
	ID           int64 `gorm:"column:id;primaryKey"`
	SubmissionID int64 `gorm:"column:submission_id;not null;index"`
	ReviewerID   int64 `gorm:"column:reviewer_id;not null"`
	Score        *int  `gorm:"column:score"`
}

func (ReviewModel) TableName() string { return "exercise_reviews" }

// Models lists the application tables read by the catalog, for test databases
func Models() []any {
	return []any{&CourseModel{}, &UserModel{}, &SubmissionModel{}, &ReviewModel{}}
}

type gormCatalog struct {
	db *gorm.DB
}

// NewGormCatalog reads the surrounding application's tables
func NewGormCatalog(db *gorm.DB) Catalog {
	return &gormCatalog{db: db}
}

func (c *gormCatalog) GetCourse(ctx context.Context, courseID int64) (*Course, error) {
	var m CourseModel
	err := c.db.WithContext(ctx).Where("id = ?", courseID).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return &Course{
		ID:        m.ID,
		TeacherID: m.TeacherID,
		PriceEUR:  m.PriceEUR,
		Approved:  m.Approved,
	}, nil
}

func (c *gormCatalog) GetWallet(ctx context.Context, userID int64) (string, error) {
	var m UserModel
	err := c.db.WithContext(ctx).Select("id", "wallet_address").Where("id = ?", userID).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get wallet: %w", err)
	}
	if m.WalletAddress == nil {
		return "", nil
	}
	return strings.TrimSpace(*m.WalletAddress), nil
}

func (c *gormCatalog) GetSubmission(ctx context.Context, submissionID int64) (*Submission, error) {
	var m SubmissionModel
	err := c.db.WithContext(ctx).
		Preload("Reviews", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Where("id = ?", submissionID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	sub := &Submission{
		ID:                 m.ID,
		CourseID:           m.CourseID,
		StudentID:          m.StudentID,
		RequiredScoreCount: m.RequiredScoreCount,
		Reviews:            make([]Review, 0, len(m.Reviews)),
	}
	for _, r := range m.Reviews {
		sub.Reviews = append(sub.Reviews, Review{
			ReviewID:   r.ID,
			ReviewerID: r.ReviewerID,
			Score:      r.Score,
		})
	}
	return sub, nil
}
