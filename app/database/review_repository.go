package database

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

var _ ReviewRepository = (*ReviewRepo)(nil)

// ReviewRepo handles database operations for product reviews
type ReviewRepo struct {
	db *DB
}

func NewReviewRepository(db *DB) *ReviewRepo {
	return &ReviewRepo{db: db}
}

// CreateReview stores a new review and returns the persisted record
func (r *ReviewRepo) CreateReview(ctx context.Context, productID, userID string, rating int, comment string) (*Review, error) {
	id := uuid.New().String()

	var review Review
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO reviews (id, product_id, user_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, product_id, user_id, rating, comment, created_at, updated_at
	`, id, productID, userID, rating, comment).Scan(
		&review.ID, &review.ProductID, &review.UserID, &review.Rating,
		&review.Comment, &review.CreatedAt, &review.UpdatedAt,
	)
	if err != nil {
		return nil, &StoreError{Op: "create_review", Err: err}
	}

	return &review, nil
}

// GetReviews returns all reviews for a product, newest first
func (r *ReviewRepo) GetReviews(ctx context.Context, productID string) ([]Review, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, user_id, rating, comment, created_at, updated_at
		FROM reviews
		WHERE product_id = $1
		ORDER BY created_at DESC
	`, productID)
	if err != nil {
		return nil, &StoreError{Op: "get_reviews", Err: err}
	}
	defer rows.Close()

	var reviews []Review
	for rows.Next() {
		var review Review
		err := rows.Scan(
			&review.ID, &review.ProductID, &review.UserID, &review.Rating,
			&review.Comment, &review.CreatedAt, &review.UpdatedAt,
		)
		if err != nil {
			return nil, &StoreError{Op: "scan_review", Err: err}
		}
		reviews = append(reviews, review)
	}

	if err := rows.Err(); err != nil {
		return nil, &StoreError{Op: "iterate_reviews", Err: err}
	}

	return reviews, nil
}

// GetReviewCount returns the total number of reviews
func (r *ReviewRepo) GetReviewCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM reviews").Scan(&count)
	if err != nil {
		return 0, &StoreError{Op: "get_review_count", Err: err}
	}
	return count, nil
}

// DeleteReview removes a review by id
func (r *ReviewRepo) DeleteReview(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM reviews WHERE id = $1", id)
	if err != nil {
		return &StoreError{Op: "delete_review", Err: err}
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return &StoreError{Op: "delete_review", Err: err}
	}
	if affected == 0 {
		return &StoreError{Op: "delete_review", Err: sql.ErrNoRows}
	}

	return nil
}
