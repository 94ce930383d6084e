package repositories

import (
	"context"
	"errors"

	"github.com/anonto42/quartfeed/internal/models"
	"gorm.io/gorm"
)

var (
	ErrRelationshipNotFound = errors.New("relationship not found")
	ErrAlreadyFollowing     = errors.New("already following")
)

// RelationshipRepository defines the interface for follow data operations
type RelationshipRepository interface {
	CreateRelationship(ctx context.Context, rel *models.Relationship) error
	DeleteRelationship(ctx context.Context, fmUserID, toUserID uint) error
	ExistingRelationship(ctx context.Context, fmUserID, toUserID uint) (bool, error)
	GetFollowers(ctx context.Context, userID uint) ([]models.User, error)
	GetFollowing(ctx context.Context, userID uint) ([]models.User, error)
	GetFollowersCount(ctx context.Context, userID uint) (int64, error)
	GetFollowingCount(ctx context.Context, userID uint) (int64, error)
}

// PostgresRelationshipRepository implements RelationshipRepository with gorm
type PostgresRelationshipRepository struct {
	db *gorm.DB
}

// NewPostgresRelationshipRepository creates a new PostgresRelationshipRepository
func NewPostgresRelationshipRepository(db *gorm.DB) *PostgresRelationshipRepository {
	return &PostgresRelationshipRepository{db: db}
}

// CreateRelationship inserts rel. The unique (fm, to) index turns a
// concurrent duplicate into ErrAlreadyFollowing.
func (r *PostgresRelationshipRepository) CreateRelationship(ctx context.Context, rel *models.Relationship) error {
	err := r.db.WithContext(ctx).Omit("FmUser", "ToUser").Create(rel).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrAlreadyFollowing
	}
	return err
}

func (r *PostgresRelationshipRepository) DeleteRelationship(ctx context.Context, fmUserID, toUserID uint) error {
	res := r.db.WithContext(ctx).
		Where("fm_user_id = ? AND to_user_id = ?", fmUserID, toUserID).
		Delete(&models.Relationship{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRelationshipNotFound
	}
	return nil
}

func (r *PostgresRelationshipRepository) ExistingRelationship(ctx context.Context, fmUserID, toUserID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Relationship{}).
		Where("fm_user_id = ? AND to_user_id = ?", fmUserID, toUserID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresRelationshipRepository) GetFollowers(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	db := r.db.WithContext(ctx)
	err := db.Where("id IN (?)",
		db.Model(&models.Relationship{}).Select("fm_user_id").Where("to_user_id = ?", userID),
	).Order("username").Find(&users).Error
	return users, err
}

func (r *PostgresRelationshipRepository) GetFollowing(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	db := r.db.WithContext(ctx)
	err := db.Where("id IN (?)",
		db.Model(&models.Relationship{}).Select("to_user_id").Where("fm_user_id = ?", userID),
	).Order("username").Find(&users).Error
	return users, err
}

func (r *PostgresRelationshipRepository) GetFollowersCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Relationship{}).Where("to_user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *PostgresRelationshipRepository) GetFollowingCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Relationship{}).Where("fm_user_id = ?", userID).Count(&count).Error
	return count, err
}
