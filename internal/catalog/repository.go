package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("catalog entry not found")

// Repository is the narrow catalog surface the booking core consumes.
// Club/court CRUD is managed elsewhere; the core only cross-validates.
type Repository interface {
	ClubExists(ctx context.Context, id uuid.UUID) (bool, error)
	CourtExists(ctx context.Context, id uuid.UUID) (bool, error)
	GetCourt(ctx context.Context, id uuid.UUID) (*Court, error)
	CourtsByClub(ctx context.Context, clubID uuid.UUID) ([]Court, error)
	HoursForClub(ctx context.Context, clubID uuid.UUID) ([]BusinessHour, error)
	Clubs(ctx context.Context) ([]Club, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ClubExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Club{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *repository) CourtExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Court{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *repository) GetCourt(ctx context.Context, id uuid.UUID) (*Court, error) {
	var court Court
	err := r.db.WithContext(ctx).Preload("Club").Where("id = ?", id).First(&court).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &court, nil
}

func (r *repository) CourtsByClub(ctx context.Context, clubID uuid.UUID) ([]Court, error) {
	var courts []Court
	err := r.db.WithContext(ctx).
		Where("club_id = ?", clubID).
		Order("name").
		Find(&courts).Error
	return courts, err
}

func (r *repository) HoursForClub(ctx context.Context, clubID uuid.UUID) ([]BusinessHour, error) {
	var hours []BusinessHour
	err := r.db.WithContext(ctx).
		Where("club_id = ?", clubID).
		Order("weekday").
		Find(&hours).Error
	return hours, err
}

func (r *repository) Clubs(ctx context.Context) ([]Club, error) {
	var clubs []Club
	err := r.db.WithContext(ctx).
		Preload("Courts").
		Order("name ASC").
		Find(&clubs).Error
	return clubs, err
}
