package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sifan077/snipr/internal/app/model"
	"gorm.io/gorm"
)

const (
	uniqueViolation = "23505"
	codeBatchSize   = 500
)

var (
	// ErrLinkNotFound signals that the requested short link does not exist.
	ErrLinkNotFound = errors.New("link not found")

	// ErrCodeTaken signals that another link already owns the code.
	ErrCodeTaken = errors.New("code already in use")
)

// LinkRepository defines the data access contract for short links.
type LinkRepository interface {
	Create(ctx context.Context, link *model.Link) error
	GetByCode(ctx context.Context, code string) (*model.Link, error)
	Exists(ctx context.Context, code string) (bool, error)
	// EachCode streams every stored code to fn in batches.
	EachCode(ctx context.Context, fn func(code string)) error
}

type linkRepository struct {
	db *gorm.DB
}

// NewLinkRepository returns a GORM-backed LinkRepository.
func NewLinkRepository(db *gorm.DB) LinkRepository {
	return &linkRepository{db: db}
}

func (r *linkRepository) Create(ctx context.Context, link *model.Link) error {
	if err := r.db.WithContext(ctx).Create(link).Error; err != nil {
		if isDuplicate(err) {
			return ErrCodeTaken
		}
		return err
	}
	return nil
}

func (r *linkRepository) GetByCode(ctx context.Context, code string) (*model.Link, error) {
	var link model.Link
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}
	return &link, nil
}

func (r *linkRepository) Exists(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.Link{}).
		Where("code = ?", code).
		Limit(1).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *linkRepository) EachCode(ctx context.Context, fn func(code string)) error {
	var batch []model.Link
	return r.db.WithContext(ctx).
		Model(&model.Link{}).
		Select("code").
		FindInBatches(&batch, codeBatchSize, func(tx *gorm.DB, _ int) error {
			for _, l := range batch {
				fn(l.Code)
			}
			return nil
		}).Error
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
