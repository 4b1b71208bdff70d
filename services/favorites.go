package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/echord/echord-backend/models"
)

// Plain persistence errors for the favorites resource.
var (
	ErrFavoriteNotFound  = errors.New("favorite not found")
	ErrDuplicateFavorite = errors.New("a favorite with that IP already exists")
)

// FavoritesService is the CRUD layer for bookmarked hosts.
type FavoritesService struct {
	db *gorm.DB
}

func NewFavoritesService(gdb *gorm.DB) *FavoritesService {
	return &FavoritesService{db: gdb}
}

// List returns a page of favorites, newest first, optionally filtered
// by an IP or alias substring.
func (f *FavoritesService) List(search string, page, size int) ([]models.Favorite, int64, error) {
	q := f.db.Model(&models.Favorite{})
	if search != "" {
		like := "%" + search + "%"
		q = q.Where("ip LIKE ? OR alias LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var favorites []models.Favorite
	err := q.Order("created_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&favorites).Error
	if err != nil {
		return nil, 0, err
	}
	return favorites, total, nil
}

// Create inserts a new favorite. The IP is unique across favorites.
func (f *FavoritesService) Create(req models.CreateFavoriteRequest) (*models.Favorite, error) {
	fav := models.Favorite{
		IP:    req.IP,
		Alias: req.Alias,
		Notes: req.Notes,
		Tags:  req.Tags,
	}
	if fav.Tags == nil {
		fav.Tags = []string{}
	}
	if err := f.db.Create(&fav).Error; err != nil {
		if isDuplicate(err) {
			return nil, ErrDuplicateFavorite
		}
		return nil, err
	}
	return &fav, nil
}

// GetByID fetches one favorite.
func (f *FavoritesService) GetByID(id uint) (*models.Favorite, error) {
	var fav models.Favorite
	if err := f.db.First(&fav, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFavoriteNotFound
		}
		return nil, err
	}
	return &fav, nil
}

// Update replaces every field of an existing favorite (PUT semantics).
func (f *FavoritesService) Update(id uint, req models.CreateFavoriteRequest) (*models.Favorite, error) {
	fav, err := f.GetByID(id)
	if err != nil {
		return nil, err
	}

	fav.IP = req.IP
	fav.Alias = req.Alias
	fav.Notes = req.Notes
	fav.Tags = req.Tags
	if fav.Tags == nil {
		fav.Tags = []string{}
	}

	if err := f.db.Save(fav).Error; err != nil {
		if isDuplicate(err) {
			return nil, ErrDuplicateFavorite
		}
		return nil, err
	}
	return fav, nil
}

// Patch applies only the fields present in req (PATCH semantics).
func (f *FavoritesService) Patch(id uint, req models.UpdateFavoriteRequest) (*models.Favorite, error) {
	fav, err := f.GetByID(id)
	if err != nil {
		return nil, err
	}

	if req.IP != nil {
		fav.IP = *req.IP
	}
	if req.Alias != nil {
		fav.Alias = *req.Alias
	}
	if req.Notes != nil {
		fav.Notes = *req.Notes
	}
	if req.Tags != nil {
		fav.Tags = *req.Tags
	}

	if err := f.db.Save(fav).Error; err != nil {
		if isDuplicate(err) {
			return nil, ErrDuplicateFavorite
		}
		return nil, err
	}
	return fav, nil
}

// Delete removes a favorite by ID. Hard delete: a removed IP must be
// bookmarkable again, so the row cannot linger under the unique index.
func (f *FavoritesService) Delete(id uint) error {
	res := f.db.Unscoped().Delete(&models.Favorite{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrFavoriteNotFound
	}
	return nil
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
