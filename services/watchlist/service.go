package watchlist

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/sourcegraph/conc/pool"

	"novaflix/internal/database"
	"novaflix/models"
)

var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrAlreadyInWatchlist = errors.New("movie already in watchlist")
	ErrTitleNotFound      = errors.New("movie not found")
	ErrNotInWatchlist     = errors.New("movie not in watchlist")
)

const defaultWorkers = 8

// Store is the slice of the account store the watchlist needs.
type Store interface {
	FindByID(ctx context.Context, id string) (models.Account, error)
	UpdateFields(ctx context.Context, id string, update models.AccountUpdate) (models.Account, error)
}

// Catalog resolves title ids to full records.
type Catalog interface {
	Details(ctx context.Context, movieID int64) (*models.CatalogItemDetail, bool)
}

// Service manages the ordered list of movie ids saved on each account.
// Mutations are read-modify-write; concurrent edits of one account may lose
// an update.
type Service struct {
	store   Store
	catalog Catalog
	workers int
	now     func() time.Time
}

func NewService(store Store, catalog Catalog, workers int) *Service {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Service{
		store:   store,
		catalog: catalog,
		workers: workers,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Add appends movieID to the account's watchlist once the catalog confirms
// the title exists.
func (s *Service) Add(ctx context.Context, accountID string, movieID int64) error {
	account, err := s.load(ctx, accountID)
	if err != nil {
		return err
	}
	if account.InWatchlist(movieID) {
		return ErrAlreadyInWatchlist
	}
	if _, ok := s.catalog.Details(ctx, movieID); !ok {
		return ErrTitleNotFound
	}

	ids := append(append(make([]int64, 0, len(account.Watchlist)+1), account.Watchlist...), movieID)
	return s.save(ctx, accountID, ids)
}

// Remove drops movieID from the account's watchlist.
func (s *Service) Remove(ctx context.Context, accountID string, movieID int64) error {
	account, err := s.load(ctx, accountID)
	if err != nil {
		return err
	}
	if !account.InWatchlist(movieID) {
		return ErrNotInWatchlist
	}

	ids := make([]int64, 0, len(account.Watchlist))
	for _, id := range account.Watchlist {
		if id != movieID {
			ids = append(ids, id)
		}
	}
	return s.save(ctx, accountID, ids)
}

// List hydrates the stored ids in order. Titles the catalog cannot resolve are
// skipped; the stored list is left as is.
func (s *Service) List(ctx context.Context, accountID string) ([]models.CatalogItem, error) {
	account, err := s.load(ctx, accountID)
	if err != nil {
		return nil, err
	}

	resolved := make([]*models.CatalogItemDetail, len(account.Watchlist))
	p := pool.New().WithMaxGoroutines(s.workers)
	for i, id := range account.Watchlist {
		p.Go(func() {
			if detail, ok := s.catalog.Details(ctx, id); ok {
				resolved[i] = detail
			}
		})
	}
	p.Wait()

	items := make([]models.CatalogItem, 0, len(resolved))
	for i, detail := range resolved {
		if detail == nil {
			log.Printf("[watchlist] skipping unresolved title account=%s movie=%d", accountID, account.Watchlist[i])
			continue
		}
		items = append(items, detail.Summary())
	}
	return items, nil
}

func (s *Service) load(ctx context.Context, accountID string) (models.Account, error) {
	account, err := s.store.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return models.Account{}, ErrAccountNotFound
		}
		return models.Account{}, fmt.Errorf("load account: %w", err)
	}
	return account, nil
}

func (s *Service) save(ctx context.Context, accountID string, ids []int64) error {
	_, err := s.store.UpdateFields(ctx, accountID, models.AccountUpdate{
		Watchlist: &ids,
		UpdatedAt: s.now(),
	})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("save watchlist: %w", err)
	}
	return nil
}
