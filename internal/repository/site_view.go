package repository

import (
	"time"

	"github.com/jmoiron/sqlx"
)

type SiteViewRepository interface {
	Record(ipHash, day string) error
	UniqueVisitors() (int, error)
}

type siteViewRepository struct {
	db *sqlx.DB
}

func NewSiteViewRepository(db *sqlx.DB) SiteViewRepository {
	return &siteViewRepository{db: db}
}

// Record inserts one view row per (ip_hash, day). The uniqueness constraint
// is enforced at the storage layer, so concurrent duplicate inserts race
// safely: the loser is an ignorable no-op, not an error.
func (r *siteViewRepository) Record(ipHash, day string) error {
	query := `INSERT INTO site_views (ip_hash, viewed_at, created_at)
	          VALUES ($1, $2, $3)
	          ON CONFLICT (ip_hash, viewed_at) DO NOTHING`

	_, err := r.db.Exec(query, ipHash, day, time.Now())
	return err
}

// UniqueVisitors counts distinct hashed IPs across all time.
func (r *siteViewRepository) UniqueVisitors() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(DISTINCT ip_hash) FROM site_views`).Scan(&count)
	return count, err
}
