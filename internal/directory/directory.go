// Package directory provides read-only queries against the external CRM
// directory: responsible managers, valid enterprise codes, and enterprise
// display names.
//
// The directory is treated as unreliable. Every query is bounded by a
// timeout and every failure degrades to a documented fallback value —
// nothing from this boundary propagates as an error to the router.
package directory

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"gorm.io/gorm"
)

// SentinelCode is the single enterprise code accepted when the
// valid-codes query fails, so authorization stays possible during a CRM
// outage.
const SentinelCode int64 = 666

// DefaultTimeout bounds each directory query when no timeout is
// configured.
const DefaultTimeout = 5 * time.Second

// Gateway is the read-only directory contract the router depends on.
// Implementations must absorb their own failures: each operation returns
// a degraded-but-usable result, never an error.
type Gateway interface {
	// ManagersForEnterprise returns the managers responsible for the
	// enterprise with the given code, or all managers when code is 0.
	// An empty result falls back to the configured default manager.
	ManagersForEnterprise(ctx context.Context, code int64) []int64

	// ValidEnterpriseCodes returns the set of codes accepted for
	// authorization. A failed query falls back to {SentinelCode}.
	ValidEnterpriseCodes(ctx context.Context) map[int64]bool

	// EnterpriseName returns the display name for a code, falling back
	// to the code's decimal form when not found.
	EnterpriseName(ctx context.Context, code int64) string
}

// SQLGateway implements Gateway over a relational CRM schema with an
// `enterprises` table (code, name, manager_id).
type SQLGateway struct {
	db             *gorm.DB
	defaultManager int64
	timeout        time.Duration
}

// SQLGatewayOpts holds parameters for creating a SQLGateway.
type SQLGatewayOpts struct {
	DB             *gorm.DB
	DefaultManager int64         // fallback when no responsible manager is found
	Timeout        time.Duration // per-query bound; defaults to DefaultTimeout
}

// NewSQLGateway creates a SQLGateway.
func NewSQLGateway(opts SQLGatewayOpts) (*SQLGateway, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("directory: db is required")
	}
	if opts.DefaultManager == 0 {
		return nil, fmt.Errorf("directory: default manager is required")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &SQLGateway{
		db:             opts.DB,
		defaultManager: opts.DefaultManager,
		timeout:        timeout,
	}, nil
}

// ManagersForEnterprise returns responsible manager chat IDs. Failures
// and empty results fall back to the default manager.
func (g *SQLGateway) ManagersForEnterprise(ctx context.Context, code int64) []int64 {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	var managers []int64
	q := g.db.WithContext(ctx).
		Table("enterprises").
		Distinct("manager_id").
		Where("manager_id > 0")
	if code != 0 {
		q = q.Where("code = ?", code)
	}
	if err := q.Order("manager_id").Pluck("manager_id", &managers).Error; err != nil {
		log.Printf("directory: managers query (code=%d): %v", code, err)
		return []int64{g.defaultManager}
	}
	if len(managers) == 0 {
		return []int64{g.defaultManager}
	}
	return managers
}

// ValidEnterpriseCodes returns the set of enterprise codes accepted for
// authorization. On query failure the set degrades to {SentinelCode}.
func (g *SQLGateway) ValidEnterpriseCodes(ctx context.Context) map[int64]bool {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	var codes []int64
	err := g.db.WithContext(ctx).
		Table("enterprises").
		Pluck("code", &codes).Error
	if err != nil || len(codes) == 0 {
		if err != nil {
			log.Printf("directory: codes query: %v", err)
		}
		return map[int64]bool{SentinelCode: true}
	}

	set := make(map[int64]bool, len(codes))
	for _, c := range codes {
		set[c] = true
	}
	return set
}

// EnterpriseName returns the display name for a code, or its decimal form
// when the directory has no entry (or the query fails).
func (g *SQLGateway) EnterpriseName(ctx context.Context, code int64) string {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	var name string
	err := g.db.WithContext(ctx).
		Table("enterprises").
		Where("code = ?", code).
		Limit(1).
		Pluck("name", &name).Error
	if err != nil {
		log.Printf("directory: name query (code=%d): %v", code, err)
		return strconv.FormatInt(code, 10)
	}
	if name == "" {
		return strconv.FormatInt(code, 10)
	}
	return name
}
