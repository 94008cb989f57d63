package bunrepo

import (
	"github.com/goliatone/go-shoplist/pkg/interfaces/store"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func withID(id uuid.UUID) repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.id = ?", id)
	}
}

func withoutDeleted() repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.deleted_at IS NULL")
	}
}

func withListOptions(opts store.ListOptions) repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		if !opts.IncludeSoftDeleted {
			q = q.Where("?TableAlias.deleted_at IS NULL")
		}
		if !opts.Since.IsZero() {
			q = q.Where("?TableAlias.created_at >= ?", opts.Since)
		}
		if !opts.Until.IsZero() {
			q = q.Where("?TableAlias.created_at <= ?", opts.Until)
		}
		if opts.Limit > 0 {
			q = q.Limit(opts.Limit)
		}
		if opts.Offset > 0 {
			q = q.Offset(opts.Offset)
		}
		return q.Order("created_at DESC")
	}
}
