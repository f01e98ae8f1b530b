package repository

import (
	"context"

	"github.com/sangkips/enquiry-api/internal/domain/filter"
	domainRepo "github.com/sangkips/enquiry-api/internal/domain/repository"
	"github.com/sangkips/enquiry-api/pkg/pagination"
)

var newestFirst = []domainRepo.SortField{{Field: "createdAt", Desc: true}, {Field: "_id", Desc: true}}

// findPage counts f and loads one page of it
func findPage[T any](ctx context.Context, coll domainRepo.Collection, f filter.Filter, sort []domainRepo.SortField, params *pagination.PaginationParams) ([]T, int64, error) {
	items := []T{}
	total, err := coll.Count(ctx, f)
	if err != nil || total == 0 {
		return items, total, err
	}
	skip, limit := params.Window()
	err = coll.Find(ctx, f, domainRepo.FindOptions{Sort: sort, Skip: skip, Limit: limit}, &items)
	return items, total, err
}

// findOne loads the first document matching f, or nil when there is none
func findOne[T any](ctx context.Context, coll domainRepo.Collection, f filter.Filter) (*T, error) {
	var out T
	found, err := coll.FindOne(ctx, f, &out)
	if err != nil || !found {
		return nil, err
	}
	return &out, nil
}

// updateOne applies p to the first document matching f and returns it, or nil
// when nothing matched
func updateOne[T any](ctx context.Context, coll domainRepo.Collection, f filter.Filter, p domainRepo.Patch) (*T, error) {
	var out T
	found, err := coll.FindOneAndUpdate(ctx, f, p, &out)
	if err != nil || !found {
		return nil, err
	}
	return &out, nil
}

func byID(id any) filter.Filter {
	return filter.Eq("_id", id)
}
