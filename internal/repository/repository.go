// Package repository declares the storage capabilities the services depend on.
// Implementations live in the sub-packages (memory, redis, sqlite); services
// only ever see these interfaces.
package repository

import (
	"context"

	"github.com/sakif/portfolio-forge/internal/model"
)

type ListOptions struct {
	Limit  int
	Offset int
}

// ShareStore maps a share id to a profile snapshot.
//
// Put overwrites any existing record with the same id. Get returns an
// apperror.NotFound for unknown (or, where the backend enforces it, expired)
// ids.
type ShareStore interface {
	Put(ctx context.Context, rec *model.ShareRecord) error
	Get(ctx context.Context, id string) (*model.ShareRecord, error)
}

// FeedbackRepository persists the owner's feedback inbox.
type FeedbackRepository interface {
	Create(ctx context.Context, fb *model.Feedback) error
	GetByID(ctx context.Context, id string) (*model.Feedback, error)
	List(ctx context.Context, opts ListOptions) ([]model.Feedback, error)
	SetReplyDraft(ctx context.Context, id, draft string) error
}
