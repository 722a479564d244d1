package repository

import (
	"context"

	"blogplatform-backend/internal/domains/post/model"

	"github.com/google/uuid"
)

type PostRepository interface {
	Create(ctx context.Context, post *model.BlogPost) error

	// FindByID returns post.ErrPostNotFound when no row exists. Visibility
	// rules live in the service layer; the repository returns drafts too.
	FindByID(ctx context.Context, id uuid.UUID) (*model.BlogPost, error)

	// Update persists all mutable fields and refreshes updated_at.
	Update(ctx context.Context, post *model.BlogPost) error

	Delete(ctx context.Context, id uuid.UUID) error

	SetCoverImage(ctx context.Context, id uuid.UUID, url string) error

	ListPublished(ctx context.Context, limit, offset int) ([]*model.BlogPost, int, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID, limit, offset int) ([]*model.BlogPost, int, error)
	ListAll(ctx context.Context, limit, offset int) ([]*model.BlogPost, int, error)
}
