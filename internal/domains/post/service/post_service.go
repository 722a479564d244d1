package service

import (
	"context"
	"fmt"

	"blogplatform-backend/internal/domains/post"
	"blogplatform-backend/internal/domains/post/model"
	"blogplatform-backend/internal/domains/post/repository"
	"blogplatform-backend/internal/shared"
	"blogplatform-backend/internal/shared/utils"
	"blogplatform-backend/pkg/logger"

	"github.com/google/uuid"
)

// CoverStorage is the slice of the object storage the service needs.
type CoverStorage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	DeleteByURL(ctx context.Context, url string) error
}

// PostService owns the draft/publish lifecycle and its authorization
// rules. Every call receives the acting user explicitly; Get takes a
// nil actor for anonymous readers.
type PostService interface {
	Create(ctx context.Context, actor shared.Actor, req post.CreatePostRequest) (*post.PostDTO, error)
	Get(ctx context.Context, actor *shared.Actor, id uuid.UUID) (*post.PostDTO, error)
	Update(ctx context.Context, actor shared.Actor, id uuid.UUID, req post.UpdatePostRequest) (*post.PostDTO, error)
	Publish(ctx context.Context, actor shared.Actor, id uuid.UUID) (*post.PostDTO, error)
	Unpublish(ctx context.Context, actor shared.Actor, id uuid.UUID) (*post.PostDTO, error)
	Delete(ctx context.Context, actor shared.Actor, id uuid.UUID) error
	SetCoverImage(ctx context.Context, actor shared.Actor, id uuid.UUID, filename string, data []byte, contentType string) (*post.PostDTO, error)

	ListPublished(ctx context.Context, req post.ListPostsRequest) (*post.ListPostsResponse, error)
	ListByAuthor(ctx context.Context, actor shared.Actor, authorID uuid.UUID, req post.ListPostsRequest) (*post.ListPostsResponse, error)
	ListAll(ctx context.Context, actor shared.Actor, req post.ListPostsRequest) (*post.ListPostsResponse, error)
}

type postService struct {
	repo    repository.PostRepository
	storage CoverStorage
}

func NewPostService(repo repository.PostRepository, storage CoverStorage) PostService {
	return &postService{
		repo:    repo,
		storage: storage,
	}
}

// ========================================
// LIFECYCLE
// ========================================

// Create is permitted for any authenticated actor. The new post belongs
// to the actor regardless of any author field the client may send.
func (s *postService) Create(ctx context.Context, actor shared.Actor, req post.CreatePostRequest) (*post.PostDTO, error) {
	// 1. VALIDATE INPUT
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// 2. BUILD ENTITY
	p := &model.BlogPost{
		AuthorID:    actor.ID,
		Title:       req.Title,
		Content:     req.Content,
		Summary:     req.Summary,
		SeoKeywords: emptyIfNil(req.SeoKeywords),
		VideoLinks:  emptyIfNil(req.VideoLinks),
		Published:   req.PublishImmediately,
	}

	// 3. PERSIST
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	logger.Info("Post created", map[string]interface{}{
		"post_id":   p.ID,
		"author_id": actor.ID,
		"published": p.Published,
	})

	dto := post.ToDTO(p)
	return &dto, nil
}

// Get hides drafts from everyone except the author and admins. The
// caller receives NotFound, never Forbidden, so draft existence does
// not leak.
func (s *postService) Get(ctx context.Context, actor *shared.Actor, id uuid.UUID) (*post.PostDTO, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !canView(actor, p) {
		return nil, post.ErrPostNotFound
	}

	dto := post.ToDTO(p)
	return &dto, nil
}

func (s *postService) Update(ctx context.Context, actor shared.Actor, id uuid.UUID, req post.UpdatePostRequest) (*post.PostDTO, error) {
	// 1. VALIDATE INPUT
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// 2. LOAD + AUTHORIZE
	p, err := s.loadForMutation(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	// 3. APPLY FIELDS
	// Omitted fields keep their current values. Published only changes
	// when the client sent it explicitly.
	if req.Title != nil {
		p.Title = *req.Title
	}
	if req.Content != nil {
		p.Content = *req.Content
	}
	if req.Summary != nil {
		p.Summary = req.Summary
	}
	if req.SeoKeywords != nil {
		p.SeoKeywords = *req.SeoKeywords
	}
	if req.VideoLinks != nil {
		p.VideoLinks = *req.VideoLinks
	}
	if req.Published != nil {
		p.Published = *req.Published
	}

	// 4. PERSIST (refreshes updated_at)
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	dto := post.ToDTO(p)
	return &dto, nil
}

// Publish moves Draft -> Published. Publishing an already published
// post is a no-op, not an error.
func (s *postService) Publish(ctx context.Context, actor shared.Actor, id uuid.UUID) (*post.PostDTO, error) {
	return s.setPublished(ctx, actor, id, true)
}

// Unpublish moves Published -> Draft. No-op if already a draft.
func (s *postService) Unpublish(ctx context.Context, actor shared.Actor, id uuid.UUID) (*post.PostDTO, error) {
	return s.setPublished(ctx, actor, id, false)
}

func (s *postService) setPublished(ctx context.Context, actor shared.Actor, id uuid.UUID, published bool) (*post.PostDTO, error) {
	p, err := s.loadForMutation(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if p.Published != published {
		p.Published = published
		if err := s.repo.Update(ctx, p); err != nil {
			return nil, err
		}

		logger.Info("Post publish state changed", map[string]interface{}{
			"post_id":   p.ID,
			"published": published,
		})
	}

	dto := post.ToDTO(p)
	return &dto, nil
}

func (s *postService) Delete(ctx context.Context, actor shared.Actor, id uuid.UUID) error {
	if _, err := s.loadForMutation(ctx, actor, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	logger.Info("Post deleted", map[string]interface{}{
		"post_id":  id,
		"actor_id": actor.ID,
	})

	return nil
}

// SetCoverImage uploads the image under the author's folder and stores
// the resulting URL on the post.
func (s *postService) SetCoverImage(ctx context.Context, actor shared.Actor, id uuid.UUID, filename string, data []byte, contentType string) (*post.PostDTO, error) {
	p, err := s.loadForMutation(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s/%s_%s", p.AuthorID, uuid.New(), utils.SanitizeFilename(filename))

	url, err := s.storage.Upload(ctx, key, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("upload cover image: %w", err)
	}

	if err := s.repo.SetCoverImage(ctx, id, url); err != nil {
		return nil, err
	}

	// The replaced cover is orphaned in storage; removal is best-effort.
	if p.CoverImageURL != nil && *p.CoverImageURL != url {
		if err := s.storage.DeleteByURL(ctx, *p.CoverImageURL); err != nil {
			logger.Error("Failed to delete replaced cover image", err)
		}
	}

	p.CoverImageURL = &url
	dto := post.ToDTO(p)
	return &dto, nil
}

// ========================================
// LISTING
// ========================================

func (s *postService) ListPublished(ctx context.Context, req post.ListPostsRequest) (*post.ListPostsResponse, error) {
	req.SetDefaults()

	posts, total, err := s.repo.ListPublished(ctx, req.Limit, (req.Page-1)*req.Limit)
	if err != nil {
		return nil, err
	}

	return &post.ListPostsResponse{
		Posts:      post.ToDTOs(posts),
		Pagination: post.NewPaginationMeta(req.Page, req.Limit, total),
	}, nil
}

// ListByAuthor returns drafts too, so only the author themselves or an
// admin may call it.
func (s *postService) ListByAuthor(ctx context.Context, actor shared.Actor, authorID uuid.UUID, req post.ListPostsRequest) (*post.ListPostsResponse, error) {
	if actor.ID != authorID && !actor.Admin {
		return nil, post.ErrForbidden
	}

	req.SetDefaults()

	posts, total, err := s.repo.ListByAuthor(ctx, authorID, req.Limit, (req.Page-1)*req.Limit)
	if err != nil {
		return nil, err
	}

	return &post.ListPostsResponse{
		Posts:      post.ToDTOs(posts),
		Pagination: post.NewPaginationMeta(req.Page, req.Limit, total),
	}, nil
}

// ListAll is the admin panel view: every post, drafts included.
func (s *postService) ListAll(ctx context.Context, actor shared.Actor, req post.ListPostsRequest) (*post.ListPostsResponse, error) {
	if !actor.Admin {
		return nil, post.ErrForbidden
	}

	req.SetDefaults()

	posts, total, err := s.repo.ListAll(ctx, req.Limit, (req.Page-1)*req.Limit)
	if err != nil {
		return nil, err
	}

	return &post.ListPostsResponse{
		Posts:      post.ToDTOs(posts),
		Pagination: post.NewPaginationMeta(req.Page, req.Limit, total),
	}, nil
}

// ========================================
// AUTHORIZATION HELPERS
// ========================================

// loadForMutation loads the post and checks write access. Mutations by
// anyone who is neither the author nor an admin fail with Forbidden.
func (s *postService) loadForMutation(ctx context.Context, actor shared.Actor, id uuid.UUID) (*model.BlogPost, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if actor.ID != p.AuthorID && !actor.Admin {
		return nil, post.ErrForbidden
	}

	return p, nil
}

func canView(actor *shared.Actor, p *model.BlogPost) bool {
	if p.Published {
		return true
	}
	if actor == nil {
		return false
	}
	return actor.Admin || actor.ID == p.AuthorID
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
