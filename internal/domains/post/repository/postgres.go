package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"blogplatform-backend/internal/domains/post"
	"blogplatform-backend/internal/domains/post/model"
	"blogplatform-backend/pkg/cache"
	"blogplatform-backend/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

const (
	postCacheKeyFmt     = "post:%s"
	postListCacheKeyFmt = "posts:list:published:%d:%d"
	postCacheTTL        = 5 * time.Minute
)

type postRepo struct {
	db    *pgxpool.Pool
	cache cache.Cache
}

func NewPostRepository(db *pgxpool.Pool, cache cache.Cache) PostRepository {
	return &postRepo{db: db, cache: cache}
}

// ===== CREATE =====

func (r *postRepo) Create(ctx context.Context, p *model.BlogPost) error {
	query := `
		INSERT INTO blog_posts (author_id, title, content, summary, seo_keywords, cover_image_url, video_links, published)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		p.AuthorID,
		p.Title,
		p.Content,
		p.Summary,
		pq.Array(p.SeoKeywords),
		p.CoverImageURL,
		pq.Array(p.VideoLinks),
		p.Published,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}

	r.invalidateListCache(ctx)
	return nil
}

// ===== READ =====

// FindByID is cache-aside: check Redis first, fall back to Postgres,
// then populate the cache.
func (r *postRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.BlogPost, error) {
	cacheKey := fmt.Sprintf(postCacheKeyFmt, id)

	cached := &model.BlogPost{}
	found, err := r.cache.Get(ctx, cacheKey, cached)
	if err != nil {
		// Cache errors are logged, never surfaced
		logger.Error("Post cache get failed", err)
	}
	if found {
		return cached, nil
	}

	query := selectPostColumns + `
		WHERE p.id = $1
	`
	p := &model.BlogPost{}
	err = r.db.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.AuthorID,
		&p.AuthorName,
		&p.Title,
		&p.Content,
		&p.Summary,
		pq.Array(&p.SeoKeywords),
		&p.CoverImageURL,
		pq.Array(&p.VideoLinks),
		&p.Published,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, post.ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to find post: %w", err)
	}

	if err := r.cache.Set(ctx, cacheKey, p, postCacheTTL); err != nil {
		logger.Error("Post cache set failed", err)
	}

	return p, nil
}

// ===== UPDATE =====

func (r *postRepo) Update(ctx context.Context, p *model.BlogPost) error {
	query := `
		UPDATE blog_posts
		SET title = $2, content = $3, summary = $4, seo_keywords = $5,
		    cover_image_url = $6, video_links = $7, published = $8,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query,
		p.ID,
		p.Title,
		p.Content,
		p.Summary,
		pq.Array(p.SeoKeywords),
		p.CoverImageURL,
		pq.Array(p.VideoLinks),
		p.Published,
	).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return post.ErrPostNotFound
		}
		return fmt.Errorf("failed to update post: %w", err)
	}

	r.invalidatePost(ctx, p.ID)
	return nil
}

func (r *postRepo) SetCoverImage(ctx context.Context, id uuid.UUID, url string) error {
	query := `UPDATE blog_posts SET cover_image_url = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id, url)
	if err != nil {
		return fmt.Errorf("failed to set cover image: %w", err)
	}
	if result.RowsAffected() == 0 {
		return post.ErrPostNotFound
	}

	r.invalidatePost(ctx, id)
	return nil
}

// ===== DELETE =====

func (r *postRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM blog_posts WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if result.RowsAffected() == 0 {
		return post.ErrPostNotFound
	}

	r.invalidatePost(ctx, id)
	return nil
}

// ===== LIST =====

// cachedPostList bundles a page with its total for caching.
type cachedPostList struct {
	Posts []*model.BlogPost `json:"posts"`
	Total int               `json:"total"`
}

func (r *postRepo) ListPublished(ctx context.Context, limit, offset int) ([]*model.BlogPost, int, error) {
	cacheKey := fmt.Sprintf(postListCacheKeyFmt, limit, offset)

	cached := &cachedPostList{}
	found, err := r.cache.Get(ctx, cacheKey, cached)
	if err != nil {
		logger.Error("Post list cache get failed", err)
	}
	if found {
		return cached.Posts, cached.Total, nil
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM blog_posts WHERE published = TRUE`
	if err := r.db.QueryRow(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count posts: %w", err)
	}

	query := selectPostColumns + `
		WHERE p.published = TRUE
		ORDER BY p.created_at DESC
		LIMIT $1 OFFSET $2
	`
	posts, err := r.queryPosts(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	if err := r.cache.Set(ctx, cacheKey, cachedPostList{Posts: posts, Total: total}, postCacheTTL); err != nil {
		logger.Error("Post list cache set failed", err)
	}

	return posts, total, nil
}

func (r *postRepo) ListByAuthor(ctx context.Context, authorID uuid.UUID, limit, offset int) ([]*model.BlogPost, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM blog_posts WHERE author_id = $1`
	if err := r.db.QueryRow(ctx, countQuery, authorID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count posts: %w", err)
	}

	query := selectPostColumns + `
		WHERE p.author_id = $1
		ORDER BY p.created_at DESC
		LIMIT $2 OFFSET $3
	`
	posts, err := r.queryPosts(ctx, query, authorID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	return posts, total, nil
}

func (r *postRepo) ListAll(ctx context.Context, limit, offset int) ([]*model.BlogPost, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM blog_posts`
	if err := r.db.QueryRow(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count posts: %w", err)
	}

	query := selectPostColumns + `
		ORDER BY p.created_at DESC
		LIMIT $1 OFFSET $2
	`
	posts, err := r.queryPosts(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	return posts, total, nil
}

// selectPostColumns joins profiles so every read carries the author's
// display name alongside the raw author_id.
const selectPostColumns = `
	SELECT p.id, p.author_id, pr.first_name || ' ' || pr.last_name AS author_name,
	       p.title, p.content, p.summary, p.seo_keywords, p.cover_image_url,
	       p.video_links, p.published, p.created_at, p.updated_at
	FROM blog_posts p
	JOIN profiles pr ON pr.id = p.author_id`

func (r *postRepo) queryPosts(ctx context.Context, query string, args ...interface{}) ([]*model.BlogPost, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	var posts []*model.BlogPost
	for rows.Next() {
		p := &model.BlogPost{}
		err := rows.Scan(
			&p.ID,
			&p.AuthorID,
			&p.AuthorName,
			&p.Title,
			&p.Content,
			&p.Summary,
			pq.Array(&p.SeoKeywords),
			&p.CoverImageURL,
			pq.Array(&p.VideoLinks),
			&p.Published,
			&p.CreatedAt,
			&p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read posts: %w", err)
	}

	return posts, nil
}

// ===== CACHE INVALIDATION =====

func (r *postRepo) invalidatePost(ctx context.Context, id uuid.UUID) {
	if err := r.cache.Delete(ctx, fmt.Sprintf(postCacheKeyFmt, id)); err != nil {
		logger.Error("Post cache invalidation failed", err)
	}
	r.invalidateListCache(ctx)
}

func (r *postRepo) invalidateListCache(ctx context.Context) {
	if err := r.cache.DeletePattern(ctx, "posts:list:*"); err != nil {
		logger.Error("Post list cache invalidation failed", err)
	}
}
