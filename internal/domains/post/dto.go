package post

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"blogplatform-backend/internal/domains/post/model"
)

// ========================================
// POST DTOs
// ========================================

type CreatePostRequest struct {
	Title              string   `json:"title" binding:"required"`
	Content            string   `json:"content" binding:"required"`
	Summary            *string  `json:"summary,omitempty"`
	SeoKeywords        []string `json:"seo_keywords,omitempty"`
	VideoLinks         []string `json:"video_links,omitempty"`
	PublishImmediately bool     `json:"publish_immediately,omitempty"`
}

func (r CreatePostRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title,
			validation.Required.Error("title is required"),
			validation.Length(1, 500),
		),
		validation.Field(&r.Content,
			validation.Required.Error("content is required"),
		),
		validation.Field(&r.SeoKeywords,
			validation.Length(0, 20).Error("at most 20 keywords"),
		),
		validation.Field(&r.VideoLinks,
			validation.Length(0, 10).Error("at most 10 video links"),
		),
	)
}

// UpdatePostRequest uses pointers so omitted fields stay untouched.
// Published is only changed when explicitly sent.
type UpdatePostRequest struct {
	Title       *string   `json:"title,omitempty"`
	Content     *string   `json:"content,omitempty"`
	Summary     *string   `json:"summary,omitempty"`
	SeoKeywords *[]string `json:"seo_keywords,omitempty"`
	VideoLinks  *[]string `json:"video_links,omitempty"`
	Published   *bool     `json:"published,omitempty"`
}

func (r UpdatePostRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title,
			validation.When(r.Title != nil, validation.Length(1, 500)),
		),
		validation.Field(&r.Content,
			validation.When(r.Content != nil, validation.Length(1, 0)),
		),
	)
}

// PostDTO - public post representation
type PostDTO struct {
	ID            uuid.UUID `json:"id"`
	AuthorID      uuid.UUID `json:"author_id"`
	AuthorName    string    `json:"author_name,omitempty"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	Summary       *string   `json:"summary,omitempty"`
	SeoKeywords   []string  `json:"seo_keywords"`
	CoverImageURL *string   `json:"cover_image_url,omitempty"`
	VideoLinks    []string  `json:"video_links"`
	Published     bool      `json:"published"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func ToDTO(p *model.BlogPost) PostDTO {
	return PostDTO{
		ID:            p.ID,
		AuthorID:      p.AuthorID,
		AuthorName:    p.AuthorName,
		Title:         p.Title,
		Content:       p.Content,
		Summary:       p.Summary,
		SeoKeywords:   p.SeoKeywords,
		CoverImageURL: p.CoverImageURL,
		VideoLinks:    p.VideoLinks,
		Published:     p.Published,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func ToDTOs(posts []*model.BlogPost) []PostDTO {
	dtos := make([]PostDTO, 0, len(posts))
	for _, p := range posts {
		dtos = append(dtos, ToDTO(p))
	}
	return dtos
}

// ========================================
// LIST DTOs
// ========================================

type ListPostsRequest struct {
	Page  int `form:"page" binding:"min=0"`
	Limit int `form:"limit" binding:"min=0,max=100"`
}

func (r *ListPostsRequest) SetDefaults() {
	if r.Page == 0 {
		r.Page = 1
	}
	if r.Limit == 0 {
		r.Limit = 20
	}
}

type ListPostsResponse struct {
	Posts      []PostDTO      `json:"posts"`
	Pagination PaginationMeta `json:"pagination"`
}

type PaginationMeta struct {
	CurrentPage int `json:"current_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
	TotalPages  int `json:"total_pages"`
}

func NewPaginationMeta(page, limit, total int) PaginationMeta {
	if limit <= 0 {
		limit = 1
	}
	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}
	return PaginationMeta{
		CurrentPage: page,
		PerPage:     limit,
		Total:       total,
		TotalPages:  totalPages,
	}
}
