package ai

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type SuggestRequest struct {
	Content string `json:"content" binding:"required"`
}

func (r SuggestRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Content, validation.Required.Error("content is required")),
	)
}

type HeadlinesResponse struct {
	Headlines []string `json:"headlines"`
}

type KeywordsResponse struct {
	Keywords []string `json:"keywords"`
}

type SummaryResponse struct {
	Summary string `json:"summary"`
}

type ImproveResponse struct {
	Content string `json:"content"`
}
