package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerCategoryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listCategories",
		Method:      http.MethodGet,
		Path:        "/api/v1/categories",
		Summary:     "List categories",
		Description: "Returns default and custom categories",
		Tags:        []string{"Categories"},
	}, s.handleListCategories)

	huma.Register(s.api, huma.Operation{
		OperationID: "createCategory",
		Method:      http.MethodPost,
		Path:        "/api/v1/categories",
		Summary:     "Create category",
		Description: "Adds a custom category",
		Tags:        []string{"Categories"},
	}, s.handleCreateCategory)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteCategory",
		Method:      http.MethodDelete,
		Path:        "/api/v1/categories/{name}",
		Summary:     "Delete category",
		Description: "Removes a custom category, reassigning its sounds to the default",
		Tags:        []string{"Categories"},
	}, s.handleDeleteCategory)
}

// === DTOs ===

type ListCategoriesResponse struct {
	Categories []string `json:"categories" doc:"All categories, defaults first"`
	Custom     []string `json:"custom" doc:"Custom categories only"`
}

type ListCategoriesOutput struct {
	Body ListCategoriesResponse
}

type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,min=1,max=50,category_name" doc:"Category name"`
}

type CreateCategoryInput struct {
	Body CreateCategoryRequest
}

type DeleteCategoryInput struct {
	Name string `path:"name" doc:"Category name"`
}

// === Handlers ===

func (s *Server) handleListCategories(_ context.Context, _ *struct{}) (*ListCategoriesOutput, error) {
	all, custom := s.library.Categories()
	return &ListCategoriesOutput{Body: ListCategoriesResponse{
		Categories: all,
		Custom:     custom,
	}}, nil
}

func (s *Server) handleCreateCategory(ctx context.Context, input *CreateCategoryInput) (*MessageOutput, error) {
	if err := s.validate.Validate(input.Body); err != nil {
		return nil, err
	}

	if err := s.library.CreateCategory(ctx, input.Body.Name); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Category created"}}, nil
}

func (s *Server) handleDeleteCategory(ctx context.Context, input *DeleteCategoryInput) (*MessageOutput, error) {
	if err := s.library.DeleteCategory(ctx, input.Name); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Category deleted"}}, nil
}
