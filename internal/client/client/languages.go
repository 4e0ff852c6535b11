package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/langcrowd/internal/client/models"
)

type LanguagesAPI struct{ g *Gateway }

func (g *Gateway) Languages() *LanguagesAPI { return &LanguagesAPI{g: g} }

func languagePath(id models.ID) string {
	return "languages/" + url.PathEscape(id.String()) + "/"
}

func (a *LanguagesAPI) List(ctx context.Context) ([]models.Language, error) {
	return list[models.Language](ctx, a.g, "languages/")
}

func (a *LanguagesAPI) Create(ctx context.Context, l models.Language) (*models.Language, error) {
	var out models.Language
	if err := a.g.send(ctx, http.MethodPost, "languages/create/", l, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *LanguagesAPI) Update(ctx context.Context, l models.Language) (*models.Language, error) {
	var out models.Language
	if err := a.g.send(ctx, http.MethodPut, languagePath(l.ID), l, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *LanguagesAPI) Delete(ctx context.Context, id models.ID) error {
	return a.g.send(ctx, http.MethodDelete, languagePath(id), nil, nil)
}
