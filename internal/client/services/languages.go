package services

import (
	"context"

	"github.com/dmitrijs2005/langcrowd/internal/client/access"
	"github.com/dmitrijs2005/langcrowd/internal/client/models"
	"github.com/dmitrijs2005/langcrowd/internal/client/query"
	"github.com/dmitrijs2005/langcrowd/internal/client/repositories/mirror"
	"github.com/dmitrijs2005/langcrowd/internal/client/validate"
)

// LanguagesAPI is the backend surface used by LanguageService.
type LanguagesAPI interface {
	List(ctx context.Context) ([]models.Language, error)
	Create(ctx context.Context, l models.Language) (*models.Language, error)
	Update(ctx context.Context, l models.Language) (*models.Language, error)
	Delete(ctx context.Context, id models.ID) error
}

type LanguageService interface {
	// Browse is the public language list shown to every user.
	Browse(ctx context.Context) ([]models.Listed[models.Language], error)
	List(ctx context.Context) ([]models.Listed[models.Language], error)
	Refresh(ctx context.Context) ([]models.Listed[models.Language], error)
	Create(ctx context.Context, l models.Language) models.MutationResult[models.Language]
	Update(ctx context.Context, l models.Language) models.MutationResult[models.Language]
	Delete(ctx context.Context, id models.ID) models.MutationResult[models.Language]
}

type languageService struct {
	api     LanguagesAPI
	session SessionSource
	col     *collection[models.Language]
	public  *collection[models.Language]
}

func NewLanguageService(api LanguagesAPI, deps Deps) LanguageService {
	return &languageService{
		api:     api,
		session: deps.Session,
		col: &collection[models.Language]{
			name:        query.KeyAdminLanguages,
			noun:        "Language",
			mirror:      deps.Mirror,
			cache:       deps.Cache,
			logger:      deps.logger(),
			invalidates: []string{query.KeyLanguages},
			remote: remoteOps[models.Language]{
				create: api.Create,
				update: api.Update,
				delete: func(ctx context.Context, l models.Language) error { return api.Delete(ctx, l.ID) },
			},
		},
		public: &collection[models.Language]{
			name:   query.KeyLanguages,
			noun:   "Language",
			mirror: deps.Mirror,
			cache:  deps.Cache,
			logger: deps.logger(),
		},
	}
}

// Browse shows the public list with the caller's unsynced language changes
// laid over it.
func (s *languageService) Browse(ctx context.Context) ([]models.Listed[models.Language], error) {
	public, err := s.public.list(ctx, s.api.List)
	if err != nil {
		return nil, err
	}
	return s.col.overlay(ctx, public)
}

func (s *languageService) List(ctx context.Context) ([]models.Listed[models.Language], error) {
	return s.col.list(ctx, s.api.List)
}

func (s *languageService) Refresh(ctx context.Context) ([]models.Listed[models.Language], error) {
	s.col.invalidate()
	return s.List(ctx)
}

func (s *languageService) Create(ctx context.Context, l models.Language) models.MutationResult[models.Language] {
	if err := access.Authorize(s.session.Role(), access.ManageLanguages); err != nil {
		return rejected(l, err)
	}
	if err := validate.Language(l); err != nil {
		return rejected(l, err)
	}
	return s.col.apply(ctx, mirror.OpCreate, l, func(ctx context.Context) (*models.Language, error) {
		return s.api.Create(ctx, l)
	})
}

func (s *languageService) Update(ctx context.Context, l models.Language) models.MutationResult[models.Language] {
	if err := access.Authorize(s.session.Role(), access.ManageLanguages); err != nil {
		return rejected(l, err)
	}
	if err := validate.Language(l); err != nil {
		return rejected(l, err)
	}
	return s.col.apply(ctx, mirror.OpUpdate, l, func(ctx context.Context) (*models.Language, error) {
		return s.api.Update(ctx, l)
	})
}

func (s *languageService) Delete(ctx context.Context, id models.ID) models.MutationResult[models.Language] {
	l := models.Language{ID: id}
	if err := access.Authorize(s.session.Role(), access.ManageLanguages); err != nil {
		return rejected(l, err)
	}
	if existing, err := s.col.get(ctx, id); err == nil {
		l = existing
	}
	return s.col.apply(ctx, mirror.OpDelete, l, func(ctx context.Context) (*models.Language, error) {
		return nil, s.api.Delete(ctx, id)
	})
}
