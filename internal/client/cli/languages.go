package cli

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/langcrowd/internal/client/models"
	"github.com/dmitrijs2005/langcrowd/internal/client/validate"
)

func (a *App) Languages(ctx context.Context, _ []string) error {
	langs, err := a.svc.Languages.Browse(ctx)
	if err != nil {
		return err
	}
	if len(langs) == 0 {
		a.println("No languages yet.")
		return nil
	}
	table(a.out, "ID\tNAME\tFAMILY\tSTATUS\tSPEAKERS\tREGIONS\t", func(tw io.Writer) {
		for _, l := range langs {
			speakers := "-"
			if l.Item.EstimatedSpeakers != nil {
				speakers = strconv.Itoa(*l.Item.EstimatedSpeakers)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", l.Item.ID, l.Item.Name,
				models.FormatLabel(string(l.Item.Family)), models.FormatLabel(string(l.Item.EndangermentLevel)),
				speakers, l.Item.Regions, pendingMark(l.Pending))
		}
	})
	return nil
}

func joinLabels[T ~string](vs []T) string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = string(v)
	}
	return strings.Join(out, ", ")
}

// languageForm fills l from prompts. Empty answers keep the current value.
func (a *App) languageForm(l models.Language) (models.Language, error) {
	ask := func(label, current string) (string, error) {
		prompt := label
		if current != "" {
			prompt = fmt.Sprintf("%s [%s]", label, current)
		}
		v, err := a.ask(prompt)
		if err != nil || v == "" {
			return current, err
		}
		return v, nil
	}

	var err error
	if l.Name, err = ask("Name", l.Name); err != nil {
		return l, err
	}
	family, err := ask("Family ("+joinLabels(models.LanguageFamilies)+")", string(l.Family))
	if err != nil {
		return l, err
	}
	l.Family = models.LanguageFamily(strings.ToLower(family))
	if l.Regions, err = ask("Regions", l.Regions); err != nil {
		return l, err
	}
	level, err := ask("Endangerment level ("+joinLabels(models.EndangermentLevels)+")", string(l.EndangermentLevel))
	if err != nil {
		return l, err
	}
	l.EndangermentLevel = models.EndangermentLevel(strings.ToLower(level))

	current := ""
	if l.EstimatedSpeakers != nil {
		current = strconv.Itoa(*l.EstimatedSpeakers)
	}
	speakers, err := ask("Estimated speakers (optional)", current)
	if err != nil {
		return l, err
	}
	if speakers != "" {
		n, err := strconv.Atoi(strings.ReplaceAll(speakers, ",", ""))
		if err != nil {
			return l, validate.FromFields(map[string][]string{"estimated_speakers": {"Enter a whole number"}})
		}
		l.EstimatedSpeakers = &n
	}
	if l.ISOCode, err = ask("ISO code (optional)", l.ISOCode); err != nil {
		return l, err
	}
	if l.Description, err = ask("Description (optional)", l.Description); err != nil {
		return l, err
	}
	return l, nil
}

func (a *App) AddLanguage(ctx context.Context, _ []string) error {
	l, err := a.languageForm(models.Language{})
	if err != nil {
		return err
	}
	report(a, a.svc.Languages.Create(ctx, l))
	return nil
}

func (a *App) EditLanguage(ctx context.Context, args []string) error {
	langs, err := a.svc.Languages.List(ctx)
	if err != nil {
		return err
	}
	id := models.ID(args[0])
	i := slices.IndexFunc(langs, func(l models.Listed[models.Language]) bool { return l.Item.ID == id })
	if i < 0 {
		a.println("No language with id", id)
		return nil
	}
	l, err := a.languageForm(langs[i].Item)
	if err != nil {
		return err
	}
	report(a, a.svc.Languages.Update(ctx, l))
	return nil
}

func (a *App) DeleteLanguage(ctx context.Context, args []string) error {
	report(a, a.svc.Languages.Delete(ctx, models.ID(args[0])))
	return nil
}
