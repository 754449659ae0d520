package usecase

import (
	"context"
	"sort"
	"strings"

	"selfie/model"
)

// normalizeMembers trims, de-duplicates and drops the author from a sharing list.
func normalizeMembers(list []string, author string) []string {
	seen := make(map[string]struct{}, len(list))
	out := make([]string, 0, len(list))
	for _, name := range list {
		name = strings.TrimSpace(name)
		if name == "" || name == author {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// requireUsers fails with a ValidationError naming the first unknown username.
func requireUsers(ctx context.Context, users UserRepository, field string, names []string) error {
	if len(names) == 0 {
		return nil
	}
	found, err := users.ExistingUsernames(ctx, names)
	if err != nil {
		return err
	}
	known := make(map[string]struct{}, len(found))
	for _, n := range found {
		known[n] = struct{}{}
	}
	for _, n := range names {
		if _, ok := known[n]; !ok {
			return model.NewValidationError(field, "unknown user %q", n)
		}
	}
	return nil
}

// requireTitle trims a title and enforces 1..200 characters.
func requireTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", model.NewValidationError("title", "is required")
	}
	if len([]rune(title)) > 200 {
		return "", model.NewValidationError("title", "must be at most 200 characters")
	}
	return title, nil
}

// normalizeCategories trims, de-duplicates and sorts note categories.
func normalizeCategories(list []string) []string {
	out := normalizeMembers(list, "")
	sort.Strings(out)
	return out
}
