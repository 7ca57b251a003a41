package types

import (
	"cmp"
	"slices"
	"strings"
)

// RecipeSortField names a column recipe listings can be ordered by.
type RecipeSortField string

const (
	SortFieldCreated RecipeSortField = "created"
	SortFieldUpdated RecipeSortField = "updated"
	SortFieldTitle   RecipeSortField = "title"
	SortFieldDepth   RecipeSortField = "depth"
)

// SortDirection is ascending or descending.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// RecipeSortOption is one ordering key.
type RecipeSortOption struct {
	Field     RecipeSortField
	Direction SortDirection
}

// DefaultRecipeSortOptions returns the default ordering for recipe listings:
// newest first with title as tie-breaker.
func DefaultRecipeSortOptions() []RecipeSortOption {
	return []RecipeSortOption{
		{Field: SortFieldCreated, Direction: SortDesc},
		{Field: SortFieldTitle, Direction: SortAsc},
	}
}

// ParseRecipeSortOrder converts a comma-delimited string (e.g. "created-desc,title-asc")
// into a slice of RecipeSortOption values. Unrecognised fields or directions are skipped.
func ParseRecipeSortOrder(raw string) []RecipeSortOption {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	options := make([]RecipeSortOption, 0, len(parts))
	seen := make(map[RecipeSortField]bool)

	for _, part := range parts {
		token := strings.TrimSpace(part)
		if token == "" {
			continue
		}

		field, dir := splitSortToken(token)
		if field == "" || dir == "" {
			continue
		}

		sortField := mapSortField(field)
		if sortField == "" {
			continue
		}

		direction := mapSortDirection(dir)
		if direction == "" {
			continue
		}

		if seen[sortField] {
			continue
		}
		seen[sortField] = true

		options = append(options, RecipeSortOption{
			Field:     sortField,
			Direction: direction,
		})
	}

	return options
}

// EncodeRecipeSortOrder converts a slice of RecipeSortOption values into a canonical
// string representation suitable for query parameters.
func EncodeRecipeSortOrder(options []RecipeSortOption) string {
	if len(options) == 0 {
		return ""
	}

	tokens := make([]string, 0, len(options))
	for _, opt := range options {
		if mapSortField(string(opt.Field)) == "" || mapSortDirection(string(opt.Direction)) == "" {
			continue
		}
		tokens = append(tokens, string(opt.Field)+"-"+string(opt.Direction))
	}
	return strings.Join(tokens, ",")
}

// SortRecipes orders recipes in place, breaking remaining ties by id. Used
// by backends that cannot push ordering into a query.
func SortRecipes(recipes []*Recipe, options []RecipeSortOption) {
	if len(options) == 0 {
		options = DefaultRecipeSortOptions()
	}
	slices.SortStableFunc(recipes, func(a, b *Recipe) int {
		for _, opt := range options {
			var c int
			switch opt.Field {
			case SortFieldCreated:
				c = a.CreatedAt.Compare(b.CreatedAt)
			case SortFieldUpdated:
				c = a.UpdatedAt.Compare(b.UpdatedAt)
			case SortFieldTitle:
				c = cmp.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
			case SortFieldDepth:
				c = cmp.Compare(a.Depth(), b.Depth())
			}
			if opt.Direction == SortDesc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

func splitSortToken(token string) (string, string) {
	if idx := strings.IndexAny(token, ":-"); idx >= 0 {
		left := strings.TrimSpace(token[:idx])
		right := strings.TrimSpace(token[idx+1:])
		return strings.ToLower(left), strings.ToLower(right)
	}
	token = strings.ToLower(token)
	switch token {
	case "updatedasc":
		return "updated", "asc"
	case "updateddesc":
		return "updated", "desc"
	case "createdasc":
		return "created", "asc"
	case "createddesc":
		return "created", "desc"
	case "titleasc":
		return "title", "asc"
	case "titledesc":
		return "title", "desc"
	default:
		return "", ""
	}
}

func mapSortField(raw string) RecipeSortField {
	switch strings.ToLower(raw) {
	case "updated", "updated_at":
		return SortFieldUpdated
	case "created", "created_at":
		return SortFieldCreated
	case "title":
		return SortFieldTitle
	case "depth":
		return SortFieldDepth
	default:
		return ""
	}
}

func mapSortDirection(raw string) SortDirection {
	switch strings.ToLower(raw) {
	case "asc", "ascending":
		return SortAsc
	case "desc", "descending":
		return SortDesc
	default:
		return ""
	}
}
