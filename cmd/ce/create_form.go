package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/collaboreats/collaboreats/internal/types"
)

func runCreateForm() error {
	var (
		title        string
		description  string
		ingredients  string
		instructions string
		photo        string
		confirmed    = true
	)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Description("Name of the recipe (required)").
				Placeholder("e.g., Grandma's lasagna").
				Value(&title).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("title is required")
					}
					if len(s) > 500 {
						return fmt.Errorf("title must be 500 characters or less")
					}
					return nil
				}),

			huh.NewInput().
				Title("Description").
				Description("One line about it (optional)").
				Value(&description),

			huh.NewText().
				Title("Ingredients").
				Description(`One per line: "amount unit name" or just "name"`).
				Placeholder("500 g pasta\n2 cups tomato sauce\nbasil").
				Value(&ingredients).
				Validate(func(s string) error {
					_, err := parseIngredients(nonEmptyLines(s))
					return err
				}),
		),

		huh.NewGroup(
			huh.NewText().
				Title("Instructions").
				Description("Markdown is rendered by `ce show`").
				CharLimit(20000).
				Value(&instructions),

			huh.NewInput().
				Title("Photo").
				Description("File name or URL (optional)").
				Value(&photo),

			huh.NewConfirm().
				Title("Create this recipe?").
				Affirmative("Create").
				Negative("Cancel").
				Value(&confirmed),
		),
	).WithTheme(huh.ThemeDracula())

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("Recipe creation cancelled.")
			return nil
		}
		return fmt.Errorf("form: %w", err)
	}
	if !confirmed {
		fmt.Println("Recipe creation cancelled.")
		return nil
	}

	parsed, err := parseIngredients(nonEmptyLines(ingredients))
	if err != nil {
		return err
	}
	return createRecipe(&types.Recipe{
		Title:        strings.TrimSpace(title),
		OwnerID:      createOwner,
		Description:  strings.TrimSpace(description),
		Ingredients:  parsed,
		Instructions: instructions,
		Photo:        strings.TrimSpace(photo),
	})
}

func nonEmptyLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}
