package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/collaboreats/collaboreats/internal/debug"
	"github.com/collaboreats/collaboreats/internal/types"
	"github.com/collaboreats/collaboreats/internal/ui"
)

var (
	createDescription  string
	createInstructions string
	createIngredients  []string
	createPhoto        string
	createOwner        string
	createForm         bool
	createFile         string
	createID           string
)

var createCmd = &cobra.Command{
	Use:     "create [title]",
	GroupID: "recipes",
	Aliases: []string{"new"},
	Short:   "Create a new root recipe",
	Long: `Create a new root recipe, the first version of a new fork tree.

Ingredients are given as "amount unit name" or just "name":

  ce create "Lasagna" -i "500 g pasta" -i "2 cups tomato sauce" -i basil

Without a title on an interactive terminal, a form is shown instead.
Instructions may be read from a file with --instructions-file (use - for stdin).`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if createForm || (len(args) == 0 && term.IsTerminal(int(os.Stdin.Fd())) && !jsonOutput) {
			return runCreateForm()
		}
		if len(args) == 0 {
			return withHint(fmt.Errorf("a title is required"), "ce create \"Title\" or run interactively for a form")
		}

		instructions := createInstructions
		if createFile != "" {
			text, err := readTextArg(createFile)
			if err != nil {
				return err
			}
			instructions = text
		}
		ingredients, err := parseIngredients(createIngredients)
		if err != nil {
			return err
		}

		recipe := &types.Recipe{
			ID:           createID,
			Title:        args[0],
			OwnerID:      createOwner,
			Description:  createDescription,
			Ingredients:  ingredients,
			Instructions: instructions,
			Photo:        createPhoto,
		}
		return createRecipe(recipe)
	},
}

// createRecipe stores r as a new root and reports it.
func createRecipe(r *types.Recipe) error {
	if r.OwnerID == "" {
		r.OwnerID = getActor()
	}
	if err := store.CreateRecipe(rootCtx, r, getActor()); err != nil {
		return fmt.Errorf("create recipe: %w", err)
	}
	debug.LogEvent(dataDir(), debug.EventCreate, r.ID, getActor(), r.Title)

	if jsonOutput {
		return outputJSON(r)
	}
	fmt.Printf("%s Created recipe %s: %s\n", ui.RenderPass("✓"), ui.RenderID(r.ID, true), r.Title)
	return nil
}

// parseIngredients reads "amount unit name" lines. A leading token that is
// not a number makes the whole line the ingredient name.
func parseIngredients(lines []string) ([]types.Ingredient, error) {
	out := make([]types.Ingredient, 0, len(lines))
	for _, line := range lines {
		in, err := parseIngredient(line)
		if err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, nil
}

func parseIngredient(line string) (types.Ingredient, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return types.Ingredient{}, fmt.Errorf("empty ingredient")
	}
	amount, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return types.Ingredient{Ingredient: strings.Join(fields, " ")}, nil
	}
	if amount < 0 {
		return types.Ingredient{}, fmt.Errorf("ingredient %q: amount cannot be negative", line)
	}
	switch len(fields) {
	case 1:
		return types.Ingredient{}, fmt.Errorf("ingredient %q: missing name", line)
	case 2:
		return types.Ingredient{Amount: amount, Ingredient: fields[1]}, nil
	}
	return types.Ingredient{
		Amount:        amount,
		UnitOfMeasure: fields[1],
		Ingredient:    strings.Join(fields[2:], " "),
	}, nil
}

// readTextArg reads path, or stdin for "-".
func readTextArg(path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path) // #nosec G304 -- user-supplied path
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

func init() {
	createCmd.Flags().StringVarP(&createDescription, "description", "d", "", "Short description")
	createCmd.Flags().StringVar(&createInstructions, "instructions", "", "Preparation steps (markdown)")
	createCmd.Flags().StringVar(&createFile, "instructions-file", "", "Read instructions from a file (- for stdin)")
	createCmd.Flags().StringArrayVarP(&createIngredients, "ingredient", "i", nil, `Ingredient as "amount unit name" (repeatable)`)
	createCmd.Flags().StringVar(&createPhoto, "photo", "", "Photo file name or URL")
	createCmd.Flags().StringVar(&createOwner, "owner", "", "Owner (default: actor)")
	createCmd.Flags().StringVar(&createID, "id", "", "Explicit recipe id (default: generated)")
	createCmd.Flags().BoolVar(&createForm, "form", false, "Use the interactive form")
	rootCmd.AddCommand(createCmd)
}
