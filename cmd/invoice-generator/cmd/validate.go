package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rezonia/invoice-generator/internal/generator"
	"github.com/rezonia/invoice-generator/internal/model"
)

var validateCmd = &cobra.Command{
	Use:   "validate [files...]",
	Short: "Validate invoice input files",
	Long: `Validate one or more invoice input files without generating anything.

Checks performed, stopping at the first failure per file:
  - Company and client names present
  - At least one item; each with a description, quantity > 0 and unit price >= 0
  - Output formats, when given, are PDF, HTML or JSON
  - Invoice and due dates, when given, are real YYYY-MM-DD dates

No invoice number is issued.

Examples:
  invoice-generator validate order.json
  invoice-generator validate orders/*.json -f table`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		return fmt.Errorf("no files found to validate")
	}

	gen := newCheckGenerator()
	results := make([]*ValidationResult, 0, len(files))
	allValid := true

	for _, file := range files {
		result := validateFile(gen, file)
		results = append(results, result)

		if !result.Valid {
			allValid = false
		}
	}

	// Output results
	if outputFormat == "json" {
		if err := writeJSON(os.Stdout, results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			if r.Valid {
				fmt.Printf("✓ %s: VALID\n", r.File)
			} else {
				fmt.Printf("✗ %s: INVALID\n", r.File)
				for _, e := range r.Errors {
					fmt.Printf("  - %s\n", e)
				}
			}
		}
	}

	if !allValid {
		return fmt.Errorf("validation failed for some files")
	}

	return nil
}

func validateFile(gen *generator.Generator, file string) *ValidationResult {
	result := &ValidationResult{
		File:  file,
		Valid: true,
	}

	in, err := readInput(file)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	if err := gen.Check(in); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())

		var validationErr *model.ValidationError
		var dateErr *model.DateFormatError
		switch {
		case errors.As(err, &validationErr):
			result.Field = validationErr.Field
		case errors.As(err, &dateErr):
			result.Field = dateErr.Field
		}
	}

	return result
}

// ValidationResult holds the result of validating a single file
type ValidationResult struct {
	File   string   `json:"file"`
	Valid  bool     `json:"valid"`
	Field  string   `json:"field,omitempty"`
	Errors []string `json:"errors,omitempty"`
}
