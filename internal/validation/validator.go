// Package validation rejects malformed generation input before any
// calculation runs. Checks short-circuit on the first violated rule.
package validation

import (
	"fmt"
	"strings"

	"github.com/rezonia/invoice-generator/internal/decimal"
	"github.com/rezonia/invoice-generator/internal/model"
)

// Validate checks company, client, items and output formats in that order
func Validate(in *model.Input) error {
	if in == nil {
		return model.NewValidationError("input", "Input is required")
	}
	if err := ValidateCompany(in.CompanyInfo); err != nil {
		return err
	}
	if err := ValidateClient(in.ClientInfo); err != nil {
		return err
	}
	if err := ValidateItems(in.Items); err != nil {
		return err
	}
	if in.OutputFormats != nil {
		if err := ValidateOutputFormats(in.OutputFormats); err != nil {
			return err
		}
	}
	return nil
}

// ValidateCompany requires company info with a name
func ValidateCompany(p *model.Party) error {
	if p == nil {
		return model.NewValidationError("companyInfo", "Company information is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return model.NewValidationError("companyInfo.name", "Company name is required")
	}
	return nil
}

// ValidateClient requires client info with a name
func ValidateClient(p *model.Party) error {
	if p == nil {
		return model.NewValidationError("clientInfo", "Client information is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return model.NewValidationError("clientInfo.name", "Client name is required")
	}
	return nil
}

// ValidateItems requires at least one item and checks each in order.
// Messages carry the 1-based item index.
func ValidateItems(items []model.Item) error {
	if len(items) == 0 {
		return model.NewValidationError("items", "At least one invoice item is required")
	}

	for i, item := range items {
		n := i + 1
		if strings.TrimSpace(item.Description) == "" {
			return model.NewValidationError(fmt.Sprintf("items[%d].description", i),
				fmt.Sprintf("Item %d: Description is required", n))
		}
		if item.Quantity == nil || !decimal.IsPositive(*item.Quantity) {
			return model.NewValidationError(fmt.Sprintf("items[%d].quantity", i),
				fmt.Sprintf("Item %d: Quantity must be a positive number", n))
		}
		if item.UnitPrice == nil || !decimal.IsNonNegative(*item.UnitPrice) {
			return model.NewValidationError(fmt.Sprintf("items[%d].unitPrice", i),
				fmt.Sprintf("Item %d: Unit price must be a non-negative number", n))
		}
	}
	return nil
}

// ValidateOutputFormats requires a non-empty list of exactly-spelled format names
func ValidateOutputFormats(formats []string) error {
	if len(formats) == 0 {
		return model.NewValidationError("outputFormats", "At least one output format is required")
	}

	for _, f := range formats {
		if !model.Format(f).IsValid() {
			return model.NewValidationError("outputFormats",
				fmt.Sprintf("Invalid output format: %s. Valid formats are: %s", f, validFormatList()))
		}
	}
	return nil
}

func validFormatList() string {
	names := make([]string, len(model.ValidFormats))
	for i, f := range model.ValidFormats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}
