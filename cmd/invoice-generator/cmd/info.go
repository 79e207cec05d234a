package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rezonia/invoice-generator/internal/render"
)

var infoCmd = &cobra.Command{
	Use:   "info [files...]",
	Short: "Show information about generated PDF files",
	Long: `Display size, modification time and page count of generated PDFs.

Examples:
  invoice-generator info out/invoice_INV-202403-0042_pdf.pdf
  invoice-generator info out/*.pdf`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	for _, file := range args {
		printFileInfo(file)
		fmt.Println()
	}
	return nil
}

func printFileInfo(filePath string) {
	fmt.Printf("File: %s\n", filePath)

	info, err := os.Stat(filePath)
	if err != nil {
		fmt.Printf("  Error: %v\n", err)
		return
	}

	fmt.Printf("  Size: %d bytes\n", info.Size())
	fmt.Printf("  Modified: %s\n", info.ModTime().Format("2006-01-02 15:04:05"))

	data, err := os.ReadFile(filePath)
	if err != nil {
		fmt.Printf("  Error reading file: %v\n", err)
		return
	}

	pages, err := render.PageCount(data)
	if err != nil {
		fmt.Printf("  Error: %v\n", err)
		return
	}
	fmt.Printf("  Pages: %d\n", pages)
}
