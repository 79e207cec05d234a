package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rezonia/invoice-generator/internal/model"
)

// stdinArg reads the input record from standard input
const stdinArg = "-"

func collectFiles(args []string) ([]string, error) {
	var files []string

	for _, arg := range args {
		if arg == stdinArg {
			files = append(files, arg)
			continue
		}

		// Check if it's a glob pattern
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", arg, err)
		}

		if len(matches) == 0 {
			info, err := os.Stat(arg)
			if err != nil {
				return nil, fmt.Errorf("file not found: %s", arg)
			}

			if info.IsDir() {
				err := filepath.Walk(arg, func(path string, info os.FileInfo, err error) error {
					if err != nil {
						return err
					}
					if !info.IsDir() && isSupportedFile(path) {
						files = append(files, path)
					}
					return nil
				})
				if err != nil {
					return nil, err
				}
			} else {
				files = append(files, arg)
			}
		} else {
			for _, match := range matches {
				info, err := os.Stat(match)
				if err != nil {
					continue
				}
				if info.IsDir() {
					continue
				}
				if len(matches) == 1 || isSupportedFile(match) {
					files = append(files, match)
				}
			}
		}
	}

	return files, nil
}

func isSupportedFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// readInput loads one generation request from path, or stdin for "-"
func readInput(path string) (*model.Input, error) {
	var (
		data []byte
		err  error
	)
	if path == stdinArg {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return parseInput(data)
}

func parseInput(data []byte) (*model.Input, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("input is empty")
	}

	var in model.Input
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&in); err != nil {
		return nil, fmt.Errorf("invalid input JSON: %w", err)
	}
	if dec.More() {
		return nil, errors.New("invalid input JSON: unexpected data after JSON value")
	}
	return &in, nil
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
