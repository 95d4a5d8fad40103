package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/revocab/internal/database"
	"github.com/example/revocab/pkg/models"
)

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath         string // Path to the Excel or CSV file
	UserID           int64  // Owner of the target list
	ListName         string // Target list, created if missing
	TermColumn       string // Column with the term
	DefinitionColumn string // Column with the definition
	PhoneticColumn   string // Column with the phonetic transcription
	HintColumn       string // Column with the mnemonic hint
	SheetName        string // Name of the sheet to import
	StartRow         int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		TermColumn:       "A",
		DefinitionColumn: "B",
		PhoneticColumn:   "C",
		HintColumn:       "D",
		SheetName:        "Sheet1",
		StartRow:         2, // By default, start from the second row (skip header)
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Created        int
	Skipped        int
	Errors         []string
}

// ImportWords imports words from an Excel or CSV file into the configured
// list, provisioning a review record for every created word so the whole
// batch is immediately learnable.
func ImportWords(ctx context.Context, config ImportConfig) (*ImportResult, error) {
	if config.UserID <= 0 {
		return nil, fmt.Errorf("import requires a user id")
	}
	if strings.TrimSpace(config.ListName) == "" {
		return nil, fmt.Errorf("import requires a list name")
	}

	listID, err := ensureList(ctx, config.UserID, config.ListName)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(config.FilePath))
	if ext == ".csv" {
		return importFromCSV(ctx, config, listID)
	}
	return importFromExcel(ctx, config, listID)
}

// ensureList finds or creates the target list.
func ensureList(ctx context.Context, userID int64, name string) (int64, error) {
	listRepo := database.NewWordListRepository()
	lists, err := listRepo.GetByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to get existing lists: %w", err)
	}
	for _, l := range lists {
		if strings.EqualFold(l.Name, name) {
			return l.ID, nil
		}
	}
	list := &models.WordList{UserID: userID, Name: name}
	if err := listRepo.Create(ctx, list); err != nil {
		return 0, fmt.Errorf("failed to create list: %w", err)
	}
	return list.ID, nil
}

// importFromExcel imports words from an Excel file
func importFromExcel(ctx context.Context, config ImportConfig, listID int64) (*ImportResult, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(config.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}

	result := &ImportResult{Errors: make([]string, 0)}
	cols := columnIndexes(config)

	for i, row := range rows {
		// Skip header rows
		if i < config.StartRow-1 {
			continue
		}
		result.TotalProcessed++
		if err := importRow(ctx, row, cols, config.UserID, listID, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
		}
	}

	return result, nil
}

// importFromCSV imports words from a CSV file. Columns follow the same
// order as the configured Excel columns.
func importFromCSV(ctx context.Context, config ImportConfig, listID int64) (*ImportResult, error) {
	file, err := os.Open(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	result := &ImportResult{Errors: make([]string, 0)}
	cols := columnIndexes(config)

	rowNum := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		rowNum++
		if rowNum < config.StartRow {
			continue
		}
		result.TotalProcessed++
		if err := importRow(ctx, row, cols, config.UserID, listID, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
		}
	}

	return result, nil
}

type columns struct {
	term       int
	definition int
	phonetic   int
	hint       int
}

func columnIndexes(config ImportConfig) columns {
	return columns{
		term:       columnIndex(config.TermColumn),
		definition: columnIndex(config.DefinitionColumn),
		phonetic:   columnIndex(config.PhoneticColumn),
		hint:       columnIndex(config.HintColumn),
	}
}

// columnIndex converts a spreadsheet column letter to a zero-based index.
func columnIndex(column string) int {
	idx, err := excelize.ColumnNameToNumber(strings.ToUpper(strings.TrimSpace(column)))
	if err != nil {
		return -1
	}
	return idx - 1
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func importRow(ctx context.Context, row []string, cols columns, userID, listID int64, result *ImportResult) error {
	term := cell(row, cols.term)
	definition := cell(row, cols.definition)
	if term == "" || definition == "" {
		result.Skipped++
		return nil
	}

	wordRepo := database.NewWordRepository()
	word := &models.Word{
		ListID:     &listID,
		Term:       term,
		Definition: definition,
		Phonetic:   cell(row, cols.phonetic),
		Hint:       cell(row, cols.hint),
	}
	if err := wordRepo.Create(ctx, word); err != nil {
		return err
	}

	recordRepo := database.NewReviewRecordRepository()
	if _, err := recordRepo.Ensure(ctx, userID, word.ID, &listID); err != nil {
		return err
	}

	result.Created++
	return nil
}
