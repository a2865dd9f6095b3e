// Package stock answers quality availability queries across the stock
// spreadsheets of every store.
package stock

import (
	"context"
	"fmt"
	"strings"

	"garment_whatsapp_backend/platform/config"
	"garment_whatsapp_backend/platform/logger"
	"garment_whatsapp_backend/platform/sheets"
)

// Stock sheets carry the quality name in column A and the available
// quantity in column D. Quantities are free text, not guaranteed numeric.
const (
	qualityColumnIndex  = 0
	quantityColumnIndex = 3
)

// RangeReader reads one cell range of a spreadsheet.
type RangeReader interface {
	ReadRange(ctx context.Context, spreadsheetID, readRange string) ([][]string, error)
}

// FolderLister lists the spreadsheets inside a Drive folder.
type FolderLister interface {
	ListFolder(ctx context.Context, folderID string) ([]sheets.File, error)
}

// Source combines the reads the stock search needs.
type Source interface {
	RangeReader
	FolderLister
}

// Service scans every store's stock sheet for the requested qualities.
type Service struct {
	source Source
	cfg    config.StockConfig
	log    *logger.Logger
}

// NewService creates a stock lookup service.
func NewService(source Source, cfg config.StockConfig, log *logger.Logger) *Service {
	return &Service{source: source, cfg: cfg, log: log}
}

// FindStock returns, per requested quality, the quantity found in each
// stock sheet keyed by sheet name. The first matching row per sheet wins,
// independently per quality; sheets with no match omit the key. A sheet
// that cannot be read is skipped.
func (s *Service) FindStock(ctx context.Context, qualities []string) (map[string]map[string]string, error) {
	files, err := s.source.ListFolder(ctx, s.cfg.GetStockFolderID())
	if err != nil {
		return nil, fmt.Errorf("stock folder listing: %w", err)
	}

	result := make(map[string]map[string]string, len(qualities))
	for _, quality := range qualities {
		result[strings.TrimSpace(quality)] = make(map[string]string)
	}

	for _, file := range files {
		rows, err := s.source.ReadRange(ctx, file.ID, s.cfg.GetStockRange())
		if err != nil {
			s.log.SourceError(file.Name, "stock_search", err)
			continue
		}

		for _, quality := range qualities {
			query := strings.TrimSpace(quality)
			if value, ok := findQuality(rows, query); ok {
				result[query][file.Name] = value
			}
		}
	}

	return result, nil
}

// findQuality returns the quantity cell of the first row whose quality
// cell equals the query, equals it case-insensitively, or contains it
// case-insensitively.
func findQuality(rows [][]string, query string) (string, bool) {
	lowered := strings.ToLower(query)
	for _, row := range rows {
		if qualityColumnIndex >= len(row) {
			continue
		}
		cell := strings.TrimSpace(row[qualityColumnIndex])
		if cell == "" {
			continue
		}
		if cell == query || strings.EqualFold(cell, query) || strings.Contains(strings.ToLower(cell), lowered) {
			return cellAt(row, quantityColumnIndex), true
		}
	}
	return "", false
}

func cellAt(row []string, idx int) string {
	if idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}
