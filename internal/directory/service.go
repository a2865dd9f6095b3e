// Package directory looks up greeting records and store permissions for a
// phone number in the contact directory spreadsheet.
package directory

import (
	"context"
	"fmt"

	"garment_whatsapp_backend/platform/config"
	"garment_whatsapp_backend/platform/logger"
	"garment_whatsapp_backend/platform/phone"
)

// Greeting is the directory record used to address a known caller.
type Greeting struct {
	Name       string
	Salutation string
	Greeting   string
}

// RangeReader reads one cell range of a spreadsheet.
type RangeReader interface {
	ReadRange(ctx context.Context, spreadsheetID, readRange string) ([][]string, error)
}

// Service resolves directory lookups against the configured sheet.
type Service struct {
	source RangeReader
	cfg    config.DirectoryConfig
	log    *logger.Logger
}

// NewService creates a directory service.
func NewService(source RangeReader, cfg config.DirectoryConfig, log *logger.Logger) *Service {
	return &Service{source: source, cfg: cfg, log: log}
}

// FindGreeting returns the first directory record whose contact matches
// the phone number, or nil when no row matches. The strict match applies
// a length floor so truncated directory entries never match.
func (s *Service) FindGreeting(ctx context.Context, phoneNumber string) (*Greeting, error) {
	rows, err := s.source.ReadRange(ctx, s.cfg.GetDirectorySpreadsheetID(), s.cfg.GetGreetingRange())
	if err != nil {
		return nil, fmt.Errorf("greeting lookup: %w", err)
	}

	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		contact, name, salutation, greeting := greetingColumns(row)
		if contact == "" {
			continue
		}
		if phone.MatchStrict(phoneNumber, contact) {
			return &Greeting{Name: name, Salutation: salutation, Greeting: greeting}, nil
		}
	}
	return nil, nil
}

// FindPermittedStores returns the stores the phone number may order for,
// in row order. A number appearing in several rows yields several
// entries; duplicates are deliberately kept.
func (s *Service) FindPermittedStores(ctx context.Context, phoneNumber string) ([]string, error) {
	rows, err := s.source.ReadRange(ctx, s.cfg.GetDirectorySpreadsheetID(), s.cfg.GetPermissionRange())
	if err != nil {
		return nil, fmt.Errorf("permission lookup: %w", err)
	}

	var stores []string
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		contact, store := permissionColumns(row)
		if contact == "" || store == "" {
			continue
		}
		if phone.Match(phoneNumber, contact) {
			stores = append(stores, store)
		}
	}
	return stores, nil
}

// greetingColumns extracts (contact, name, salutation, greeting) from a
// directory row, repairing cells where the contact column has absorbed
// its neighbours as one comma-joined string.
func greetingColumns(row []string) (contact, name, salutation, greeting string) {
	parts := phone.RepairCell(cell(row, 0), cell(row, 1))

	contact = part(parts, 0)
	name = fallback(part(parts, 1), cell(row, 1))
	salutation = fallback(part(parts, 2), cell(row, 2))
	greeting = fallback(part(parts, 3), cell(row, 3))
	return contact, name, salutation, greeting
}

// permissionColumns extracts (contact, store) from a permission row with
// the same comma repair.
func permissionColumns(row []string) (contact, store string) {
	parts := phone.RepairCell(cell(row, 0), cell(row, 1))

	contact = part(parts, 0)
	store = fallback(part(parts, 1), cell(row, 1))
	return contact, store
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

func part(parts []string, idx int) string {
	if idx < len(parts) {
		return parts[idx]
	}
	return ""
}

func fallback(value, alt string) string {
	if value != "" {
		return value
	}
	return alt
}
