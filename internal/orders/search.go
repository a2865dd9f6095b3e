package orders

import (
	"context"
	"fmt"
	"strings"

	"garment_whatsapp_backend/platform/apperr"
	"garment_whatsapp_backend/platform/config"
	"garment_whatsapp_backend/platform/logger"
	"garment_whatsapp_backend/platform/sheets"
)

// Order numbers live in column B of the live sheet and of every archive
// sheet; archives carry their dispatch date in column F.
const (
	orderColumn       = "B"
	archiveDateColumn = "F"
)

// NotFoundMessage is the canonical reply when no source holds the order.
const NotFoundMessage = "Order not found, please contact the responsible person."

// Status is the outcome of locating one order number.
type Status struct {
	Found    bool
	Message  string
	Location string
}

// RangeReader reads one cell range of a spreadsheet.
type RangeReader interface {
	ReadRange(ctx context.Context, spreadsheetID, readRange string) ([][]string, error)
}

// FolderLister lists the spreadsheets inside a Drive folder.
type FolderLister interface {
	ListFolder(ctx context.Context, folderID string) ([]sheets.File, error)
}

// Source combines the reads the order search needs.
type Source interface {
	RangeReader
	FolderLister
}

// Service searches the ordered source list for order numbers.
type Service struct {
	source Source
	table  StageTable
	cfg    config.OrdersConfig
	log    *logger.Logger
}

// NewService creates an order lookup service.
func NewService(source Source, table StageTable, cfg config.OrdersConfig, log *logger.Logger) *Service {
	return &Service{source: source, table: table, cfg: cfg, log: log}
}

// statusSource is one place an order number may live. Sources are
// searched in a fixed order and the first hit wins.
type statusSource interface {
	name() string
	find(ctx context.Context, orderNumber string) (Status, bool, error)
}

// FindOrderStatus searches the live sheet for the category, then each
// archive sheet in folder-listing order. A failing source is logged and
// treated as a miss for that source only; the archive folder is only
// listed once the live sheet has missed, and a listing failure skips the
// archive tier rather than aborting the search. Only when no source
// could be consulted at all does the search return an error.
func (s *Service) FindOrderStatus(ctx context.Context, orderNumber, category string) (Status, error) {
	orderNumber = strings.TrimSpace(orderNumber)

	live := &liveSource{svc: s, category: category}
	status, ok, liveErr := live.find(ctx, orderNumber)
	if liveErr != nil {
		s.log.SourceError(live.name(), "order_search", liveErr)
	} else if ok {
		return status, nil
	}

	files, err := s.source.ListFolder(ctx, s.cfg.GetArchiveFolderID())
	if err != nil {
		if liveErr != nil {
			return Status{}, apperr.Unavailable("order sources unavailable", err).WithOp("orders.FindOrderStatus")
		}
		s.log.SourceError("archive", "folder_listing", err)
		return Status{Found: false, Message: NotFoundMessage}, nil
	}

	sources := make([]statusSource, 0, len(files))
	for _, file := range files {
		sources = append(sources, &archiveSource{svc: s, file: file})
	}
	return s.firstFound(ctx, sources, orderNumber), nil
}

func (s *Service) firstFound(ctx context.Context, sources []statusSource, orderNumber string) Status {
	for _, src := range sources {
		status, ok, err := src.find(ctx, orderNumber)
		if err != nil {
			s.log.SourceError(src.name(), "order_search", err)
			continue
		}
		if ok {
			return status
		}
	}
	return Status{Found: false, Message: NotFoundMessage}
}

// liveSource scans the category tab of the live production sheet.
type liveSource struct {
	svc      *Service
	category string
}

func (l *liveSource) name() string { return "live:" + l.category }

func (l *liveSource) find(ctx context.Context, orderNumber string) (Status, bool, error) {
	readRange := l.category + "!" + l.svc.cfg.GetLiveRange()
	rows, err := l.svc.source.ReadRange(ctx, l.svc.cfg.GetLiveSpreadsheetID(), readRange)
	if err != nil {
		return Status{}, false, err
	}

	row, ok := matchRow(rows, orderNumber)
	if !ok {
		return Status{}, false, nil
	}
	return Status{Found: true, Message: ResolveStatus(row, l.svc.table)}, true, nil
}

// archiveSource scans one archived dispatch spreadsheet.
type archiveSource struct {
	svc  *Service
	file sheets.File
}

func (a *archiveSource) name() string { return "archive:" + a.file.Name }

func (a *archiveSource) find(ctx context.Context, orderNumber string) (Status, bool, error) {
	rows, err := a.svc.source.ReadRange(ctx, a.file.ID, a.svc.cfg.GetArchiveRange())
	if err != nil {
		return Status{}, false, err
	}

	row, ok := matchRow(rows, orderNumber)
	if !ok {
		return Status{}, false, nil
	}

	date := stageValue(row, archiveDateColumn)
	return Status{
		Found:    true,
		Message:  fmt.Sprintf("Order is dispatched on %s.", date),
		Location: a.file.Name,
	}, true, nil
}

// matchRow finds the first row whose order-number cell equals the query
// exactly after trimming. Matching is case-sensitive.
func matchRow(rows [][]string, orderNumber string) ([]string, bool) {
	idx := ColumnIndex(orderColumn)
	for _, row := range rows {
		if idx >= len(row) {
			continue
		}
		if strings.TrimSpace(row[idx]) == orderNumber {
			return row, true
		}
	}
	return nil, false
}
