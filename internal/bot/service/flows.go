package service

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"garment_whatsapp_backend/internal/bot/session"

	"golang.org/x/sync/errgroup"
)

// combinationPattern matches one Quality-StoreNumber token. The quality
// part is non-greedy so quality names containing hyphens keep everything
// up to the final numeric index.
var combinationPattern = regexp.MustCompile(`^(.+?)-(\d+)$`)

// runOrderFlow checks each order number in input order and composes one
// reply. Any lookup failure aborts the loop: partial results are never
// sent.
func (s *Service) runOrderFlow(ctx context.Context, in Inbound, category string, orderNumbers []string) Outcome {
	s.setState(ctx, in.From, session.State{Menu: session.MenuCompleted})

	if len(orderNumbers) == 0 {
		return ReplyText(emptyOrderListReply)
	}

	s.ack(ctx, in, ackOrders)

	var b strings.Builder
	for _, orderNumber := range orderNumbers {
		status, err := s.orders.FindOrderStatus(ctx, orderNumber, category)
		if err != nil {
			s.log.WithContext(ctx).SourceError("orders", "order_flow", err)
			return ReplyText(orderErrorReply)
		}
		b.WriteString(fmt.Sprintf("Order: %s\n%s\n\n", orderNumber, statusLine(status)))
	}
	b.WriteString(replyFooter)
	return ReplyText(b.String())
}

// runStockFlow answers a stock query and, depending on how many stores
// the caller may order for, appends either a no-permission notice, one
// prefilled form link, or a store-selection prompt.
func (s *Service) runStockFlow(ctx context.Context, in Inbound, qualities []string) Outcome {
	if len(qualities) == 0 {
		return ReplyText(emptyQualityListReply)
	}

	s.ack(ctx, in, ackStock)

	var (
		stockResult map[string]map[string]string
		stores      []string
	)

	// Stock and permission lookups hit independent sheets; run them in
	// parallel.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stockResult, err = s.stock.FindStock(gctx, qualities)
		return err
	})
	g.Go(func() error {
		var err error
		stores, err = s.dir.FindPermittedStores(gctx, in.From)
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.WithContext(ctx).SourceError("stock", "stock_flow", err)
		s.setState(ctx, in.From, session.State{Menu: session.MenuCompleted})
		return ReplyText(stockErrorReply)
	}

	var b strings.Builder
	b.WriteString(composeStockSection(qualities, stockResult))

	switch len(stores) {
	case 0:
		s.setState(ctx, in.From, session.State{Menu: session.MenuCompleted})
		b.WriteString(s.composeNoPermission(in.From))
	case 1:
		s.setState(ctx, in.From, session.State{Menu: session.MenuCompleted})
		b.WriteString(s.composeSingleStoreForm(stores[0], in.From, qualities))
	default:
		s.setState(ctx, in.From, session.State{
			Menu:      session.MenuStoreSelection,
			Stores:    stores,
			Qualities: qualities,
		})
		b.WriteString(composeStoreSelection(stores))
	}

	return ReplyText(b.String())
}

// resolveStoreSelection interprets the reply to a multi-store prompt. A
// bare integer picks one store for every carried quality; otherwise the
// input is parsed as Quality-StoreNumber combinations, invalid tokens
// are dropped, and one form link is emitted per distinct store. When
// nothing survives the state is left unchanged so the user can retry.
func (s *Service) resolveStoreSelection(ctx context.Context, in Inbound, state session.State, text string) Outcome {
	if n, err := strconv.Atoi(strings.TrimSpace(text)); err == nil {
		if n < 1 || n > len(state.Stores) {
			return ReplyText(invalidCombinationReply)
		}
		store := state.Stores[n-1]
		s.setState(ctx, in.From, session.State{Menu: session.MenuCompleted})
		return ReplyText(s.composeStoreForms([]storeForm{{
			store:     store,
			qualities: state.Qualities,
		}}, in.From))
	}

	var picks []storeForm
	indexOf := make(map[string]int)

	for _, token := range splitList(text) {
		m := combinationPattern.FindStringSubmatch(token)
		if m == nil {
			continue
		}
		quality, ok := carriedQuality(state.Qualities, m[1])
		if !ok {
			continue
		}
		idx, err := strconv.Atoi(m[2])
		if err != nil || idx < 1 || idx > len(state.Stores) {
			continue
		}

		store := state.Stores[idx-1]
		pos, seen := indexOf[store]
		if !seen {
			indexOf[store] = len(picks)
			picks = append(picks, storeForm{store: store})
			pos = len(picks) - 1
		}
		picks[pos].qualities = append(picks[pos].qualities, quality)
	}

	if len(picks) == 0 {
		return ReplyText(invalidCombinationReply)
	}

	s.setState(ctx, in.From, session.State{Menu: session.MenuCompleted})
	return ReplyText(s.composeStoreForms(picks, in.From))
}

// carriedQuality matches a token's quality part against the qualities
// carried from the stock query, case-insensitively, returning the
// carried spelling.
func carriedQuality(carried []string, raw string) (string, bool) {
	query := strings.TrimSpace(raw)
	for _, q := range carried {
		if strings.EqualFold(q, query) {
			return q, true
		}
	}
	return "", false
}

// ack sends an immediate acknowledgement before a slow lookup. Failures
// are logged and ignored; the composed reply still follows.
func (s *Service) ack(ctx context.Context, in Inbound, text string) {
	if err := s.messenger.SendText(ctx, in.ProductID, in.PhoneID, in.From, text); err != nil {
		s.log.WithContext(ctx).DeliveryError(in.From, err)
	}
}
