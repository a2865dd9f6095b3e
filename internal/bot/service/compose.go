package service

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"garment_whatsapp_backend/internal/orders"
	"garment_whatsapp_backend/platform/phone"
)

const defaultGreeting = "Hello,"

const mainMenuBody = `Please reply with an option number:
1. Raise a ticket
2. Check order status
3. Check stock
4. Place an order

Send /menu anytime to see this menu again.`

const orderQueryMenu = `Which category do you want to check?
1. Shirting
2. Jacket
3. Trouser

Reply with the option number.`

const stockPromptBody = `Please send the quality names you want to check, separated by commas.
Example: LTS8156, ETCH8029`

const ticketReply = `You can raise a ticket here:
Delivery issue: https://forms.gle/UqD7vwzQhZk2bT6N8
Quality issue: https://forms.gle/pJy3mWfXcV9sL4Ak6

Send /menu to go back to the main menu.`

const comingSoonReply = "Placing orders directly over WhatsApp is coming soon. Send /menu to go back to the main menu."

const invalidOptionReply = "Invalid option. Please reply with a number from the menu."

const emptyOrderListReply = "Please send at least one order number, separated by commas."

const emptyQualityListReply = "Please send at least one quality name, separated by commas."

const ackOrders = "Checking your orders, please wait..."

const ackStock = "Checking stock availability, please wait..."

const orderErrorReply = "Sorry, something went wrong while checking your orders. Please try again later."

const stockErrorReply = "Sorry, something went wrong while checking stock. Please try again later."

const invalidCombinationReply = `Invalid format. Please reply with Quality-StoreNumber combinations separated by commas, e.g. LTS8156-1, ETCH8029-2, or with a single store number.`

const replyFooter = "Send /menu to go back to the main menu."

func categoryPrompt(category string) string {
	return fmt.Sprintf("Please send the %s order numbers you want to check, separated by commas.", category)
}

func statusLine(status orders.Status) string {
	if status.Location != "" {
		return fmt.Sprintf("%s (%s)", status.Message, status.Location)
	}
	return status.Message
}

// composeStockSection lists each requested quality with its per-store
// quantities. Sheet names are sorted so replies are deterministic.
func composeStockSection(qualities []string, result map[string]map[string]string) string {
	var b strings.Builder
	b.WriteString("Stock availability:\n\n")

	for _, quality := range qualities {
		query := strings.TrimSpace(quality)
		b.WriteString("*" + query + "*\n")

		perStore := result[query]
		if len(perStore) == 0 {
			b.WriteString("No stock data found.\n\n")
			continue
		}

		names := make([]string, 0, len(perStore))
		for name := range perStore {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			b.WriteString(fmt.Sprintf("%s: %s\n", name, perStore[name]))
		}
		b.WriteString("\n")
	}

	return b.String()
}

func (s *Service) composeNoPermission(phoneNumber string) string {
	contact := s.form.GetContactAddress()
	if contact == "" {
		contact = "the head office"
	}
	return fmt.Sprintf("You do not have ordering permission for any store (no store is mapped to %s). Please contact %s.",
		phone.Clean(phoneNumber), contact)
}

func (s *Service) composeSingleStoreForm(store, phoneNumber string, qualities []string) string {
	return fmt.Sprintf("Place your order for %s here:\n%s\n\n%s",
		store, s.formLink(store, phoneNumber, qualities), replyFooter)
}

func composeStoreSelection(stores []string) string {
	var b strings.Builder
	b.WriteString("You can order for these stores:\n")
	for i, store := range stores {
		b.WriteString(fmt.Sprintf("%d. %s\n", i+1, store))
	}
	b.WriteString("\nReply with Quality-StoreNumber combinations separated by commas, e.g. LTS8156-1, ETCH8029-2.\n")
	b.WriteString("Or reply with just a store number to order every quality from that store.")
	return b.String()
}

type storeForm struct {
	store     string
	qualities []string
}

func (s *Service) composeStoreForms(forms []storeForm, phoneNumber string) string {
	sections := make([]string, 0, len(forms)+1)
	for _, form := range forms {
		sections = append(sections, fmt.Sprintf("*%s*\n%s",
			form.store, s.formLink(form.store, phoneNumber, form.qualities)))
	}
	sections = append(sections, replyFooter)
	return strings.Join(sections, "\n\n")
}

// formLink builds a prefilled order form URL for one store.
func (s *Service) formLink(store, phoneNumber string, qualities []string) string {
	values := url.Values{}
	values.Set(s.form.GetFormStoreField(), store)
	values.Set(s.form.GetFormPhoneField(), phone.Clean(phoneNumber))
	values.Set(s.form.GetFormQualityField(), strings.Join(qualities, ", "))
	return s.form.GetOrderFormURL() + "?" + values.Encode()
}
