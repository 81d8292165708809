// internal/notification/card.go
package notification

import (
	"fmt"
	"strings"

	"venue-routing/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Button actions carried in callback data as "<action>:<inquiryId>".
const (
	ActionGenerateQuote = "generate_quote"
	ActionManualQuote   = "manual_quote"
)

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// EscapeHTML escapes the three characters Telegram's HTML parse mode
// treats as markup.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

func CallbackData(action, inquiryID string) string {
	return action + ":" + inquiryID
}

// Keyboard is the reviewer's action row for one inquiry.
func Keyboard(inquiryID string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Generate Quote", CallbackData(ActionGenerateQuote, inquiryID)),
			tgbotapi.NewInlineKeyboardButtonData("Request Manual Quote", CallbackData(ActionManualQuote, inquiryID)),
		),
	)
}

// RenderCard formats the review card. All user-supplied text is escaped.
func RenderCard(inq *models.EventInquiry) string {
	var b strings.Builder

	fmt.Fprintf(&b, "<b>New event inquiry</b> <code>%s</code>\n\n", EscapeHTML(inq.ShortID()))
	fmt.Fprintf(&b, "<b>Event:</b> %s\n", EscapeHTML(orDash(inq.EventName)))
	fmt.Fprintf(&b, "<b>Requester:</b> %s &lt;%s&gt;\n", EscapeHTML(inq.RequesterName), EscapeHTML(inq.RequesterEmail))
	if inq.RequesterPhone != "" {
		fmt.Fprintf(&b, "<b>Phone:</b> %s\n", EscapeHTML(inq.RequesterPhone))
	}
	fmt.Fprintf(&b, "<b>Date:</b> %s\n", EscapeHTML(orDash(inq.EventDate)))
	fmt.Fprintf(&b, "<b>Location:</b> %s\n", EscapeHTML(orDash(inq.VenuePreference)))
	fmt.Fprintf(&b, "<b>Guests:</b> %s\n", EscapeHTML(orDash(inq.ExpectedHeadcount)))
	if needs := requirementList(inq.Requirements); len(needs) > 0 {
		fmt.Fprintf(&b, "<b>Needs:</b> %s\n", strings.Join(needs, ", "))
	}

	b.WriteString("\n")
	if inq.MatchedVenue == "" {
		b.WriteString("<b>Best match:</b> none found\n")
	} else {
		fmt.Fprintf(&b, "<b>Best match:</b> %s (score %d)\n", EscapeHTML(inq.MatchedVenue), inq.MatchScore)
		if inq.MatchReasoning != "" {
			fmt.Fprintf(&b, "<i>%s</i>\n", EscapeHTML(inq.MatchReasoning))
		}
	}
	for i, alt := range inq.AlternativeVenues {
		fmt.Fprintf(&b, "Alt %d: %s (score %d)\n", i+1, EscapeHTML(alt.VenueName), alt.Score)
	}

	return strings.TrimRight(b.String(), "\n")
}

// RenderQuoted is the card after a quote was generated.
func RenderQuoted(inq *models.EventInquiry, q *models.QuoteBreakdown) string {
	return fmt.Sprintf("%s\n\n<b>Quote sent:</b> %s\nValid until %s",
		RenderCard(inq), formatAmount(q.Currency, q.Total), EscapeHTML(q.ValidUntil))
}

// RenderManual is the follow-up posted when a reviewer takes an inquiry over.
func RenderManual(inq *models.EventInquiry) string {
	return fmt.Sprintf("Manual quote requested for inquiry <code>%s</code> (%s).",
		EscapeHTML(inq.ShortID()), EscapeHTML(orDash(inq.EventName)))
}

// RenderManualNeeded replaces the card once it has left the automatic path.
func RenderManualNeeded(inq *models.EventInquiry, notes string) string {
	return fmt.Sprintf("%s\n\n<b>Manual quote needed:</b> %s", RenderCard(inq), EscapeHTML(notes))
}

func requirementList(r models.Requirements) []string {
	var out []string
	for _, n := range []struct {
		on    bool
		label string
	}{
		{r.NeedsProjector, "projector"},
		{r.NeedsMusic, "music"},
		{r.NeedsCatering, "catering"},
		{r.NeedsAccommodation, "accommodation"},
		{r.NeedsConventionHall, "convention hall"},
		{r.NeedsOutdoorArea, "outdoor area"},
	} {
		if n.on {
			out = append(out, n.label)
		}
	}
	return out
}

func formatAmount(currency string, amount float64) string {
	return fmt.Sprintf("%s %.2f", EscapeHTML(currency), amount)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
