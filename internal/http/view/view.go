// Package view renders the single-page screens from embedded templates.
package view

import (
	"embed"
	"html/template"
	"io"

	"barber-queue/internal/controller"
	"barber-queue/internal/models"
	"barber-queue/internal/payment"

	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.New("").Funcs(template.FuncMap{
	"money": money,
}).ParseFS(templateFS, "templates/*.html"))

// Page is everything the layout needs for one render.
type Page struct {
	StateKey   string
	Screen     models.Screen
	PhoneGate  bool
	Phone      string
	Profile    *models.Profile
	Services   []models.Service
	Queue      *models.QueueView
	CanPay     bool
	Overlay    bool
	Amount     decimal.Decimal
	Processing bool
	Succeeded  bool
	Notice     *models.Notice
}

func NewPage(st controller.State, services []models.Service) Page {
	return Page{
		StateKey:   st.RenderKey(),
		Screen:     st.Screen,
		Profile:    st.Profile,
		Services:   services,
		Queue:      st.Queue,
		CanPay:     st.CanPay(),
		Overlay:    st.PaymentOverlay,
		Amount:     st.Payment.Amount,
		Processing: st.Payment.Phase == payment.PhaseProcessing,
		Succeeded:  st.Payment.Phase == payment.PhaseSucceeded,
		Notice:     st.Notice,
	}
}

func Render(w io.Writer, p Page) error {
	return pages.ExecuteTemplate(w, "layout", p)
}

// money prints whole amounts without decimals, like "$40".
func money(d decimal.Decimal) string {
	return "$" + d.String()
}
