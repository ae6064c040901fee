package ridgeline

import (
	"fmt"
	"html"
	"net/http"
	"net/mail"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ridgelinebuilders/ridgeline/mailer"
	"github.com/ridgelinebuilders/ridgeline/store"
)

// ContactRequest is the body of the contact form.
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// BookingRequest is the body of the site-visit booking form.
type BookingRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Date         string `json:"date"`
	PropertySlug string `json:"propertySlug"`
	Message      string `json:"message"`
}

func (a *App) handleContactForm(c echo.Context) error {
	var req ContactRequest
	if err := c.Bind(&req); err != nil {
		return store.Invalid("invalid request body")
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Message) == "" {
		return store.Invalid("name and message are required")
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return store.Invalid("a valid email address is required")
	}

	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		subject = "Website contact form"
	}
	a.Mailer.SendAsync(mailer.Message{
		To:      a.Config.Mail.ContactRecipient,
		Subject: fmt.Sprintf("[Contact] %s — %s", subject, req.Name),
		HTML:    formBodyHTML(req.Name, req.Email, req.Phone, req.Message, nil),
	})
	return c.JSON(http.StatusOK, map[string]string{"message": "thanks, we will get back to you shortly"})
}

func (a *App) handleBookingForm(c echo.Context) error {
	var req BookingRequest
	if err := c.Bind(&req); err != nil {
		return store.Invalid("invalid request body")
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Date) == "" {
		return store.Invalid("name and date are required")
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return store.Invalid("a valid email address is required")
	}

	extra := map[string]string{"Requested date": req.Date}
	if req.PropertySlug != "" {
		// Resolve the slug so the email names the property, not just a slug.
		if property, err := a.Store.Properties.GetBySlug(req.PropertySlug); err == nil {
			extra["Property"] = property.Title
		} else {
			extra["Property"] = req.PropertySlug
		}
	}
	a.Mailer.SendAsync(mailer.Message{
		To:      a.Config.Mail.ContactRecipient,
		Subject: fmt.Sprintf("[Booking] Site visit request — %s", req.Name),
		HTML:    formBodyHTML(req.Name, req.Email, req.Phone, req.Message, extra),
	})
	return c.JSON(http.StatusOK, map[string]string{"message": "booking request received, we will confirm by email"})
}

func formBodyHTML(name, email, phone, message string, extra map[string]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<p><strong>Name:</strong> %s</p>", html.EscapeString(name))
	fmt.Fprintf(&b, "<p><strong>Email:</strong> %s</p>", html.EscapeString(email))
	if phone != "" {
		fmt.Fprintf(&b, "<p><strong>Phone:</strong> %s</p>", html.EscapeString(phone))
	}
	for k, v := range extra {
		fmt.Fprintf(&b, "<p><strong>%s:</strong> %s</p>", html.EscapeString(k), html.EscapeString(v))
	}
	if message != "" {
		fmt.Fprintf(&b, "<p>%s</p>", html.EscapeString(message))
	}
	return b.String()
}
