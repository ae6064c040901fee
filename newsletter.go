package ridgeline

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ridgelinebuilders/ridgeline/mailer"
	"github.com/ridgelinebuilders/ridgeline/store"
)

type newsletterRequest struct {
	Email string `json:"email"`
}

// handleNewsletterSubscribe registers an email and sends a verification
// link. The response never reveals whether the address was already on the
// list.
func (a *App) handleNewsletterSubscribe(c echo.Context) error {
	var req newsletterRequest
	if err := c.Bind(&req); err != nil {
		return store.Invalid("invalid request body")
	}

	sub, pending, err := a.Store.Newsletter.Subscribe(req.Email)
	if err != nil {
		return err
	}
	if pending && sub.VerificationToken != nil {
		a.Mailer.SendAsync(mailer.Message{
			To:      sub.Email,
			Subject: fmt.Sprintf("Confirm your subscription to %s", a.Config.Name),
			HTML: fmt.Sprintf(
				`<p>Thanks for subscribing to the %s newsletter.</p>`+
					`<p><a href="%s/api/newsletter/verify?token=%s">Click here to confirm your email address.</a></p>`+
					`<p>If you did not request this, you can ignore this message.</p>`,
				a.Config.Name, a.Config.URL, *sub.VerificationToken),
		})
	}
	return c.JSON(http.StatusAccepted, map[string]string{
		"message": "check your inbox to confirm your subscription",
	})
}

func (a *App) handleNewsletterVerify(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return store.Invalid("token is required")
	}
	sub, err := a.Store.Newsletter.Verify(token)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message": "subscription confirmed",
		"email":   sub.Email,
	})
}

// handleNewsletterUnsubscribe always reports success so the endpoint cannot
// be used to probe the list.
func (a *App) handleNewsletterUnsubscribe(c echo.Context) error {
	var req newsletterRequest
	if err := c.Bind(&req); err != nil {
		return store.Invalid("invalid request body")
	}
	if _, err := a.Store.Newsletter.Unsubscribe(req.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "you have been unsubscribed"})
}

func (a *App) handleNewsletterList(c echo.Context) error {
	subs, err := a.Store.Newsletter.List()
	if err != nil {
		return err
	}
	if subs == nil {
		subs = []store.Subscriber{}
	}
	return c.JSON(http.StatusOK, subs)
}
