package ridgeline

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ridgelinebuilders/ridgeline/store"
)

// httpErrorHandler maps store errors onto JSON responses: not-found to 404,
// conflict to 409, invalid to 400. Everything else is a 500 with a generic
// body.
func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		code = http.StatusInternalServerError
		msg  = "internal server error"
	)
	switch store.KindOf(err) {
	case store.KindNotFound:
		code, msg = http.StatusNotFound, err.Error()
	case store.KindConflict:
		code, msg = http.StatusConflict, err.Error()
	case store.KindInvalid:
		code, msg = http.StatusBadRequest, err.Error()
	default:
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if m, ok := he.Message.(string); ok {
				msg = m
			}
		} else {
			c.Logger().Errorf("unhandled error: %v", err)
		}
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, map[string]string{"error": msg})
}

func (a *App) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":      "ok",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"environment": a.Config.Environment,
	})
}

// canSeeDrafts reports whether the current session may request unpublished
// content.
func (a *App) canSeeDrafts(c echo.Context) bool {
	user := a.sessionUser(c)
	return user != nil && user.HasPermission(store.PermBlogWrite)
}

func (a *App) handleBlogList(c echo.Context) error {
	includeDrafts := c.QueryParam("includeDrafts") == "true" && a.canSeeDrafts(c)
	posts, err := a.Store.Blog.List(includeDrafts)
	if err != nil {
		return err
	}
	if tag := c.QueryParam("tag"); tag != "" {
		posts = FilterPostsByTag(posts, tag)
	}
	if category := c.QueryParam("category"); category != "" {
		filtered := posts[:0]
		for _, p := range posts {
			if p.Category == category {
				filtered = append(filtered, p)
			}
		}
		posts = filtered
	}
	if posts == nil {
		posts = []store.BlogPost{}
	}
	return c.JSON(http.StatusOK, posts)
}

func (a *App) handleBlogGet(c echo.Context) error {
	post, err := a.Store.Blog.Get(c.Param("slug"))
	if err != nil {
		return err
	}
	// Drafts and future posts 404 for the public; staff see everything.
	if !store.Visible(*post, time.Now()) && !a.canSeeDrafts(c) {
		return store.NotFound("blog post %q not found", post.Slug)
	}
	published, err := a.Store.Blog.List(false)
	if err != nil {
		return err
	}
	related := RelatedPosts(*post, published, 3)
	return c.JSON(http.StatusOK, map[string]any{
		"post":    post,
		"related": related,
	})
}

func (a *App) handlePropertyList(c echo.Context) error {
	filter := store.PropertyFilter{
		Status: c.QueryParam("status"),
		Type:   c.QueryParam("type"),
	}
	properties, err := a.Store.Properties.List(filter)
	if err != nil {
		return err
	}
	if properties == nil {
		properties = []store.Property{}
	}
	return c.JSON(http.StatusOK, properties)
}

func (a *App) handlePropertyGet(c echo.Context) error {
	property, err := a.Store.Properties.Get(c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, property)
}

func (a *App) handlePropertyGetBySlug(c echo.Context) error {
	property, err := a.Store.Properties.GetBySlug(c.Param("slug"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, property)
}

func (a *App) handleTestimonialList(c echo.Context) error {
	testimonials, err := a.Store.Testimonials.List()
	if err != nil {
		return err
	}
	if testimonials == nil {
		testimonials = []store.Testimonial{}
	}
	return c.JSON(http.StatusOK, testimonials)
}

func (a *App) handleRobots(c echo.Context) error {
	return c.String(http.StatusOK, "User-agent: *\nAllow: /\nSitemap: "+a.Config.URL+"/sitemap.xml\n")
}
