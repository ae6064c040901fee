package ridgeline

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ridgelinebuilders/ridgeline/store"
)

// Admin CRUD handlers. Authorization happens in requirePermission; these
// assume the caller is already vetted.

func (a *App) handleBlogCreate(c echo.Context) error {
	var post store.BlogPost
	if err := c.Bind(&post); err != nil {
		return store.Invalid("invalid request body")
	}
	if post.Slug == "" && post.Title != "" {
		post.Slug = Slugify(post.Title)
	}
	created, err := a.Store.Blog.Create(post)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

func (a *App) handleBlogUpdate(c echo.Context) error {
	var in store.BlogPostUpdate
	if err := c.Bind(&in); err != nil {
		return store.Invalid("invalid request body")
	}
	updated, err := a.Store.Blog.Update(c.Param("slug"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

func (a *App) handleBlogDelete(c echo.Context) error {
	removed, err := a.Store.Blog.Delete(c.Param("slug"))
	if err != nil {
		return err
	}
	if !removed {
		return store.NotFound("blog post %q not found", c.Param("slug"))
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "deleted"})
}

func (a *App) handlePropertyCreate(c echo.Context) error {
	var property store.Property
	if err := c.Bind(&property); err != nil {
		return store.Invalid("invalid request body")
	}
	if property.Slug == "" && property.Title != "" {
		property.Slug = Slugify(property.Title)
	}
	created, err := a.Store.Properties.Create(property)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

func (a *App) handlePropertyUpdate(c echo.Context) error {
	var in store.PropertyUpdate
	if err := c.Bind(&in); err != nil {
		return store.Invalid("invalid request body")
	}
	updated, err := a.Store.Properties.Update(c.Param("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

func (a *App) handlePropertyDelete(c echo.Context) error {
	removed, err := a.Store.Properties.Delete(c.Param("id"))
	if err != nil {
		return err
	}
	if !removed {
		return store.NotFound("property %q not found", c.Param("id"))
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "deleted"})
}

func (a *App) handleTestimonialCreate(c echo.Context) error {
	var testimonial store.Testimonial
	if err := c.Bind(&testimonial); err != nil {
		return store.Invalid("invalid request body")
	}
	created, err := a.Store.Testimonials.Create(testimonial)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

func (a *App) handleTestimonialUpdate(c echo.Context) error {
	var in store.TestimonialUpdate
	if err := c.Bind(&in); err != nil {
		return store.Invalid("invalid request body")
	}
	updated, err := a.Store.Testimonials.Update(c.Param("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

func (a *App) handleTestimonialDelete(c echo.Context) error {
	removed, err := a.Store.Testimonials.Delete(c.Param("id"))
	if err != nil {
		return err
	}
	if !removed {
		return store.NotFound("testimonial %q not found", c.Param("id"))
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "deleted"})
}

func (a *App) handleUserList(c echo.Context) error {
	users, err := a.Store.Users.List()
	if err != nil {
		return err
	}
	if users == nil {
		users = []store.AdminUser{}
	}
	return c.JSON(http.StatusOK, users)
}

func (a *App) handleUserGet(c echo.Context) error {
	user, err := a.Store.Users.Get(c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func (a *App) handleUserCreate(c echo.Context) error {
	var user store.AdminUser
	if err := c.Bind(&user); err != nil {
		return store.Invalid("invalid request body")
	}
	created, err := a.Store.Users.Create(user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

func (a *App) handleUserUpdate(c echo.Context) error {
	var in store.AdminUserUpdate
	if err := c.Bind(&in); err != nil {
		return store.Invalid("invalid request body")
	}
	updated, err := a.Store.Users.Update(c.Param("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

func (a *App) handleUserDelete(c echo.Context) error {
	// A user removing their own account would orphan the session mid-request.
	if current, ok := c.Get("user").(*store.AdminUser); ok && current.ID == c.Param("id") {
		return store.Invalid("cannot delete your own account")
	}
	removed, err := a.Store.Users.Delete(c.Param("id"))
	if err != nil {
		return err
	}
	if !removed {
		return store.NotFound("user %q not found", c.Param("id"))
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "deleted"})
}
