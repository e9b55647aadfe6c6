package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prohmpiriya/sportify-web/internal/catalog"
	"github.com/prohmpiriya/sportify-web/internal/domain"
	"github.com/prohmpiriya/sportify-web/internal/middleware"
	"github.com/prohmpiriya/sportify-web/internal/view"
	"github.com/prohmpiriya/sportify-web/pkg/telemetry"
)

const (
	featuredCourts = 6
	lookupLimit    = 100
)

// Home renders featured courts and the public games feed
func (h *Handler) Home(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.page.home")
	defer span.End()

	api := h.client(c)
	data := h.page(c, "Sportify")

	res, err := catalog.Load(ctx, api, 1, lookupLimit)
	if err != nil {
		telemetry.RecordError(span, err)
		data["CatalogError"] = view.FromError(err)
		res = &catalog.Result{}
	}

	featured := res.Courts
	if len(featured) > featuredCourts {
		featured = featured[:featuredCourts]
	}
	data["Courts"] = featured

	games, err := catalog.PublicGames(ctx, api, domain.NewCourtIndex(res.Courts))
	if err != nil {
		telemetry.RecordError(span, err)
		data["GamesError"] = view.FromError(err)
	}
	data["Games"] = games
	data["Origin"] = h.origin

	h.render(c, http.StatusOK, "home.html", data)
}

// Courts renders one page of the catalog
func (h *Handler) Courts(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.page.courts")
	defer span.End()

	data := h.page(c, "Courts")
	res, err := catalog.Load(ctx, h.client(c), queryInt(c, "page", 1), catalog.DefaultLimit)
	if err != nil {
		telemetry.RecordError(span, err)
		data["CatalogError"] = view.FromError(err)
		res = &catalog.Result{Page: domain.Page{Page: 1}}
	}
	data["Catalog"] = res

	h.render(c, http.StatusOK, "courts.html", data)
}

// Help renders the static help page
func (h *Handler) Help(c *gin.Context) {
	data := h.page(c, "Help")
	data["Positions"] = domain.Positions
	h.render(c, http.StatusOK, "help.html", data)
}

// NotFound answers unknown routes
func (h *Handler) NotFound(c *gin.Context) {
	if middleware.WantsJSON(c) {
		h.handleError(c, domain.ErrNotFound)
		return
	}
	h.pageError(c, domain.ErrNotFound)
}
