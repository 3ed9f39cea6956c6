// internal/api/favorites.go
package api

import (
	stderrors "errors"
	"net/http"

	"listing-service/internal/common/errors"
	"listing-service/internal/common/validation"
	"listing-service/internal/repository"

	"github.com/gin-gonic/gin"
)

type favoriteRequest struct {
	PropertyID int64 `json:"property_id"`
}

// listFavorites resolves each favorite id to its listing. Ids whose listing
// has since been deleted are skipped.
func (h *handlers) listFavorites(c *gin.Context) {
	ctx := c.Request.Context()
	userID := c.GetInt64(ctxUserID)

	ids, err := h.deps.Favorites.List(ctx, userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	props := make([]repository.Property, 0, len(ids))
	for _, id := range ids {
		p, err := h.deps.Listings.Get(ctx, id)
		if stderrors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			h.respondError(c, err)
			return
		}
		props = append(props, *p)
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(props), "favorites": props})
}

func (h *handlers) addFavorite(c *gin.Context) {
	var req favoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, errors.NewInvalidRequestError(err.Error()))
		return
	}
	if err := validateDocument(validation.SchemaFavorite, req); err != nil {
		h.respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	if _, err := h.deps.Listings.Get(ctx, req.PropertyID); err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.deps.Favorites.Add(ctx, c.GetInt64(ctxUserID), req.PropertyID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Property added to favorites",
		"favorite": gin.H{
			"user_id":     c.GetInt64(ctxUserID),
			"property_id": req.PropertyID,
		},
	})
}

func (h *handlers) removeFavorite(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.deps.Favorites.Remove(c.Request.Context(), c.GetInt64(ctxUserID), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Success: true, Message: "Property removed from favorites"})
}

func (h *handlers) checkFavorite(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}

	ok, err := h.deps.Favorites.IsFavorite(c.Request.Context(), c.GetInt64(ctxUserID), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "is_favorite": ok})
}
