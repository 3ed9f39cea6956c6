// internal/api/listings.go
package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"listing-service/internal/catalog"
	"listing-service/internal/common/errors"
	"listing-service/internal/common/validation"
	"listing-service/internal/listing"
	"listing-service/internal/repository"

	"github.com/gin-gonic/gin"
)

const maxPageSize = 100

// browseState reads name, min_price, max_price, type, location, sort, page
// and page_size from the query string.
func (h *handlers) browseState(c *gin.Context) (listing.BrowseState, error) {
	filter, err := listing.ParseFilter(
		c.Query("name"),
		c.Query("min_price"),
		c.Query("max_price"),
		c.Query("type"),
		c.Query("location"),
	)
	if err != nil {
		return listing.BrowseState{}, err
	}

	page, err := queryInt(c, "page", 1)
	if err != nil {
		return listing.BrowseState{}, err
	}
	pageSize, err := queryInt(c, "page_size", h.deps.PageSize)
	if err != nil {
		return listing.BrowseState{}, err
	}
	if pageSize > maxPageSize {
		return listing.BrowseState{}, errors.NewInvalidRequestError("page_size must not exceed " + strconv.Itoa(maxPageSize))
	}

	return listing.NewBrowseState(pageSize).
		WithFilter(filter).
		WithSort(listing.ParseSortKey(c.Query("sort"))).
		WithPage(page), nil
}

// queryInt parses an optional integer parameter. Blank means def.
func queryInt(c *gin.Context, name string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.NewInvalidRequestError(name + " must be an integer")
	}
	return n, nil
}

func (h *handlers) listProperties(c *gin.Context) {
	state, err := h.browseState(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	page, err := h.deps.Catalog.Browse(c.Request.Context(), catalog.EntryAPI, state)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newListResponse(page.Result, page.Fallback, page.Message))
}

func (h *handlers) searchProperties(c *gin.Context) {
	state, err := h.browseState(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	page, err := h.deps.Catalog.Search(c.Request.Context(), state)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newListResponse(page.Result, false, ""))
}

func (h *handlers) refreshProperties(c *gin.Context) {
	snap, err := h.deps.Catalog.Refresh(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"count":    len(snap.Raw),
		"fallback": snap.Fallback,
		"message":  snap.Message,
	})
}

func (h *handlers) getProperty(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}

	prop, err := h.deps.Listings.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "property": prop})
}

func (h *handlers) createProperty(c *gin.Context) {
	body, err := readValidated(c, validation.SchemaProperty)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var prop repository.Property
	if err := json.Unmarshal(body, &prop); err != nil {
		h.respondError(c, errors.NewInvalidRequestError(err.Error()))
		return
	}
	prop.ID = 0

	if err := h.deps.Dashboard.Create(c.Request.Context(), c.GetInt64(ctxAgentID), &prop); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"message":  "Property created successfully",
		"property": prop,
	})
}

// updateProperty applies the fields present in the body over the stored
// listing, then validates the merged result.
func (h *handlers) updateProperty(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.respondError(c, errors.NewInvalidRequestError(err.Error()))
		return
	}

	ctx := c.Request.Context()
	current, err := h.deps.Listings.Get(ctx, id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	merged := *current
	if err := json.Unmarshal(body, &merged); err != nil {
		h.respondError(c, errors.NewInvalidRequestError(err.Error()))
		return
	}
	merged.ID = current.ID
	merged.AgentID = current.AgentID
	merged.CreatedAt = current.CreatedAt

	if err := validateDocument(validation.SchemaProperty, merged); err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.deps.Dashboard.Update(ctx, c.GetInt64(ctxAgentID), &merged); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Property updated successfully",
		"property": merged,
	})
}

func (h *handlers) deleteProperty(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.deps.Dashboard.Delete(c.Request.Context(), c.GetInt64(ctxAgentID), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Success: true, Message: "Property deleted successfully"})
}

// readValidated reads the request body and checks it against schema.
func readValidated(c *gin.Context, schema string) ([]byte, error) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, errors.NewInvalidRequestError(err.Error())
	}
	if len(body) == 0 {
		return nil, errors.NewInvalidRequestError("request body is required")
	}
	if err := validateDocument(schema, body); err != nil {
		return nil, err
	}
	return body, nil
}

func validateDocument(schema string, document interface{}) error {
	res, err := validation.Validate(schema, document)
	if err != nil {
		return errors.NewInvalidRequestError(err.Error())
	}
	if !res.Valid {
		return errors.NewInvalidRequestError(strings.Join(res.GetErrorMessages(), "; "))
	}
	return nil
}
