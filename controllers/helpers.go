package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"gymdesk-backend/services"
	"gymdesk-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// paramID parses a uuid path parameter, writing a 400 on failure.
func paramID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid "+name+" format")
		return uuid.Nil, false
	}
	return id, true
}

func queryID(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid "+name+" format")
		return nil, false
	}
	return &id, true
}

func parseOptionalDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := utils.ParseDate(raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// queryRange reads startDate/endDate. A bare end date covers the whole day.
func queryRange(c *gin.Context) (start, end *time.Time, ok bool) {
	start, err := parseOptionalDate(c.Query("startDate"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		return nil, nil, false
	}
	endRaw := c.Query("endDate")
	end, err = parseOptionalDate(endRaw)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		return nil, nil, false
	}
	if end != nil && len(endRaw) == len("2006-01-02") {
		e := utils.EndOfDay(*end)
		end = &e
	}
	return start, end, true
}

func queryPage(c *gin.Context) services.Page {
	limit, _ := strconv.Atoi(c.Query("limit"))
	skip, _ := strconv.Atoi(c.Query("skip"))
	return services.Page{Limit: limit, Skip: skip}
}

func bodyDate(c *gin.Context, raw string) (*time.Time, bool) {
	t, err := parseOptionalDate(raw)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return t, true
}

// actorID is the authenticated staff id, when auth is enabled.
func actorID(c *gin.Context) *uuid.UUID {
	raw, ok := c.Get("staffId")
	if !ok {
		return nil
	}
	s, _ := raw.(string)
	id, err := uuid.Parse(s)
	if err != nil {
		return nil
	}
	return &id
}

type listResponse[T any] struct {
	Data  []T   `json:"data"`
	Total int64 `json:"total"`
}
