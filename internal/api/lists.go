package api

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/example/revocab/pkg/models"
)

// ListWordLists returns the user's lists, newest first.
// GET /api/v1/lists
func (s *APIV1Service) ListWordLists(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return badRequest(c, err)
	}

	lists, err := s.lists.GetByUser(c.Request().Context(), uid)
	if err != nil {
		log.Printf("Error listing word lists for user %d: %v", uid, err)
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, lists)
}

// CreateWordListRequest names the new list.
type CreateWordListRequest struct {
	Name string `json:"name"`
}

// CreateWordList creates an empty list for the user.
// POST /api/v1/lists
func (s *APIV1Service) CreateWordList(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return badRequest(c, err)
	}

	var req CreateWordListRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "name is required"})
	}

	list := &models.WordList{UserID: uid, Name: req.Name}
	if err := s.lists.Create(c.Request().Context(), list); err != nil {
		log.Printf("Error creating word list for user %d: %v", uid, err)
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, list)
}

// DeleteWordList removes a list. Review records and words survive with
// their list reference cleared; learning history is kept.
// DELETE /api/v1/lists/:id
func (s *APIV1Service) DeleteWordList(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return badRequest(c, err)
	}
	listID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || listID <= 0 {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid list id"})
	}

	if err := s.lists.Delete(c.Request().Context(), uid, listID); err != nil {
		log.Printf("Error deleting word list %d for user %d: %v", listID, uid, err)
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// CreateWordRequest is a vocabulary item collected into a list.
type CreateWordRequest struct {
	ListID     int64  `json:"list_id"`
	Term       string `json:"term"`
	Definition string `json:"definition"`
	Phonetic   string `json:"phonetic"`
	Hint       string `json:"hint"`
}

// CreateWord collects a word into a list and provisions its review record
// (state=new, due immediately).
// POST /api/v1/words
func (s *APIV1Service) CreateWord(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return badRequest(c, err)
	}

	var req CreateWordRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	if req.ListID <= 0 {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "list_id must be positive"})
	}
	req.Term = strings.TrimSpace(req.Term)
	req.Definition = strings.TrimSpace(req.Definition)
	if req.Term == "" || req.Definition == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "term and definition are required"})
	}

	ctx := c.Request().Context()
	list, err := s.lists.GetByID(ctx, req.ListID)
	if err != nil {
		return fail(c, err)
	}
	if list.UserID != uid {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "list not found"})
	}

	word := &models.Word{
		ListID:     &req.ListID,
		Term:       req.Term,
		Definition: req.Definition,
		Phonetic:   req.Phonetic,
		Hint:       req.Hint,
	}
	if err := s.words.Create(ctx, word); err != nil {
		log.Printf("Error creating word for user %d: %v", uid, err)
		return fail(c, err)
	}
	if _, err := s.records.Ensure(ctx, uid, word.ID, word.ListID); err != nil {
		log.Printf("Error ensuring record for new word %d: %v", word.ID, err)
		return fail(c, err)
	}

	return c.JSON(http.StatusCreated, word)
}
