package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apperrors "github.com/gauravnainwal518/note-app/internal/errors"
	"github.com/gauravnainwal518/note-app/internal/middleware"
	"github.com/gauravnainwal518/note-app/internal/service"
)

// NoteHandler handles note endpoints. Every route requires a session.
type NoteHandler struct {
	noteService service.NoteService
}

// NewNoteHandler creates a new note handler.
func NewNoteHandler(noteService service.NoteService) *NoteHandler {
	return &NoteHandler{noteService: noteService}
}

// CreateNoteRequest represents a note creation request.
type CreateNoteRequest struct {
	Title   string `json:"title" validate:"required,max=255"`
	Content string `json:"content" validate:"required"`
}

// Create godoc
// @Summary Create a note
// @Tags notes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateNoteRequest true "Note"
// @Success 201 {object} model.Note
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /notes [post]
func (h *NoteHandler) Create(c echo.Context) error {
	ownerID, err := middleware.UserID(c)
	if err != nil {
		return toHTTPError(err)
	}

	var req CreateNoteRequest
	if err := c.Bind(&req); err != nil {
		return validationError(err)
	}
	if err := c.Validate(&req); err != nil {
		return validationError(err)
	}

	note, err := h.noteService.Create(c.Request().Context(), ownerID, req.Title, req.Content)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusCreated, note)
}

// List godoc
// @Summary List the caller's notes
// @Tags notes
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Note
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /notes [get]
func (h *NoteHandler) List(c echo.Context) error {
	ownerID, err := middleware.UserID(c)
	if err != nil {
		return toHTTPError(err)
	}

	notes, err := h.noteService.List(c.Request().Context(), ownerID)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, notes)
}

// Delete godoc
// @Summary Delete one of the caller's notes
// @Tags notes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Note ID"
// @Success 200 {object} MessageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /notes/{id} [delete]
func (h *NoteHandler) Delete(c echo.Context) error {
	ownerID, err := middleware.UserID(c)
	if err != nil {
		return toHTTPError(err)
	}

	// a malformed id cannot name any note
	noteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return toHTTPError(apperrors.ErrNoteNotFound)
	}

	if err := h.noteService.Delete(c.Request().Context(), ownerID, noteID); err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Note deleted successfully"})
}
