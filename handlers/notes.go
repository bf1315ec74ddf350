package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/noteshare/noteshare/internal/access"
	"github.com/noteshare/noteshare/internal/identity"
	"github.com/noteshare/noteshare/internal/models"
	"github.com/noteshare/noteshare/internal/note"
	"github.com/noteshare/noteshare/internal/note/repository"
	"github.com/noteshare/noteshare/internal/storage"
	"github.com/noteshare/noteshare/internal/users"
	"github.com/noteshare/noteshare/pkg/logger"
	"github.com/noteshare/noteshare/pkg/middleware"
)

// NotesHandler wires the note CRUD surface through the ownership guard. The
// same handler serves all frontends; authorization lives entirely in the
// guard, never in per-route branches.
type NotesHandler struct {
	store       repository.Store
	guard       *access.Guard
	directory   *users.Directory
	attachments *storage.AttachmentStore // nil when MinIO is not configured
}

func NewNotesHandler(store repository.Store, guard *access.Guard, directory *users.Directory, attachments *storage.AttachmentStore) *NotesHandler {
	return &NotesHandler{store: store, guard: guard, directory: directory, attachments: attachments}
}

// Register mounts the notes API under the given group (normally /api/v1).
func (h *NotesHandler) Register(rg *gin.RouterGroup) {
	n := rg.Group("/notes")
	n.GET("", h.List)
	n.POST("", h.Create)
	n.GET("/:id", h.Get)
	n.PUT("/:id", h.Update)
	n.DELETE("/:id", h.Delete)
	n.POST("/:id/attachment", h.UploadAttachment)
	n.GET("/:id/attachment", h.DownloadAttachment)

	rg.GET("/me", h.Me)
}

type createNoteRequest struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	Visibility string `json:"visibility"`
}

type updateNoteRequest struct {
	Title      *string `json:"title,omitempty"`
	Content    *string `json:"content,omitempty"`
	Visibility *string `json:"visibility,omitempty"`
}

// List returns the notes visible to the caller: everything for admins,
// ownerless public notes plus the caller's own notes for authenticated
// users, ownerless public notes only for anonymous visitors.
func (h *NotesHandler) List(c *gin.Context) {
	ident := middleware.IdentityFrom(c)

	all, err := h.store.List(c.Request.Context())
	if err != nil {
		logger.Errorf("list notes: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	callerID := ""
	if ident.Tier == identity.TierUser {
		u, err := h.resolveUser(c.Request.Context(), ident)
		if err != nil {
			h.infraError(c, err)
			return
		}
		callerID = u.ID
	}

	out := make([]gin.H, 0, len(all))
	for _, n := range all {
		visible := ident.Tier == identity.TierAdmin ||
			n.Ownerless() ||
			(callerID != "" && n.OwnerID == callerID)
		if !visible {
			continue
		}
		out = append(out, gin.H{
			"id":         n.ID,
			"title":      n.Title,
			"visibility": n.Visibility,
			"ownerId":    n.OwnerID,
			"updatedAt":  n.UpdatedAt,
		})
	}
	c.JSON(http.StatusOK, out)
}

// Create makes a new note. Authenticated callers own what they create;
// anonymous and admin callers create ownerless notes, which must be public.
func (h *NotesHandler) Create(c *gin.Context) {
	var req createNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Visibility == "" {
		req.Visibility = note.VisibilityPublic
	}

	ident := middleware.IdentityFrom(c)
	n := &note.Note{Title: req.Title, Content: req.Content, Visibility: req.Visibility}
	if ident.Tier == identity.TierUser {
		u, err := h.resolveUser(c.Request.Context(), ident)
		if err != nil {
			h.infraError(c, err)
			return
		}
		n.OwnerID = u.ID
	}

	id, err := h.store.Create(c.Request.Context(), n)
	if err != nil {
		if errors.Is(err, note.ErrOwnerlessPrivate) || errors.Is(err, note.ErrInvalidVisibility) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Errorf("create note: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id, "ownerId": n.OwnerID, "visibility": n.Visibility})
}

func (h *NotesHandler) Get(c *gin.Context) {
	dec, ok := h.authorize(c, access.OpRead)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dec.Note)
}

func (h *NotesHandler) Update(c *gin.Context) {
	var req updateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dec, ok := h.authorize(c, access.OpUpdate)
	if !ok {
		return
	}
	if req.Visibility != nil && *req.Visibility == note.VisibilityPrivate && dec.Note.Ownerless() {
		c.JSON(http.StatusBadRequest, gin.H{"error": note.ErrOwnerlessPrivate.Error()})
		return
	}

	upd := repository.Update{Title: req.Title, Content: req.Content, Visibility: req.Visibility}
	if err := h.store.Update(c.Request.Context(), dec.Note.ID, upd); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		if errors.Is(err, note.ErrInvalidVisibility) || errors.Is(err, note.ErrOwnerlessPrivate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Errorf("update note %s: %v", dec.Note.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": dec.Note.ID})
}

func (h *NotesHandler) Delete(c *gin.Context) {
	dec, ok := h.authorize(c, access.OpDelete)
	if !ok {
		return
	}
	if err := h.store.Delete(c.Request.Context(), dec.Note.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		logger.Errorf("delete note %s: %v", dec.Note.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if h.attachments != nil {
		if err := h.attachments.Delete(c.Request.Context(), dec.Note.ID); err != nil {
			logger.Warnf("delete attachment for %s: %v", dec.Note.ID, err)
		}
	}
	c.Status(http.StatusNoContent)
}

// UploadAttachment stores the request body as the note's attachment. It is
// a mutation of the note, so it runs under the update operation.
func (h *NotesHandler) UploadAttachment(c *gin.Context) {
	if h.attachments == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "attachment storage not configured"})
		return
	}
	dec, ok := h.authorize(c, access.OpUpdate)
	if !ok {
		return
	}
	contentType := c.GetHeader("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := h.attachments.Put(c.Request.Context(), dec.Note.ID, c.Request.Body, c.Request.ContentLength, contentType); err != nil {
		logger.Errorf("store attachment for %s: %v", dec.Note.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "attachment upload failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": dec.Note.ID})
}

func (h *NotesHandler) DownloadAttachment(c *gin.Context) {
	if h.attachments == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "attachment storage not configured"})
		return
	}
	dec, ok := h.authorize(c, access.OpRead)
	if !ok {
		return
	}
	rc, err := h.attachments.Get(c.Request.Context(), dec.Note.ID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no attachment"})
		return
	}
	defer rc.Close()
	c.Header("Content-Type", "application/octet-stream")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		logger.Warnf("stream attachment for %s: %v", dec.Note.ID, err)
	}
}

// Me returns the caller's local user record, provisioning it on first sight.
func (h *NotesHandler) Me(c *gin.Context) {
	ident := middleware.IdentityFrom(c)
	switch ident.Tier {
	case identity.TierAdmin:
		c.JSON(http.StatusOK, gin.H{"admin": true})
	case identity.TierUser:
		u, err := h.resolveUser(c.Request.Context(), ident)
		if err != nil {
			h.infraError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": u})
	default:
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
	}
}

// authorize runs the ownership guard for the :id note and writes the deny
// response when access is refused. Returns ok=false when the handler must
// stop.
func (h *NotesHandler) authorize(c *gin.Context, op access.Operation) (access.Decision, bool) {
	ident := middleware.IdentityFrom(c)
	dec, err := h.guard.Check(c.Request.Context(), ident, c.Param("id"), op)
	if err != nil {
		h.infraError(c, err)
		return access.Decision{}, false
	}
	if !dec.Allowed {
		c.JSON(dec.Reason.Status(), gin.H{"error": dec.Reason.String()})
		return dec, false
	}
	return dec, true
}

func (h *NotesHandler) resolveUser(ctx context.Context, ident identity.Identity) (*models.User, error) {
	return h.directory.FindOrCreate(ctx, ident.Subject, func(context.Context, string) (models.Claims, error) {
		return ident.Claims, nil
	})
}

func (h *NotesHandler) infraError(c *gin.Context, err error) {
	logger.Errorf("access check failed: %v", err)
	if errors.Is(err, users.ErrIdentityProvider) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "identity provider unavailable"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
