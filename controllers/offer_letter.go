package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/acentrik/hr-portal/models"
	"github.com/acentrik/hr-portal/services"
	"github.com/acentrik/hr-portal/validators"
)

// OfferLetterController handles generation, delivery, retrieval, and removal
// of offer letters.
type OfferLetterController struct {
	letters *services.OfferLetterService
	audit   *services.AuditService
}

func NewOfferLetterController(letters *services.OfferLetterService, audit *services.AuditService) *OfferLetterController {
	return &OfferLetterController{letters: letters, audit: audit}
}

// Generate renders the offer letter, provisions/reuses the recipient
// account, persists the letter, and streams the PDF back as a download.
func (oc *OfferLetterController) Generate(c *gin.Context) {
	form, ok := validators.ValidateOfferFormRequest(c)
	if !ok {
		return
	}

	result, err := oc.letters.Issue(c.Request.Context(), form)
	if err != nil {
		sendServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+result.FileName+`"`)
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Data(http.StatusOK, "application/pdf", result.PDF)
}

// Email renders, persists, and emails the offer letter. Delivery failure is
// reported distinctly; the persisted letter stays.
func (oc *OfferLetterController) Email(c *gin.Context) {
	form, ok := validators.ValidateOfferFormRequest(c)
	if !ok {
		return
	}

	result, err := oc.letters.EmailIssue(c.Request.Context(), form)
	if err != nil {
		sendServiceError(c, err)
		return
	}

	data := gin.H{"recipient_email": form.Email}
	if result.GeneratedPassword != "" {
		data["account_created"] = true
	}
	sendResponse(c, http.StatusOK, "Offer letter emailed successfully", data, nil)
}

// ViewLatest streams the caller's newest offer letter inline.
func (oc *OfferLetterController) ViewLatest(c *gin.Context) {
	oc.serveLatest(c, "inline", "VIEW")
}

// DownloadLatest streams the caller's newest offer letter as an attachment.
func (oc *OfferLetterController) DownloadLatest(c *gin.Context) {
	oc.serveLatest(c, "attachment", "DOWNLOAD")
}

func (oc *OfferLetterController) serveLatest(c *gin.Context, disposition, event string) {
	user, ok := currentUser(c)
	if !ok {
		sendResponse(c, http.StatusUnauthorized, "Authentication required", nil, nil)
		return
	}

	letter, err := oc.letters.LatestForUser(c.Request.Context(), user)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			sendResponse(c, http.StatusNotFound, "No offer letter found", nil, "No offer letter on file")
			return
		}
		sendResponse(c, http.StatusInternalServerError, "Failed to fetch offer letter", nil, "Database error")
		return
	}

	oc.audit.LogOfferLetterEvent(user.Username, event, letter.ID, "latest letter served")
	c.Header("Content-Disposition", disposition+`; filename="`+letter.FileName+`"`)
	c.Data(http.StatusOK, "application/pdf", letter.Content)
}

// ViewByID streams a specific offer letter inline, owner or admin only.
func (oc *OfferLetterController) ViewByID(c *gin.Context) {
	oc.serveByID(c, "inline", "VIEW")
}

// DownloadByID streams a specific offer letter as an attachment, owner or
// admin only.
func (oc *OfferLetterController) DownloadByID(c *gin.Context) {
	oc.serveByID(c, "attachment", "DOWNLOAD")
}

func (oc *OfferLetterController) serveByID(c *gin.Context, disposition, event string) {
	user, ok := currentUser(c)
	if !ok {
		sendResponse(c, http.StatusUnauthorized, "Authentication required", nil, nil)
		return
	}

	letter, ok := oc.lookupLetter(c)
	if !ok {
		return
	}
	if !canAccessLetter(user, letter) {
		sendResponse(c, http.StatusForbidden, "Access denied", nil, "You don't have permission to access this offer letter")
		return
	}

	oc.audit.LogOfferLetterEvent(user.Username, event, letter.ID, "letter served by id")
	c.Header("Content-Disposition", disposition+`; filename="`+letter.FileName+`"`)
	c.Data(http.StatusOK, "application/pdf", letter.Content)
}

// Remove deletes a specific offer letter, owner or admin only.
func (oc *OfferLetterController) Remove(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		sendResponse(c, http.StatusUnauthorized, "Authentication required", nil, nil)
		return
	}

	letter, ok := oc.lookupLetter(c)
	if !ok {
		return
	}
	if !canAccessLetter(user, letter) {
		sendResponse(c, http.StatusForbidden, "Access denied", nil, "You don't have permission to remove this offer letter")
		return
	}

	if err := oc.letters.RemoveByID(c.Request.Context(), letter.ID); err != nil {
		sendServiceError(c, err)
		return
	}

	oc.audit.LogOfferLetterEvent(user.Username, "REMOVE", letter.ID, "letter removed")
	sendResponse(c, http.StatusOK, "Offer letter removed successfully", nil, nil)
}

// Mine lists the caller's letters; admins get their own list too (the admin
// dashboard aggregates per employee via the users endpoint).
func (oc *OfferLetterController) Mine(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		sendResponse(c, http.StatusUnauthorized, "Authentication required", nil, nil)
		return
	}

	letters, err := oc.letters.AllForUser(c.Request.Context(), user)
	if err != nil {
		sendResponse(c, http.StatusInternalServerError, "Failed to fetch offer letters", nil, "Database error")
		return
	}

	list := make([]gin.H, 0, len(letters))
	for _, l := range letters {
		list = append(list, gin.H{
			"id":         l.ID,
			"file_name":  l.FileName,
			"created_at": l.CreatedAt,
		})
	}
	sendResponse(c, http.StatusOK, "Offer letters retrieved", gin.H{"offer_letters": list}, nil)
}

// lookupLetter parses the :id param and loads the letter, writing the error
// response itself on failure.
func (oc *OfferLetterController) lookupLetter(c *gin.Context) (*models.OfferLetter, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		sendResponse(c, http.StatusBadRequest, "Invalid offer letter id", nil, "id must be numeric")
		return nil, false
	}

	letter, lookupErr := oc.letters.ByID(c.Request.Context(), uint(id))
	if lookupErr != nil {
		if errors.Is(lookupErr, services.ErrNotFound) {
			sendResponse(c, http.StatusNotFound, "Offer letter not found", nil, "No such offer letter")
			return nil, false
		}
		sendResponse(c, http.StatusInternalServerError, "Failed to fetch offer letter", nil, "Database error")
		return nil, false
	}
	return letter, true
}
