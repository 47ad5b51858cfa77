package services

import (
	"log"
	"os"
)

// AuditService writes the security audit trail: authentication outcomes,
// password lifecycle events, offer letter access, and user management
// actions.
type AuditService struct {
	logger *log.Logger
}

func NewAuditService() *AuditService {
	return &AuditService{
		logger: log.New(os.Stdout, "security-audit: ", log.LstdFlags),
	}
}

// LogAuthEvent records an authentication event such as LOGIN_SUCCESS,
// LOGIN_FAILURE, or ACCOUNT_LOCKED.
func (a *AuditService) LogAuthEvent(username, eventType, details string) {
	a.logger.Printf("AUTH_EVENT: %s - User: %s - %s", eventType, username, details)
}

// LogPasswordEvent records a password change or reset.
func (a *AuditService) LogPasswordEvent(username, eventType, details string) {
	a.logger.Printf("PASSWORD_EVENT: %s - User: %s - %s", eventType, username, details)
}

// LogOfferLetterEvent records generation, viewing, download, or removal of an
// offer letter.
func (a *AuditService) LogOfferLetterEvent(username, eventType string, offerID uint, details string) {
	a.logger.Printf("OFFER_LETTER_EVENT: %s - User: %s - OfferID: %d - %s", eventType, username, offerID, details)
}

// LogUserManagementEvent records administrative actions on accounts.
func (a *AuditService) LogUserManagementEvent(adminUsername, eventType, targetUsername, details string) {
	a.logger.Printf("USER_MANAGEMENT_EVENT: %s - Admin: %s - Target: %s - %s", eventType, adminUsername, targetUsername, details)
}
