package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/acentrik/hr-portal/models"
	"github.com/acentrik/hr-portal/repository"
)

// IssueResult is the outcome of generating an offer letter. Letter is nil
// when no recipient account could be resolved (the PDF bytes are still
// returned for download). GeneratedPassword is set only when a fresh account
// was provisioned for the recipient.
type IssueResult struct {
	PDF               []byte
	FileName          string
	User              *models.User
	Letter            *models.OfferLetter
	GeneratedPassword string
}

// OfferLetterService generates offer letters, provisions recipient accounts,
// and keeps the issued-letter records.
type OfferLetterService struct {
	letters   repository.OfferLetterRepository
	users     *UserService
	validator *PasswordValidator
	generator PDFGenerator
	mailer    Mailer
	audit     *AuditService
}

func NewOfferLetterService(
	letters repository.OfferLetterRepository,
	users *UserService,
	validator *PasswordValidator,
	generator PDFGenerator,
	mailer Mailer,
	audit *AuditService,
) *OfferLetterService {
	return &OfferLetterService{
		letters:   letters,
		users:     users,
		validator: validator,
		generator: generator,
		mailer:    mailer,
		audit:     audit,
	}
}

// Issue renders the offer letter and records it for the recipient.
//
// Rendering runs first: a render failure aborts before any account or letter
// exists. The recipient account is then resolved by email, or provisioned
// with a generated password and USER role. A provisioning failure does not
// undo the render (the bytes are still returned), but the letter is only
// persisted when a recipient account exists.
func (s *OfferLetterService) Issue(ctx context.Context, form *models.OfferForm) (*IssueResult, error) {
	pdfBytes, err := s.generator.Generate(form)
	if err != nil {
		var re *RenderError
		if errors.As(err, &re) {
			return nil, err
		}
		return nil, &RenderError{Err: err}
	}

	result := &IssueResult{
		PDF:      pdfBytes,
		FileName: form.FileName(),
	}

	user, generated, err := s.resolveRecipient(ctx, form.Email)
	if err != nil {
		// The letter was already rendered; the caller still gets the bytes.
		log.Printf("offer letter: could not resolve recipient account for %s: %v", form.Email, err)
		return result, nil
	}
	result.User = user
	result.GeneratedPassword = generated

	letter := &models.OfferLetter{
		UserID:    user.ID,
		FileName:  result.FileName,
		Content:   pdfBytes,
		CreatedAt: time.Now(),
	}
	if err := s.letters.Create(ctx, letter); err != nil {
		log.Printf("offer letter: failed to persist letter for %s: %v", form.Email, err)
		return result, nil
	}
	result.Letter = letter

	s.audit.LogOfferLetterEvent(form.Email, "GENERATE", letter.ID, "offer letter issued")
	return result, nil
}

// resolveRecipient reuses an existing account for the email or provisions a
// fresh USER account with a random compliant password.
func (s *OfferLetterService) resolveRecipient(ctx context.Context, email string) (*models.User, string, error) {
	user, err := s.users.GetUserByUsername(ctx, email)
	if err == nil {
		return user, "", nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, "", err
	}

	password := s.validator.GenerateRandomPassword()
	user, err = s.users.Register(ctx, email, password, models.RoleUser)
	if err != nil {
		return nil, "", err
	}
	return user, password, nil
}

// EmailIssue issues the offer letter and mails it to the recipient. The
// credentials block is appended only when a fresh account was provisioned.
// A transport failure comes back as a DeliveryError; the persisted letter is
// not rolled back.
func (s *OfferLetterService) EmailIssue(ctx context.Context, form *models.OfferForm) (*IssueResult, error) {
	result, err := s.Issue(ctx, form)
	if err != nil {
		return nil, err
	}

	subject := "Your Internship Offer from Acentrik Technology Solutions"
	body := s.buildEmailBody(form)
	if result.GeneratedPassword != "" {
		body += "\n\n----- YOUR LOGIN CREDENTIALS -----\n" +
			"Username: " + form.Email + "\n" +
			"Password: " + result.GeneratedPassword + "\n" +
			"Please login at our portal to view your profile and offer letter.\n"
	}

	if err := s.mailer.SendPDF(form.Email, subject, body, result.PDF, result.FileName); err != nil {
		return result, &DeliveryError{Err: err}
	}

	s.audit.LogOfferLetterEvent(form.Email, "EMAIL", letterID(result), "offer letter emailed")
	return result, nil
}

func letterID(r *IssueResult) uint {
	if r.Letter != nil {
		return r.Letter.ID
	}
	return 0
}

func (s *OfferLetterService) buildEmailBody(form *models.OfferForm) string {
	return fmt.Sprintf(
		"Dear %s,\n\n"+
			"We are pleased to offer you the %s position at Acentrik Technology Solutions. "+
			"Your internship will begin on %s.\n\n"+
			"Please find attached your official offer letter with all the details.\n\n"+
			"If you have any questions, please don't hesitate to contact us.\n\n"+
			"Best regards,\n"+
			"Kishore Medikonda\n"+
			"HR Director\n"+
			"Acentrik Technology Solutions LLC",
		form.FullName(), form.Role, form.JoiningDate.Format(letterDateLayout),
	)
}

// LatestForUser returns the newest letter for a user, or ErrNotFound.
func (s *OfferLetterService) LatestForUser(ctx context.Context, user *models.User) (*models.OfferLetter, error) {
	letter, err := s.letters.FindLatestByUser(ctx, user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return letter, nil
}

// AllForUser returns every letter for a user, newest first.
func (s *OfferLetterService) AllForUser(ctx context.Context, user *models.User) ([]models.OfferLetter, error) {
	return s.letters.FindByUser(ctx, user.ID)
}

// ByID returns one letter, or ErrNotFound. Ownership checks belong to the
// caller.
func (s *OfferLetterService) ByID(ctx context.Context, id uint) (*models.OfferLetter, error) {
	letter, err := s.letters.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return letter, nil
}

// RemoveByID deletes one letter, or ErrNotFound.
func (s *OfferLetterService) RemoveByID(ctx context.Context, id uint) error {
	if err := s.letters.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
