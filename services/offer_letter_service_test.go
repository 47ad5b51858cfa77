package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acentrik/hr-portal/models"
	"github.com/acentrik/hr-portal/repository"
)

type fakeGenerator struct {
	fail  bool
	calls int
}

func (g *fakeGenerator) Generate(form *models.OfferForm) ([]byte, error) {
	g.calls++
	if g.fail {
		return nil, &RenderError{Err: errors.New("layout exploded")}
	}
	return []byte("%PDF-1.4 " + form.FullName()), nil
}

type fakeMailer struct {
	fail       bool
	sentTo     string
	sentBody   string
	attachment []byte
}

func (m *fakeMailer) SendPDF(to, subject, body string, attachment []byte, name string) error {
	if m.fail {
		return errors.New("smtp unreachable")
	}
	m.sentTo = to
	m.sentBody = body
	m.attachment = attachment
	return nil
}

func testOfferForm() *models.OfferForm {
	return &models.OfferForm{
		FirstName:   "Jane",
		LastName:    "Doe",
		Email:       "jane.doe@example.com",
		Manager:     "Alex Smith",
		JoiningDate: time.Date(2026, time.September, 14, 0, 0, 0, 0, time.UTC),
		Role:        "Business Analyst",
	}
}

func newTestOfferService(t *testing.T, gen PDFGenerator, mailer Mailer) (*OfferLetterService, *UserService, *repository.MemoryStore) {
	t.Helper()
	users, store := newTestUserService(t)
	svc := NewOfferLetterService(store.Letters(), users, NewPasswordValidator(), gen, mailer, NewAuditService())
	return svc, users, store
}

func TestIssueProvisionsNewAccount(t *testing.T) {
	svc, users, store := newTestOfferService(t, &fakeGenerator{}, &fakeMailer{})
	ctx := context.Background()

	result, err := svc.Issue(ctx, testOfferForm())
	require.NoError(t, err)
	require.NotNil(t, result.User)
	assert.NotEmpty(t, result.PDF)
	assert.Equal(t, "JaneDoe_OfferLetter.pdf", result.FileName)

	// A fresh USER account with a generated compliant password.
	assert.Equal(t, models.RoleUser, result.User.Role)
	require.NotEmpty(t, result.GeneratedPassword)
	assert.Empty(t, NewPasswordValidator().ValidateComplexity(result.GeneratedPassword))

	// The generated credentials actually work.
	_, err = users.Authenticate(ctx, "jane.doe@example.com", result.GeneratedPassword)
	assert.NoError(t, err)

	// The letter is on file for the recipient.
	letters, err := store.Letters().FindByUser(ctx, result.User.ID)
	require.NoError(t, err)
	require.Len(t, letters, 1)
	assert.Equal(t, result.PDF, letters[0].Content)
}

func TestIssueReusesExistingAccount(t *testing.T) {
	svc, users, _ := newTestOfferService(t, &fakeGenerator{}, &fakeMailer{})
	ctx := context.Background()

	existing, err := users.Register(ctx, "jane.doe@example.com", "Str0ng!Pwd", models.RoleUser)
	require.NoError(t, err)

	result, err := svc.Issue(ctx, testOfferForm())
	require.NoError(t, err)
	assert.Equal(t, existing.ID, result.User.ID)
	assert.Empty(t, result.GeneratedPassword, "no credentials generated for an existing account")
}

func TestIssueRenderFailureAbortsBeforeSideEffects(t *testing.T) {
	svc, users, _ := newTestOfferService(t, &fakeGenerator{fail: true}, &fakeMailer{})
	ctx := context.Background()

	_, err := svc.Issue(ctx, testOfferForm())
	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)

	// No account was provisioned and nothing was persisted.
	_, err = users.GetUserByUsername(ctx, "jane.doe@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
	all, err := users.GetAllUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestEmailIssueIncludesCredentialsForNewAccount(t *testing.T) {
	mailer := &fakeMailer{}
	svc, _, _ := newTestOfferService(t, &fakeGenerator{}, mailer)
	ctx := context.Background()

	result, err := svc.EmailIssue(ctx, testOfferForm())
	require.NoError(t, err)

	assert.Equal(t, "jane.doe@example.com", mailer.sentTo)
	assert.Equal(t, result.PDF, mailer.attachment)
	assert.Contains(t, mailer.sentBody, "YOUR LOGIN CREDENTIALS")
	assert.Contains(t, mailer.sentBody, result.GeneratedPassword)
	assert.Contains(t, mailer.sentBody, "Business Analyst")
}

func TestEmailIssueOmitsCredentialsForExistingAccount(t *testing.T) {
	mailer := &fakeMailer{}
	svc, users, _ := newTestOfferService(t, &fakeGenerator{}, mailer)
	ctx := context.Background()

	_, err := users.Register(ctx, "jane.doe@example.com", "Str0ng!Pwd", models.RoleUser)
	require.NoError(t, err)

	_, err = svc.EmailIssue(ctx, testOfferForm())
	require.NoError(t, err)
	assert.False(t, strings.Contains(mailer.sentBody, "YOUR LOGIN CREDENTIALS"))
}

func TestEmailIssueDeliveryFailureKeepsLetter(t *testing.T) {
	svc, users, store := newTestOfferService(t, &fakeGenerator{}, &fakeMailer{fail: true})
	ctx := context.Background()

	result, err := svc.EmailIssue(ctx, testOfferForm())
	var deliveryErr *DeliveryError
	require.ErrorAs(t, err, &deliveryErr)
	require.NotNil(t, result, "the issue result survives a delivery failure")

	// The letter was persisted before delivery and is not rolled back.
	user, err := users.GetUserByUsername(ctx, "jane.doe@example.com")
	require.NoError(t, err)
	letters, err := store.Letters().FindByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, letters, 1)
}

func TestLatestForUserOrdering(t *testing.T) {
	svc, users, store := newTestOfferService(t, &fakeGenerator{}, &fakeMailer{})
	ctx := context.Background()

	alice, err := users.Register(ctx, "alice", "Str0ng!Pwd", models.RoleUser)
	require.NoError(t, err)

	older := &models.OfferLetter{UserID: alice.ID, FileName: "old.pdf", Content: []byte("old"), CreatedAt: time.Now().Add(-time.Hour)}
	newer := &models.OfferLetter{UserID: alice.ID, FileName: "new.pdf", Content: []byte("new"), CreatedAt: time.Now()}
	require.NoError(t, store.Letters().Create(ctx, older))
	require.NoError(t, store.Letters().Create(ctx, newer))

	latest, err := svc.LatestForUser(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "new.pdf", latest.FileName)

	all, err := svc.AllForUser(ctx, alice)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "new.pdf", all[0].FileName, "newest first")
}

func TestRemoveByID(t *testing.T) {
	svc, users, store := newTestOfferService(t, &fakeGenerator{}, &fakeMailer{})
	ctx := context.Background()

	alice, err := users.Register(ctx, "alice", "Str0ng!Pwd", models.RoleUser)
	require.NoError(t, err)
	letter := &models.OfferLetter{UserID: alice.ID, FileName: "a.pdf", Content: []byte("a")}
	require.NoError(t, store.Letters().Create(ctx, letter))

	require.NoError(t, svc.RemoveByID(ctx, letter.ID))
	_, err = svc.ByID(ctx, letter.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.RemoveByID(ctx, letter.ID), ErrNotFound)
}
