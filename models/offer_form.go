package models

import (
	"time"
)

// OfferForm is the structured input for generating an offer letter. It is
// request payload only, never persisted.
type OfferForm struct {
	FirstName   string
	LastName    string
	Email       string
	Domain      string
	Manager     string
	JoiningDate time.Time
	Role        string
}

// FullName returns the recipient's display name.
func (f *OfferForm) FullName() string {
	return f.FirstName + " " + f.LastName
}

// FileName is the canonical attachment name for the rendered letter.
func (f *OfferForm) FileName() string {
	return f.FirstName + f.LastName + "_OfferLetter.pdf"
}
