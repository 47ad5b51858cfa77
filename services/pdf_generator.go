package services

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/acentrik/hr-portal/models"
)

// PDFGenerator renders an offer letter from structured form fields.
type PDFGenerator interface {
	Generate(form *models.OfferForm) ([]byte, error)
}

const letterDateLayout = "Jan-02-2006"

// OfferPDFGenerator renders the company offer letter with gofpdf.
type OfferPDFGenerator struct {
	CompanyName string
	Tagline     string
	SignerName  string
	SignerTitle string
}

func NewOfferPDFGenerator() *OfferPDFGenerator {
	return &OfferPDFGenerator{
		CompanyName: "Acentrik Technology Solutions LLC",
		Tagline:     "Passion, Innovation & Trust",
		SignerName:  "Kishore Medikonda",
		SignerTitle: "HR Director",
	}
}

// Generate renders the letter and returns the PDF bytes. Any layout or
// encoding failure is wrapped in a RenderError; no side effects occur here.
func (g *OfferPDFGenerator) Generate(form *models.OfferForm) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	pdf.SetFont("Times", "B", 16)
	pdf.CellFormat(0, 8, g.CompanyName, "", 1, "C", false, 0, "")
	pdf.SetFont("Times", "B", 12)
	pdf.CellFormat(0, 6, g.Tagline, "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Times", "", 12)
	pdf.CellFormat(0, 6, time.Now().Format(letterDateLayout), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Times", "B", 12)
	pdf.CellFormat(0, 6, "Offer of Internship", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Times", "", 12)
	joining := form.JoiningDate.Format(letterDateLayout)
	paragraphs := []string{
		fmt.Sprintf("Dear %s,", form.FullName()),
		fmt.Sprintf("It's my pleasure to offer you a %s role at Acentrik. Your internship will be from %s.", form.Role, joining),
		fmt.Sprintf("On behalf of Acentrik Technology Solutions, LLC, 4425 W Airport fwy, Suite 117, Irving, TX-75062, we are pleased to welcome you. You will report to %s (Reporting Manager) during your internship period with us.", form.Manager),
	}
	for _, p := range paragraphs {
		pdf.MultiCell(0, 6, p, "", "J", false)
		pdf.Ln(2)
	}

	pdf.SetFont("Times", "B", 12)
	pdf.CellFormat(0, 6, "Your Job responsibilities include:", "", 1, "L", false, 0, "")
	pdf.SetFont("Times", "", 12)
	responsibilities := []string{
		"Conduct business process analysis to understand existing workflow and systems, document current processes and systems.",
		"Create requirements for new processes, develop use cases and manage requirement changes.",
		"Have strong technical acumen with the ability to translate information and research into non-technical language as necessary to effectively communicate across teams.",
		"Gather, summarize, and verify information used to populate reports and deliverables.",
		"Facilitate requirement reviews with stakeholders, perform QA testing and conduct UAT with business/process teams.",
		"Maintain documentation related to CMDB processes, procedures, and configurations.",
	}
	for _, r := range responsibilities {
		pdf.MultiCell(0, 6, tr("  • "+r), "", "J", false)
	}
	pdf.Ln(2)

	sections := []struct {
		title string
		body  string
	}{
		{"Company Agreements: ", "For the purpose of Federal Immigration Law, you will be required to provide the evidence of your identity and eligibility for internship in the United States. Such documentation must be provided to us within three business days of your date of hire with Acentrik Technology Solutions, LLC, or your internship may be terminated."},
		{"At-Will Employment: ", "If you accept this offer, you understand and agree that your employment with the Company is for no specified period and constitutes \"at-will\" employment. As a result, you will be free to resign at any time or for any reason or no reason. The company will similarly have the right to end its employment relationship with you at any time, with or without notice and with or without cause."},
	}
	for _, s := range sections {
		pdf.SetFont("Times", "B", 12)
		pdf.Write(6, s.title)
		pdf.SetFont("Times", "", 12)
		pdf.Write(6, s.body)
		pdf.Ln(8)
	}

	pdf.MultiCell(0, 6, "If you have any questions or need further information, please feel free to contact me at 972-799-6164 or kishore.medikonda@acentriktech.com. We look forward to seeing you and we offer you a very warm welcome.", "", "J", false)
	pdf.Ln(4)
	pdf.MultiCell(0, 6, "Sincerely,", "", "L", false)
	pdf.Ln(2)
	pdf.MultiCell(0, 6, fmt.Sprintf("%s\n%s\n%s", g.SignerName, g.SignerTitle, g.CompanyName), "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, &RenderError{Err: err}
	}
	return buf.Bytes(), nil
}
