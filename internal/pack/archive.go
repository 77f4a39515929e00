package pack

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"

	"tenancypack/internal/domain"
)

// Archive entry names.
const (
	EntryAgreement = "Tenancy_Agreement.pdf"
	EntryGuide     = "How_to_Rent_Guide.pdf"
	EntryChecklist = "Tenancy_Checklist.pdf"
	EntrySummary   = "Document_Summary.pdf"
)

// CertificateEntries maps each supporting document to its archive entry.
var CertificateEntries = map[domain.DocumentKey]string{
	domain.DocumentEPC:         "Energy_Performance_Certificate.pdf",
	domain.DocumentGasSafety:   "Gas_Safety_Certificate.pdf",
	domain.DocumentEICR:        "Electrical_Safety_Certificate.pdf",
	domain.DocumentRightToRent: "Right_to_Rent_Documentation.pdf",
	domain.DocumentDeposit:     "Deposit_Protection_Evidence.pdf",
}

const guideText = "How to Rent Guide\nThis would be the latest official government guide.\n"

// Placeholder is the stand-in written for a certificate the landlord says
// they hold. Uploaded files are never received.
func Placeholder(entry string) []byte {
	name := strings.TrimSuffix(strings.ReplaceAll(entry, "_", " "), ".pdf")
	return []byte("Placeholder for " + name + "\nThis document was acknowledged as available by the landlord.\n")
}

type archiveWriter struct {
	zw       *zip.Writer
	modified time.Time
	entries  []string
}

func (a *archiveWriter) add(name string, r io.Reader) error {
	w, err := a.zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: a.modified,
	})
	if err != nil {
		return fmt.Errorf("add %s: %w", name, err)
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	a.entries = append(a.entries, name)
	return nil
}

func (a *archiveWriter) addFile(name, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()
	return a.add(name, f)
}

// assemble writes the pack archive into the workspace. Entries are added in
// a fixed order: agreement, acknowledged certificates, guide, checklist,
// summary.
func (b *Builder) assemble(ctx context.Context, req *domain.TenancyRequest, ws *Workspace, agreementPath string, now time.Time) (string, []string, error) {
	zipPath := ws.Path("tenancy_pack.zip")
	f, err := os.Create(zipPath)
	if err != nil {
		return "", nil, fmt.Errorf("create archive: %w", err)
	}
	defer f.Close()

	a := &archiveWriter{zw: zip.NewWriter(f), modified: now}

	if err := a.addFile(EntryAgreement, agreementPath); err != nil {
		return "", nil, err
	}
	for _, key := range domain.DocumentKeys {
		if !req.Has(key) {
			continue
		}
		entry := CertificateEntries[key]
		if err := a.add(entry, bytes.NewReader(Placeholder(entry))); err != nil {
			return "", nil, err
		}
	}
	if err := a.add(EntryGuide, strings.NewReader(guideText)); err != nil {
		return "", nil, err
	}

	checklistPath, err := b.render(ctx, ws, "checklist.pdf", ChecklistDocument(req, b.ReflectDocuments, now))
	if err != nil {
		return "", nil, err
	}
	if err := a.addFile(EntryChecklist, checklistPath); err != nil {
		return "", nil, err
	}

	summaryPath, err := b.render(ctx, ws, "summary.pdf", SummaryDocument(req, now))
	if err != nil {
		return "", nil, err
	}
	if err := a.addFile(EntrySummary, summaryPath); err != nil {
		return "", nil, err
	}

	if err := a.zw.Close(); err != nil {
		return "", nil, fmt.Errorf("finalize archive: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", nil, fmt.Errorf("close archive: %w", err)
	}
	return zipPath, a.entries, nil
}
