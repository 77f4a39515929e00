package pack

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/xid"

	"tenancypack/internal/document"
	"tenancypack/internal/domain"
)

const filenameLayout = "20060102_150405"

// Builder turns a tenancy request into a zip archive on disk.
type Builder struct {
	Renderer   document.Renderer
	ScratchDir string
	// ReflectDocuments makes the checklist follow the hasDocument flags
	// instead of ticking every item.
	ReflectDocuments bool
	Now              func() time.Time
}

// Pack is a built archive. The caller owns it and must either Release it or
// Close the reader returned by Open.
type Pack struct {
	ID          string
	Path        string
	Filename    string
	Size        int64
	Entries     []string
	GeneratedAt time.Time

	ws *Workspace
}

// Filename returns the download name for a pack generated at t.
func Filename(t time.Time) string {
	return "tenancy_pack_" + t.Format(filenameLayout) + ".zip"
}

func (b *Builder) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}

// Build renders every document and assembles the archive. On failure the
// workspace is removed and no pack is returned.
func (b *Builder) Build(ctx context.Context, req *domain.TenancyRequest) (_ *Pack, err error) {
	if b.Renderer == nil {
		return nil, errors.New("pack builder has no renderer")
	}
	now := b.now()
	id := xid.New().String()

	ws, err := NewWorkspace(b.ScratchDir, id)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = ws.Release()
		}
	}()

	agreementPath, err := b.render(ctx, ws, "tenancy_agreement.pdf", AgreementDocument(req, now))
	if err != nil {
		return nil, err
	}

	zipPath, entries, err := b.assemble(ctx, req, ws, agreementPath, now)
	if err != nil {
		return nil, err
	}

	st, err := os.Stat(zipPath)
	if err != nil {
		return nil, fmt.Errorf("stat archive: %w", err)
	}

	return &Pack{
		ID:          id,
		Path:        zipPath,
		Filename:    Filename(now),
		Size:        st.Size(),
		Entries:     entries,
		GeneratedAt: now,
		ws:          ws,
	}, nil
}

// render writes doc as a PDF into the workspace and returns its path.
func (b *Builder) render(ctx context.Context, ws *Workspace, name string, doc *document.Document) (string, error) {
	path := ws.Path(name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	if err := b.Renderer.Render(ctx, doc, f); err != nil {
		f.Close()
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", name, err)
	}
	return path, nil
}

// Open returns the archive contents. Closing the reader releases the
// workspace.
func (p *Pack) Open() (io.ReadCloser, error) {
	f, err := os.Open(p.Path)
	if err != nil {
		_ = p.Release()
		return nil, fmt.Errorf("open archive: %w", err)
	}
	return &packReader{File: f, ws: p.ws}, nil
}

// Release removes the pack's workspace.
func (p *Pack) Release() error {
	if p.ws == nil {
		return nil
	}
	return p.ws.Release()
}

type packReader struct {
	*os.File
	ws *Workspace
}

func (r *packReader) Close() error {
	return errors.Join(r.File.Close(), r.ws.Release())
}
