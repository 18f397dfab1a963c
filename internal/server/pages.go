package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/matheuskafuri/epaper/internal/archive"
	"github.com/matheuskafuri/epaper/internal/loader"
	"github.com/matheuskafuri/epaper/internal/view"
)

//go:embed templates/page.html
var templateFS embed.FS

type renderer struct {
	page *template.Template
}

func newRenderer() (*renderer, error) {
	t, err := template.ParseFS(templateFS, "templates/page.html")
	if err != nil {
		return nil, fmt.Errorf("parsing page template: %w", err)
	}
	return &renderer{page: t}, nil
}

type navItem struct {
	Key   string
	Label string
}

type pageData struct {
	Title    string
	Date     string
	Active   string
	Nav      []navItem
	Banner   view.Banner
	Layout   *view.Layout
	NotFound bool
}

// ShowImage guards the hero image, which is held by pointer.
func (pageData) ShowImage(f *view.ImageFailures, s *archive.Story) bool {
	return s != nil && f.ShouldRender(*s)
}

func navigation() []navItem {
	var items []navItem
	for _, c := range archive.AllCategories() {
		if c == archive.FrontPage {
			continue
		}
		items = append(items, navItem{Key: string(c), Label: c.Label()})
	}
	return items
}

func (rd *renderer) render(w http.ResponseWriter, status int, data pageData) error {
	var buf bytes.Buffer
	if err := rd.page.Execute(&buf, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

func (s *Server) handleArchiveJSON(w http.ResponseWriter, r *http.Request) {
	doc, err := s.current(r.Context())
	if err != nil {
		s.log.Error("loading current archive", zap.Error(err))
		s.fail(w, http.StatusInternalServerError, loader.ErrorMessage)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	s.reply(w, http.StatusOK, doc)
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, string(archive.FrontPage))
}

func (s *Server) handleSection(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, chi.URLParam(r, "category"))
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, key string) {
	data := pageData{Title: "EPAPER", Active: key, Nav: navigation()}

	doc, err := s.current(r.Context())
	if err != nil {
		s.log.Error("loading current archive", zap.Error(err))
		data.Banner = view.NewBanner(loader.Status{State: loader.Failed, Message: loader.ErrorMessage})
		data.Layout = &view.Layout{}
		s.writePage(w, http.StatusInternalServerError, data)
		return
	}

	res := archive.NewResolver(doc)
	data.Date = view.FormatDate(res.Date())
	data.Banner = view.NewBanner(loader.Status{State: loader.Ready, Date: res.Date(), IsFallback: res.IsFallback()})

	status := http.StatusOK
	layout, ok := view.SectionLayout(res, key)
	if !ok {
		status = http.StatusNotFound
		data.NotFound = true
	} else if cat, _ := archive.ParseCategory(key); cat != archive.FrontPage {
		data.Title = "EPAPER | " + cat.Label()
	}
	data.Layout = layout
	s.writePage(w, status, data)
}

func (s *Server) writePage(w http.ResponseWriter, status int, data pageData) {
	if err := s.pages.render(w, status, data); err != nil {
		s.log.Error("rendering page", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
