package server

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/samber/lo"

	"github.com/KaramelBytes/csvlens/internal/chart"
	"github.com/KaramelBytes/csvlens/internal/dashboard"
	"github.com/KaramelBytes/csvlens/internal/dataset"
)

//go:embed templates/*.html
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"selected": func(options []string, v string) bool { return lo.Contains(options, v) },
	"kindLabel": func(k chart.Kind) string { return k.Label() },
	"orNone": func(s string) string {
		if s == "" {
			return "None"
		}
		return s
	},
}

var pageTemplate = template.Must(template.New("index.html").Funcs(templateFuncs).ParseFS(templateFS, "templates/index.html"))

type page struct {
	Messages []dashboard.Message
	Outcome  *dashboard.Outcome
	Kinds    []chart.Kind
	ChartURL string
	MaxMB    int64
}

func (s *Server) renderPage(w http.ResponseWriter, status int, ds *dataset.Dataset, sel dashboard.Selection, notices []dashboard.Message) {
	p := page{Messages: notices, Kinds: chart.Kinds, MaxMB: s.opt.MaxUploadBytes >> 20}
	if ds == nil {
		p.Messages = append(p.Messages, dashboard.Message{Level: dashboard.LevelInfo, Text: "Upload a CSV file to get started"})
	} else {
		out := dashboard.Evaluate(ds, sel)
		p.Outcome = out
		p.Messages = append(p.Messages, out.Messages...)
		if out.Request != nil && out.Request.Len() > 0 {
			p.ChartURL = "/chart?" + selectionQuery(out).Encode()
		}
	}
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, p); err != nil {
		s.log.Error("template error", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
