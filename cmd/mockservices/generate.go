package main

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"encoding/xml"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"nextstep-cv/internal/model"
	"nextstep-cv/pkg/logger"
)

const docxType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

func newGenerateMux(log logger.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /generate", func(w http.ResponseWriter, r *http.Request) {
		var p model.GenerationPayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			writeMessage(w, http.StatusBadRequest, "No user data provided")
			return
		}
		var buf bytes.Buffer
		if err := writeDocx(&buf, p); err != nil {
			log.Error("build docx", err)
			writeMessage(w, http.StatusInternalServerError, "Error generating resume")
			return
		}
		log.Info("generated", zap.String("name", p.FullName), zap.Int("size", buf.Len()))
		w.Header().Set("Content-Type", docxType)
		w.Header().Set("Content-Disposition", `attachment; filename="resume.docx"`)
		_, _ = w.Write(buf.Bytes())
	})
	return mux
}

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

// writeDocx writes a minimal WordprocessingML package: one paragraph per
// line, headings in bold.
func writeDocx(w io.Writer, p model.GenerationPayload) error {
	zw := zip.NewWriter(w)
	parts := []struct{ name, body string }{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", relsXML},
		{"word/document.xml", documentXML(p)},
	}
	for _, part := range parts {
		f, err := zw.Create(part.name)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(f, part.body); err != nil {
			return err
		}
	}
	return zw.Close()
}

type docBuilder struct {
	b strings.Builder
}

func (d *docBuilder) para(text string, bold bool) {
	if strings.TrimSpace(text) == "" {
		return
	}
	d.b.WriteString("<w:p><w:r>")
	if bold {
		d.b.WriteString("<w:rPr><w:b/></w:rPr>")
	}
	d.b.WriteString(`<w:t xml:space="preserve">`)
	_ = xml.EscapeText(&d.b, []byte(text))
	d.b.WriteString("</w:t></w:r></w:p>")
}

func joinNonEmpty(sep string, parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}

func documentXML(p model.GenerationPayload) string {
	var d docBuilder
	d.para(p.FullName, true)
	d.para(joinNonEmpty(", ", p.Email, p.LinkedIn, p.GitHub), false)

	if p.ProfessionalSummary != "" {
		d.para("Professional Summary", true)
		d.para(p.ProfessionalSummary, false)
	}
	if len(p.Projects) > 0 {
		d.para("Projects", true)
		for _, pr := range p.Projects {
			d.para(joinNonEmpty(" | ", pr.Title, pr.TechStack, pr.Link), false)
			d.para(pr.Description, false)
		}
	}
	if len(p.Experiences) > 0 {
		d.para("Work Experience", true)
		for _, e := range p.Experiences {
			d.para(joinNonEmpty(" | ", e.JobTitle, e.CompanyName, e.Duration), false)
			d.para(e.Description, false)
		}
	}
	if len(p.Certifications) > 0 {
		d.para("Certifications", true)
		for _, c := range p.Certifications {
			d.para(joinNonEmpty(" | ", c.Title, c.Issuer, c.Date), false)
		}
	}
	if len(p.Education) > 0 {
		d.para("Education", true)
		for _, e := range p.Education {
			d.para(joinNonEmpty(" | ", e.Degree, e.Institution, e.Duration), false)
		}
	}
	if s := joinNonEmpty(", ", p.TechnicalSkills...); s != "" {
		d.para("Technical Skills", true)
		d.para(s, false)
	}
	if s := joinNonEmpty(", ", p.SoftSkills...); s != "" {
		d.para("Soft Skills", true)
		d.para(s, false)
	}

	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		d.b.String() +
		`</w:body></w:document>`
}
