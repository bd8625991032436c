package templates

import (
	"github.com/JonMunkholm/stockroom/internal/core"
	"github.com/a-h/templ"
)

// Import renders the paste/upload form followed by any result.
func Import(p ImportPage) templ.Component {
	return appPage("Importar", p.User, component(func(h *htmlWriter) {
		h.raw("<h1>Importar produtos</h1>\n<p>Uma linha por produto: <code>codigo_de_barras;descricao;quantidade</code></p>\n")
		alert(h, "error", p.Error)
		h.raw(`
<form method="post" action="/importar" enctype="multipart/form-data">
<p><textarea name="dados" rows="12">`)
		h.text(p.Input)
		h.raw(`</textarea></p>
<p><label>ou arquivo <input type="file" name="arquivo" accept=".txt,.csv"></label></p>
<button type="submit">Importar</button>
<button type="submit" formaction="/importar/preview">Pré-visualizar</button>
</form>
<div id="result">`)
		h.child(ImportResult(p))
		h.raw("</div>")
	}))
}

// ImportResult is the HTMX fragment swapped in after an import or preview.
func ImportResult(p ImportPage) templ.Component {
	return component(func(h *htmlWriter) {
		if p.Preview != nil {
			previewResult(h, p.Preview)
		}
		if p.Summary != nil {
			summaryResult(h, p.Summary)
		}
	})
}

func previewResult(h *htmlWriter, pv *core.PreviewResponse) {
	h.raw("<h2>Pré-visualização</h2>\n<p>")
	h.text(pv.Summary.TotalRows)
	h.raw(" linhas: ")
	h.text(pv.Summary.NewRows)
	h.raw(" novas, ")
	h.text(pv.Summary.UpdateRows)
	h.raw(" atualizações, ")
	h.text(pv.Summary.ErrorRows)
	h.raw(" com erro.</p>\n")

	if len(pv.UpdatedProducts) > 0 {
		h.raw(`<table>
<thead><tr><th>Código</th><th>Descrição</th><th class="num">Atual</th><th class="num">Entrada</th><th class="num">Resultado</th></tr></thead>
<tbody>`)
		for _, d := range pv.UpdatedProducts {
			h.raw("<tr><td>")
			h.text(d.Barcode)
			h.raw("</td><td>")
			h.text(d.Description)
			for _, n := range []int64{d.Current, d.Incoming, d.Result} {
				h.raw(`</td><td class="num">`)
				h.text(n)
			}
			h.raw("</td></tr>")
		}
		h.raw("</tbody>\n</table>\n")
	}
	if len(pv.NewProducts) > 0 {
		h.raw("<h3>Novos produtos</h3>\n<ul>")
		for _, d := range pv.NewProducts {
			h.raw("<li>")
			h.text(d.Barcode)
			h.raw(" ")
			h.text(d.Description)
			h.raw(": ")
			h.text(d.Result)
			h.raw("</li>")
		}
		h.raw("</ul>\n")
	}
	lineErrors(h, pv.Errors)
}

func summaryResult(h *htmlWriter, s *core.ImportSummary) {
	h.raw("<h2>Resultado</h2>\n")
	if s.Interrupted {
		h.raw("<div class=\"alert error\">A importação foi interrompida. As linhas já aplicadas foram mantidas.</div>\n")
	}
	h.raw("<table>\n")
	for _, c := range []struct {
		label string
		n     int
	}{
		{"Inseridos", s.Inserted},
		{"Atualizados", s.Updated},
		{"Inválidos", s.Malformed},
		{"Falhas", s.Failed},
	} {
		h.raw("<tr><th>", c.label, `</th><td class="num">`)
		h.text(c.n)
		h.raw("</td></tr>\n")
	}
	h.raw("</table>\n")
	lineErrors(h, s.Errors)
}

func lineErrors(h *htmlWriter, errs []core.LineError) {
	if len(errs) == 0 {
		return
	}
	h.raw("<h3>Linhas com erro</h3>\n<ul>")
	for _, e := range errs {
		h.raw("<li>Linha ")
		h.text(e.Line)
		if e.Barcode != "" {
			h.raw(" (")
			h.text(e.Barcode)
			h.raw(")")
		}
		h.raw(": ")
		h.text(e.Reason)
		h.raw("</li>")
	}
	h.raw("</ul>\n")
}
