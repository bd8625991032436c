package templates

import "github.com/a-h/templ"

// Login renders the sign-in form without navigation.
func Login(p LoginPage) templ.Component {
	return layout("Entrar", nil, component(func(h *htmlWriter) {
		h.raw("<h1>Entrar</h1>\n")
		alert(h, "error", p.Error)
		h.raw(`<form method="post" action="/login">
<p><label>Email <input type="email" name="email" value="`)
		h.text(p.Email)
		h.raw(`" required autofocus></label></p>
<p><label>Senha <input type="password" name="password" required></label></p>
<button type="submit">Entrar</button>
</form>`)
	}))
}

// Dashboard renders totals and recent imports.
func Dashboard(p DashboardPage) templ.Component {
	return appPage("Painel", p.User, component(func(h *htmlWriter) {
		h.raw("<h1>Painel</h1>\n<div class=\"stats\">\n<div>")
		h.text(p.Stats.Products)
		h.raw(" <small>produtos</small></div>\n<div>")
		h.text(p.Stats.Units)
		h.raw(" <small>unidades</small></div>\n</div>\n<h2>Importações recentes</h2>\n")

		if len(p.Imports) == 0 {
			h.raw("<p>Nenhuma importação registrada.</p>")
			return
		}
		h.raw(`<table>
<thead><tr><th>Data</th><th>Usuário</th><th class="num">Inseridos</th><th class="num">Atualizados</th><th class="num">Inválidos</th><th class="num">Falhas</th><th class="num">ms</th></tr></thead>
<tbody>
`)
		for _, run := range p.Imports {
			h.raw("<tr><td>")
			h.text(datetime(run.CreatedAt))
			if run.Interrupted {
				h.raw(" (interrompida)")
			}
			h.raw("</td><td>")
			h.text(run.UserEmail)
			for _, n := range []int64{int64(run.Inserted), int64(run.Updated), int64(run.Malformed), int64(run.Failed), run.Duration.Milliseconds()} {
				h.raw(`</td><td class="num">`)
				h.text(n)
			}
			h.raw("</td></tr>\n")
		}
		h.raw("</tbody>\n</table>")
	}))
}

// Insert renders the manual entry form.
func Insert(p InsertPage) templ.Component {
	return appPage("Inserir", p.User, component(func(h *htmlWriter) {
		h.raw("<h1>Inserir produto</h1>\n")
		flash(h, p.Flash)
		h.raw(`
<form method="post" action="/inserir">
<p><label>Código de barras <input name="codigo_de_barras" required autofocus></label></p>
<p><label>Descrição <input name="descricao" required></label></p>
<p><label>Quantidade <input type="number" name="quantidade" required></label></p>
<button type="submit">Salvar</button>
</form>`)
	}))
}

// Stock renders the product list with its search box.
func Stock(p StockPage) templ.Component {
	return appPage("Estoque", p.User, component(func(h *htmlWriter) {
		h.raw("<h1>Estoque</h1>\n<p>")
		h.text(p.Stats.Products)
		h.raw(" produtos, ")
		h.text(p.Stats.Units)
		h.raw(` unidades.</p>
<form method="get" action="/estoque">
<input type="search" name="q" value="`)
		h.text(p.Query)
		h.raw(`" placeholder="Código ou descrição">
<button type="submit">Buscar</button>
</form>
<table>
<thead><tr><th>ID</th><th>Código de Barras</th><th>Descrição</th><th class="num">Quantidade</th></tr></thead>
<tbody>
`)
		if len(p.Products) == 0 {
			h.raw("<tr><td colspan=\"4\">Nenhum produto encontrado.</td></tr>\n")
		}
		for _, prod := range p.Products {
			h.raw("<tr><td>")
			h.text(prod.ID)
			h.raw("</td><td>")
			h.text(prod.Barcode)
			h.raw("</td><td>")
			h.text(prod.Description)
			h.raw(`</td><td class="num">`)
			h.text(prod.Quantity)
			h.raw("</td></tr>\n")
		}
		h.raw("</tbody>\n</table>")
	}))
}

// Scan renders the barcode lookup with the edit form on a hit and the add
// form on a miss.
func Scan(p ScanPage) templ.Component {
	return appPage("Scan", p.User, component(func(h *htmlWriter) {
		h.raw("<h1>Consultar código de barras</h1>\n")
		flash(h, p.Flash)
		h.raw(`
<form method="post" action="/scan">
<input name="barcode" placeholder="Código de barras" required autofocus>
<button type="submit">Buscar</button>
</form>
`)
		if prod := p.Product; prod != nil {
			h.raw("<h2>")
			h.text(prod.Description)
			h.raw("</h2>\n<form method=\"post\" action=\"/atualizar-produto\">\n<input type=\"hidden\" name=\"id\" value=\"")
			h.text(prod.ID)
			h.raw("\">\n<p>Código: ")
			h.text(prod.Barcode)
			h.raw("</p>\n<p><label>Descrição <input name=\"descricao\" value=\"")
			h.text(prod.Description)
			h.raw("\" required></label></p>\n<p><label>Quantidade <input type=\"number\" name=\"quantidade\" value=\"")
			h.text(prod.Quantity)
			h.raw("\" required></label></p>\n<button type=\"submit\">Atualizar</button>\n</form>\n")
		}
		if p.Barcode != "" {
			h.raw("<h2>Produto não cadastrado</h2>\n<form method=\"post\" action=\"/adicionar-produto\">\n<input type=\"hidden\" name=\"barcode\" value=\"")
			h.text(p.Barcode)
			h.raw("\">\n<p>Código: ")
			h.text(p.Barcode)
			h.raw(`</p>
<p><label>Descrição <input name="descricao" required></label></p>
<p><label>Quantidade <input type="number" name="quantidade" value="0" required></label></p>
<button type="submit">Adicionar</button>
</form>`)
		}
	}))
}

// Export renders the download options.
func Export(p ExportPage) templ.Component {
	return appPage("Exportar", p.User, component(func(h *htmlWriter) {
		h.raw(`<h1>Exportar estoque</h1>
<form method="post" action="/exportar">
<p>
<label><input type="radio" name="format" value="csv" checked> CSV</label>
<label><input type="radio" name="format" value="xlsx"> Excel (XLSX)</label>
</p>
<button type="submit">Baixar</button>
</form>`)
	}))
}
